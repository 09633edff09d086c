// Package security sets response headers for the JSON API and works out
// which address a request came from.
package security

import (
	"fmt"
	"net/http"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	// Content Security Policy. The API serves no documents, so the default
	// forbids everything.
	CSP string

	// HSTS settings
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginResource string
	// CacheControl keeps balances and names out of shared caches.
	CacheControl string
}

// DefaultHeadersConfig returns the headers every API response carries.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                   "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		XFrameOptions:         "DENY",
		XContentTypeOptions:   "nosniff",
		ReferrerPolicy:        "no-referrer",
		CrossOriginResource:   "same-origin",
		CacheControl:          "no-store",
	}
}

// Headers returns middleware applying config to every response.
func Headers(config HeadersConfig) func(http.Handler) http.Handler {
	hsts := ""
	if config.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			set(h, "Content-Security-Policy", config.CSP)
			set(h, "X-Frame-Options", config.XFrameOptions)
			set(h, "X-Content-Type-Options", config.XContentTypeOptions)
			set(h, "Referrer-Policy", config.ReferrerPolicy)
			set(h, "Cross-Origin-Resource-Policy", config.CrossOriginResource)
			set(h, "Cache-Control", config.CacheControl)
			// HSTS only means something over TLS.
			if r.TLS != nil {
				set(h, "Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func set(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}
