package http

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	accessCookie = "financas_access"
	accessTTL    = 12 * time.Hour
)

// accessTokens remembers which clients unlocked the API. A token is handed
// out on login and sent back as a cookie or bearer header.
type accessTokens struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

func newAccessTokens() *accessTokens {
	return &accessTokens{tokens: map[string]time.Time{}, now: time.Now}
}

func (a *accessTokens) issue() string {
	token := uuid.NewString() + uuid.NewString()
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	for t, exp := range a.tokens {
		if now.After(exp) {
			delete(a.tokens, t)
		}
	}
	a.tokens[token] = now.Add(accessTTL)
	return token
}

func (a *accessTokens) valid(token string) bool {
	if token == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	exp, ok := a.tokens[token]
	if !ok {
		return false
	}
	if a.now().After(exp) {
		delete(a.tokens, token)
		return false
	}
	return true
}

// revokeAll forgets every token, e.g. after the PIN changed.
func (a *accessTokens) revokeAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.tokens)
}

func (a *accessTokens) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.tokens)
}

// bearerToken returns the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// requestToken prefers the bearer header over the cookie.
func requestToken(r *http.Request) string {
	if t := bearerToken(r); t != "" {
		return t
	}
	if c, err := r.Cookie(accessCookie); err == nil {
		return c.Value
	}
	return ""
}

func setAccessCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(accessTTL / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// requireExecToken guards /exec with the configured bearer token.
func requireExecToken(token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(bearerToken(r))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="financas"`)
				writeError(w, http.StatusUnauthorized, msgExecUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
