// Package remote calls a hosted backend (a spreadsheet web app) over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"financas/internal/gateway"
)

// ErrNoURL is returned when no backend URL has been configured.
var ErrNoURL = fmt.Errorf("%w: API URL not configured", gateway.ErrTransport)

// maxBody bounds how much of a response is read.
const maxBody = 4 << 20

// Transport posts {"method": name, ...params} to a single URL. The body is
// sent as text/plain so that script hosts accept it without a preflight.
type Transport struct {
	url    string
	token  string
	client *http.Client
}

var _ gateway.Caller = (*Transport)(nil)

func New(url string) *Transport {
	return &Transport{url: strings.TrimSpace(url), client: newHTTPClientWithPooling()}
}

// NewWithClient lets tests point the transport at an httptest server.
func NewWithClient(url string, client *http.Client) *Transport {
	return &Transport{url: strings.TrimSpace(url), client: client}
}

// WithToken sends token as a bearer credential on every call. Script hosts
// ignore it; a financas server requires it on /exec.
func (t *Transport) WithToken(token string) *Transport {
	t.token = strings.TrimSpace(token)
	return t
}

// URL returns the configured endpoint.
func (t *Transport) URL() string { return t.url }

func (t *Transport) Call(ctx context.Context, method string, params any) (gateway.Envelope, error) {
	if t.url == "" {
		return gateway.Envelope{}, ErrNoURL
	}
	body, err := encodeRequest(method, params)
	if err != nil {
		return gateway.Envelope{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return gateway.Envelope{}, fmt.Errorf("%w: build request: %v", gateway.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return gateway.Envelope{}, fmt.Errorf("%w: %s: %w", gateway.ErrTransport, method, ctxErr)
		}
		return gateway.Envelope{}, fmt.Errorf("%w: %s: %v", gateway.ErrTransport, method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return gateway.Envelope{}, fmt.Errorf("%w: read response: %v", gateway.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gateway.Envelope{}, fmt.Errorf("%w: %s: unexpected status %d", gateway.ErrTransport, method, resp.StatusCode)
	}
	return gateway.ParseEnvelope(raw)
}

// encodeRequest flattens params into the top-level object next to method.
func encodeRequest(method string, params any) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode params: %w", err)
		}
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, errors.New("params must encode to a JSON object")
		}
	}
	m, _ := json.Marshal(method)
	fields["method"] = m
	return json.Marshal(fields)
}

func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	// Script hosts answer with a redirect to the content domain; the
	// default policy follows it with GET, which is what they expect.
	return &http.Client{Transport: transport}
}
