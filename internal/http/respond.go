package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"financas/internal/services"
)

const maxBodyBytes = 1 << 20

const (
	msgRateLimited   = "Muitas tentativas. Tente novamente em um minuto."
	msgLoginRequired = "Acesso bloqueado. Informe o PIN."
	msgInvalidBody   = "Requisição inválida"

	msgExecUnauthorized = "Token de acesso inválido."
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// The status is already sent; a failed write has no one to report to.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeOutcome maps a mutation outcome onto a status code. okStatus is
// used on success.
func writeOutcome(w http.ResponseWriter, o services.Outcome, okStatus int) {
	status := okStatus
	switch o.Status {
	case services.StatusInvalid:
		status = http.StatusUnprocessableEntity
	case services.StatusDenied:
		status = http.StatusForbidden
	case services.StatusFailed:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, o)
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
