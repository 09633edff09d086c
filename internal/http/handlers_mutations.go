package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"financas/internal/core"
	"financas/internal/gateway"
	"financas/internal/log"
	"financas/internal/services"
)

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.NewTransaction
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	in.Description = sanitizeInput(in.Description)
	in.Category = sanitizeInput(in.Category)
	writeOutcome(w, s.session.Orchestrator.AddTransaction(r.Context(), in), http.StatusCreated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := core.RecordID(chi.URLParam(r, "id"))
	writeOutcome(w, s.session.Orchestrator.DeleteTransaction(r.Context(), id), http.StatusOK)
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var in core.NewGoal
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	in.Name = sanitizeInput(in.Name)
	writeOutcome(w, s.session.Orchestrator.AddGoal(r.Context(), in), http.StatusCreated)
}

type updateGoalRequest struct {
	Current decimal.Decimal `json:"current"`
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var in updateGoalRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	u := core.GoalUpdate{ID: core.RecordID(chi.URLParam(r, "id")), Current: in.Current}
	writeOutcome(w, s.session.Orchestrator.UpdateGoal(r.Context(), u), http.StatusOK)
}

type namesRequest struct {
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}

func (s *Server) handleSaveNames(w http.ResponseWriter, r *http.Request) {
	var in namesRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	o := s.session.Orchestrator.SaveNames(r.Context(), sanitizeInput(in.User1), sanitizeInput(in.User2))
	writeOutcome(w, o, http.StatusOK)
}

type pinRequest struct {
	PIN string `json:"pin"`
}

func (s *Server) handleSavePIN(w http.ResponseWriter, r *http.Request) {
	var in pinRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	o := s.session.Orchestrator.SavePIN(r.Context(), in.PIN)
	if !o.OK() {
		writeOutcome(w, o, http.StatusOK)
		return
	}
	// Logins made with the old PIN end here; the caller keeps access.
	s.access.revokeAll()
	s.grantAccess(w, r, o)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in pinRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	o := s.session.Orchestrator.Login(r.Context(), in.PIN)
	if !o.OK() {
		writeOutcome(w, o, http.StatusOK)
		return
	}
	s.grantAccess(w, r, o)
}

type accessResponse struct {
	services.Outcome
	Token string `json:"token"`
}

// grantAccess issues a token for the caller, both as a cookie and in the
// body for clients that send it as a bearer header.
func (s *Server) grantAccess(w http.ResponseWriter, r *http.Request, o services.Outcome) {
	token := s.access.issue()
	setAccessCookie(w, r, token)
	writeJSON(w, http.StatusOK, accessResponse{Outcome: o, Token: token})
}

// handleExec serves the backend over the envelope protocol, so another
// financas client can point API_URL at this server.
func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, gateway.Fail("invalid request body"))
		return
	}
	env, err := s.dispatcher.Exec(r.Context(), body)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Exec failed", log.FieldError, err)
		writeJSON(w, status, gateway.Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, env)
}
