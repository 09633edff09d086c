package http

import (
	"net/http"
	"sort"
	"strings"

	"financas/internal/goals"
	"financas/internal/ledger"
	"financas/internal/services"
	"financas/internal/settings"
	"financas/internal/view"
)

type stateResponse struct {
	SettingsLoaded bool              `json:"settingsLoaded"`
	PINRequired    bool              `json:"pinRequired"`
	AccessGranted  bool              `json:"accessGranted"`
	Busy           []string          `json:"busy"`
	UserOptions    []settings.Option `json:"userOptions"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	busy := s.session.Page.Busy()
	sort.Strings(busy)
	_, locked := s.session.Store.PIN()
	writeJSON(w, http.StatusOK, stateResponse{
		SettingsLoaded: s.session.Store.Loaded(),
		PINRequired:    locked,
		AccessGranted:  s.session.Store.Loaded() && s.hasAccess(r),
		Busy:           busy,
		UserOptions:    s.session.Page.UserOptions(),
	})
}

// handleNotifications hands out pending notifications once.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	n := s.session.Page.DrainNotifications()
	if n == nil {
		n = []view.Notification{}
	}
	writeJSON(w, http.StatusOK, n)
}

// handleDashboard reloads the dashboard. When the load fails the previous
// dashboard is served if there is one.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	err := s.session.Loader.LoadDashboard(r.Context())
	v, ok := s.session.Page.Dashboard.Get()
	if !ok {
		writeError(w, http.StatusBadGateway, services.MsgDashboardFailed+services.ReasonOr(err, services.MsgConnectionError))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type transactionRow struct {
	ledger.Row
	State view.RowState `json:"state"`
}

type transactionsResponse struct {
	Rows    []transactionRow `json:"rows"`
	Message string           `json:"message,omitempty"`
}

// handleTransactions reloads the ledger. ?q narrows the rows with a fuzzy
// match; the placeholder message is kept as is.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	_ = s.session.Loader.LoadTransactions(r.Context())
	v, _ := s.session.Page.Transactions.Get()

	rows := v.Rows
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		rows = ledger.Filter(rows, q)
	}
	resp := transactionsResponse{Rows: make([]transactionRow, 0, len(rows)), Message: v.Message}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, transactionRow{Row: row, State: s.session.Page.Row(row.ID)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	_ = s.session.Loader.LoadGoals(r.Context())
	v, _ := s.session.Page.Goals.Get()
	if v.Cards == nil {
		v.Cards = []goals.Card{}
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleNamesForm(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Loader.LoadNamesForm(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, services.MsgSettingsFailed+services.ReasonOr(err, services.MsgConnectionError))
		return
	}
	writeJSON(w, http.StatusOK, s.session.Page.NamesForm())
}

func (s *Server) handleSecurityForm(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Loader.LoadSecurityForm(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, services.MsgSettingsFailed+services.ReasonOr(err, services.MsgConnectionError))
		return
	}
	writeJSON(w, http.StatusOK, s.session.Page.SecurityForm())
}
