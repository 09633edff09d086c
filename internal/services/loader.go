package services

import (
	"context"
	"fmt"

	"financas/internal/gateway"
	"financas/internal/ledger"
	"financas/internal/log"
	"financas/internal/settings"
	"financas/internal/view"
)

// Loader fetches page data and writes the rendered result into the page.
// Names are resolved against whatever the settings store holds at render
// time; loads never wait for a settings refresh.
type Loader struct {
	gw     gateway.Gateway
	store  *settings.Store
	page   *view.Page
	logger *log.Logger
}

func NewLoader(gw gateway.Gateway, store *settings.Store, page *view.Page, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Discard()
	}
	return &Loader{
		gw:     gw,
		store:  store,
		page:   page,
		logger: logger.WithComponent(log.ComponentSession),
	}
}

// LoadDashboard renders totals, the per-person split and recent
// transactions. A failed load keeps what was shown before.
func (l *Loader) LoadDashboard(ctx context.Context) error {
	gen := l.page.Dashboard.Begin()
	d, err := l.gw.GetDashboard(ctx)
	if err != nil {
		l.page.Dashboard.Abandon(gen)
		l.page.Notify(view.NotifyError, MsgDashboardFailed+ReasonOr(err, MsgConnectionError))
		l.logger.ErrorContext(ctx, "Dashboard load failed", log.FieldView, "dashboard", log.FieldError, err)
		return fmt.Errorf("load dashboard: %w", err)
	}

	v, b := view.BuildDashboard(l.store, d)
	if len(b.Clamped) > 0 {
		l.logger.WarnContext(ctx, "Negative split values counted as zero", "identifiers", b.Clamped)
	}
	if !l.page.Dashboard.Apply(gen, v) {
		l.logger.DebugContext(ctx, "Discarded stale load", log.FieldView, "dashboard", log.FieldGeneration, gen)
	}
	return nil
}

// LoadTransactions renders the full ledger. On failure the table shows
// the error placeholder.
func (l *Loader) LoadTransactions(ctx context.Context) error {
	gen := l.page.Transactions.Begin()
	txs, err := l.gw.ListTransactions(ctx)
	if err != nil {
		l.page.Transactions.Apply(gen, view.TransactionsView{Message: ledger.ErrorMessage})
		l.logger.ErrorContext(ctx, "Transactions load failed", log.FieldView, "transactions", log.FieldError, err)
		return fmt.Errorf("load transactions: %w", err)
	}
	if !l.page.Transactions.Apply(gen, view.BuildTransactions(l.store, txs)) {
		l.logger.DebugContext(ctx, "Discarded stale load", log.FieldView, "transactions", log.FieldGeneration, gen)
	}
	return nil
}

// LoadGoals renders the goal cards. On failure the list falls back to the
// empty placeholder and an error is raised.
func (l *Loader) LoadGoals(ctx context.Context) error {
	gen := l.page.Goals.Begin()
	gs, err := l.gw.ListGoals(ctx)
	if err != nil {
		l.page.Goals.Apply(gen, view.BuildGoals(nil))
		l.page.Notify(view.NotifyError, MsgGoalsFailed+ReasonOr(err, MsgConnectionError))
		l.logger.ErrorContext(ctx, "Goals load failed", log.FieldView, "goals", log.FieldError, err)
		return fmt.Errorf("load goals: %w", err)
	}
	v := view.BuildGoals(gs)
	for _, c := range v.Cards {
		if c.Invalid {
			l.logger.WarnContext(ctx, "Goal with zero target", log.FieldRecordID, c.ID.String(), log.FieldGoalName, c.Name)
		}
	}
	if !l.page.Goals.Apply(gen, v) {
		l.logger.DebugContext(ctx, "Discarded stale load", log.FieldView, "goals", log.FieldGeneration, gen)
	}
	return nil
}

// RefreshSettings refreshes the settings store. Overlapping refreshes share
// one backend call.
func (l *Loader) RefreshSettings(ctx context.Context) error {
	if _, err := l.store.Refresh(ctx); err != nil {
		return err
	}
	l.page.SetUserOptions(l.store.UserOptions())
	return nil
}

// LoadNamesForm prefills the names form from fresh settings.
func (l *Loader) LoadNamesForm(ctx context.Context) error {
	snap, err := l.store.Refresh(ctx)
	if err != nil {
		l.page.Notify(view.NotifyError, MsgSettingsFailed+ReasonOr(err, MsgConnectionError))
		return err
	}
	l.page.SetNamesForm(view.BuildNamesForm(snap))
	return nil
}

// LoadSecurityForm tells the security form whether a PIN exists. The PIN
// itself is never shown.
func (l *Loader) LoadSecurityForm(ctx context.Context) error {
	snap, err := l.store.Refresh(ctx)
	if err != nil {
		l.page.Notify(view.NotifyError, MsgSettingsFailed+ReasonOr(err, MsgConnectionError))
		return err
	}
	l.page.SetSecurityForm(view.BuildSecurityForm(snap))
	return nil
}
