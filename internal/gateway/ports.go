// Package gateway defines the boundary between the client core and the
// finance backend: one request/response endpoint speaking method-call
// envelopes.
package gateway

import (
	"context"

	"financas/internal/core"
)

// Method names understood by every backend.
const (
	MethodGetDashboard      = "getDashboardData"
	MethodListTransactions  = "listTransacoes"
	MethodAddTransaction    = "addTransacao"
	MethodDeleteTransaction = "deleteTransacao"
	MethodListGoals         = "listMetas"
	MethodAddGoal           = "addMeta"
	MethodUpdateGoal        = "updateMeta"
	MethodGetSettings       = "getSettings"
	MethodSaveSettings      = "saveSettings"
)

// Ports for outbound adapters.
type (
	DashboardReader interface {
		GetDashboard(ctx context.Context) (core.Dashboard, error)
	}

	// TransactionLister returns transactions in backend order.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		AddTransaction(ctx context.Context, tx core.NewTransaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id core.RecordID) error
	}

	GoalLister interface {
		ListGoals(ctx context.Context) ([]core.Goal, error)
	}

	// GoalWriter creates goals and moves their saved amount. UpdateGoal
	// reports only success; callers reload the list afterwards.
	GoalWriter interface {
		AddGoal(ctx context.Context, g core.NewGoal) (core.Goal, error)
		UpdateGoal(ctx context.Context, u core.GoalUpdate) error
	}

	SettingsReader interface {
		GetSettings(ctx context.Context) (core.Settings, error)
	}

	// SettingsWriter merges the given keys into the stored settings.
	SettingsWriter interface {
		SaveSettings(ctx context.Context, partial core.Settings) error
	}

	Gateway interface {
		DashboardReader
		TransactionLister
		TransactionWriter
		GoalLister
		GoalWriter
		SettingsReader
		SettingsWriter
	}
)
