package view

import (
	"financas/internal/core"
	"financas/internal/format"
	"financas/internal/goals"
	"financas/internal/ledger"
	"financas/internal/split"
)

// Chart centre labels.
const (
	ChartTotalPrefix = "Total\n"
	ChartNoData      = "Sem dados"
	SplitEmpty       = "Nenhum dado encontrado."
)

// SecurityForm placeholders.
const (
	PINSetPlaceholder   = "PIN já definido (****)"
	PINUnsetPlaceholder = "Defina um PIN de 4 dígitos"
)

type SplitRow struct {
	Identifier string  `json:"identifier"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Value      string  `json:"value"`
	Percent    float64 `json:"percent"`
}

type DashboardView struct {
	Income      string       `json:"income"`
	Expense     string       `json:"expense"`
	Balance     string       `json:"balance"`
	Chart       string       `json:"chart"`
	CenterLabel string       `json:"centerLabel"`
	Split       []SplitRow   `json:"split"`
	SplitEmpty  string       `json:"splitEmpty,omitempty"`
	Recent      []ledger.Row `json:"recent"`
	// Message replaces the whole dashboard when loading failed.
	Message string `json:"message,omitempty"`
}

type TransactionsView struct {
	Rows    []ledger.Row `json:"rows"`
	Message string       `json:"message,omitempty"`
}

type GoalsView struct {
	Cards   []goals.Card `json:"cards"`
	Message string       `json:"message,omitempty"`
}

type NamesForm struct {
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}

type SecurityForm struct {
	HasPIN      bool   `json:"hasPin"`
	Placeholder string `json:"placeholder"`
}

// BuildDashboard renders the dashboard aggregate. The breakdown is returned
// too so callers can report clamped entries.
func BuildDashboard(names core.NameResolver, d core.Dashboard) (DashboardView, split.Breakdown) {
	b := split.Aggregate(names, d.UserSplit)
	v := DashboardView{
		Income:  format.Currency(d.Income),
		Expense: format.Currency(d.Expense),
		Balance: format.Currency(d.Balance),
		Chart:   split.Chart(b),
		Split:   make([]SplitRow, 0, len(b.Items)),
		Recent:  ledger.Render(names, d.RecentTransactions),
	}
	if b.Empty {
		v.CenterLabel = ChartNoData
		v.SplitEmpty = SplitEmpty
	} else {
		v.CenterLabel = ChartTotalPrefix + format.Currency(b.Total)
	}
	for _, it := range b.Items {
		v.Split = append(v.Split, SplitRow{
			Identifier: it.Identifier,
			Name:       it.DisplayName,
			Color:      it.Color,
			Value:      format.Currency(it.Value),
			Percent:    it.Percent,
		})
	}
	return v, b
}

func BuildTransactions(names core.NameResolver, txs []core.Transaction) TransactionsView {
	v := TransactionsView{Rows: ledger.Render(names, txs)}
	if len(v.Rows) == 0 {
		v.Message = ledger.EmptyMessage
	}
	return v
}

func BuildGoals(gs []core.Goal) GoalsView {
	v := GoalsView{Cards: goals.Cards(gs)}
	if len(v.Cards) == 0 {
		v.Message = goals.EmptyMessage
	}
	return v
}

// BuildNamesForm prefills the names form with the stored values only;
// defaults stay out of the inputs.
func BuildNamesForm(s core.Settings) NamesForm {
	return NamesForm{User1: s[core.KeyUser1Name], User2: s[core.KeyUser2Name]}
}

func BuildSecurityForm(s core.Settings) SecurityForm {
	if _, ok := s.PIN(); ok {
		return SecurityForm{HasPIN: true, Placeholder: PINSetPlaceholder}
	}
	return SecurityForm{Placeholder: PINUnsetPlaceholder}
}
