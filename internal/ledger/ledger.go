// Package ledger renders transactions into display rows.
package ledger

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"financas/internal/core"
	"financas/internal/format"
)

// Placeholders for the transactions table.
const (
	EmptyMessage = "Nenhuma transação encontrada."
	ErrorMessage = "Erro ao carregar transações."
)

// Row is one display-ready transaction.
type Row struct {
	ID          core.RecordID `json:"id"`
	Date        string        `json:"date"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	User        string        `json:"user"`
	Amount      string        `json:"amount"`
	Outflow     bool          `json:"outflow"`
}

// Render converts txs in the order received. Names are resolved against
// whatever snapshot names holds right now.
func Render(names core.NameResolver, txs []core.Transaction) []Row {
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, RenderOne(names, tx))
	}
	return rows
}

func RenderOne(names core.NameResolver, tx core.Transaction) Row {
	outflow := tx.Type == core.Expense
	return Row{
		ID:          tx.ID,
		Date:        format.Date(tx.Date),
		Description: tx.Description,
		Category:    tx.Category,
		User:        names.ResolveName(tx.User),
		Amount:      format.Signed(tx.Amount, outflow),
		Outflow:     outflow,
	}
}

// Filter keeps rows whose description, category or user fuzzily match
// query, case-insensitively. An empty query keeps everything.
func Filter(rows []Row, query string) []Row {
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if fuzzy.MatchNormalizedFold(query, r.Description) ||
			fuzzy.MatchNormalizedFold(query, r.Category) ||
			fuzzy.MatchNormalizedFold(query, r.User) {
			out = append(out, r)
		}
	}
	return out
}
