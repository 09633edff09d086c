package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

// Column layout of each sheet; row 1 is a header.
//
//	Transacoes: id | date | description | category | amount | type | user
//	Metas:      id | name | target | current
//	Config:     key | value
const (
	txColumns   = 7
	goalColumns = 4
)

// cellString renders a cell read with UNFORMATTED_VALUE. Whole numbers
// come back as float64 and must not gain an exponent or ".0".
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func cellDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case float64:
		if val < 0 {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(val), true
	case string:
		if strings.TrimSpace(val) == "" {
			return decimal.Zero, true
		}
		d, err := core.ParseNonNegativeAmount(val)
		return d, err == nil
	case nil:
		return decimal.Zero, true
	}
	return decimal.Zero, false
}

func cellAt(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

// parseTransactionRows converts data rows (header excluded) into
// transactions, in sheet order. Rows without an id or with an unreadable
// amount are skipped and counted.
func parseTransactionRows(rows [][]any) (out []core.Transaction, skipped int) {
	out = make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		id := cellString(cellAt(row, 0))
		if id == "" {
			skipped++
			continue
		}
		amount, ok := cellDecimal(cellAt(row, 4))
		if !ok {
			skipped++
			continue
		}
		out = append(out, core.Transaction{
			ID:          core.RecordID(id),
			Date:        cellString(cellAt(row, 1)),
			Description: cellString(cellAt(row, 2)),
			Category:    cellString(cellAt(row, 3)),
			Amount:      amount,
			Type:        core.TxType(strings.ToLower(cellString(cellAt(row, 5)))),
			User:        core.Role(cellString(cellAt(row, 6))),
		})
	}
	return out, skipped
}

func parseGoalRows(rows [][]any) (out []core.Goal, skipped int) {
	out = make([]core.Goal, 0, len(rows))
	for _, row := range rows {
		id := cellString(cellAt(row, 0))
		if id == "" {
			skipped++
			continue
		}
		target, ok1 := cellDecimal(cellAt(row, 2))
		current, ok2 := cellDecimal(cellAt(row, 3))
		if !ok1 || !ok2 {
			skipped++
			continue
		}
		out = append(out, core.Goal{
			ID:      core.RecordID(id),
			Name:    cellString(cellAt(row, 1)),
			Target:  target,
			Current: current,
		})
	}
	return out, skipped
}

func parseSettingsRows(rows [][]any) core.Settings {
	out := core.Settings{}
	for _, row := range rows {
		key := cellString(cellAt(row, 0))
		if key == "" {
			continue
		}
		out[key] = cellString(cellAt(row, 1))
	}
	return out
}

// rowOf returns the 0-based data row index whose first cell is key, or -1.
func rowOf(rows [][]any, key string) int {
	for i, row := range rows {
		if cellString(cellAt(row, 0)) == key {
			return i
		}
	}
	return -1
}

func transactionRow(tx core.Transaction) []any {
	return []any{string(tx.ID), tx.Date, tx.Description, tx.Category, tx.Amount.InexactFloat64(), string(tx.Type), string(tx.User)}
}

func goalRow(g core.Goal) []any {
	return []any{string(g.ID), g.Name, g.Target.InexactFloat64(), g.Current.InexactFloat64()}
}
