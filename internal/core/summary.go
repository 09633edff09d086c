package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RecentLimit is how many transactions the dashboard aggregate carries.
const RecentLimit = 5

// Summarize builds the dashboard aggregate from the full transaction list.
// The split holds expense totals per user tag in first-seen order; recent
// transactions are the newest by date, ties kept in list order.
func Summarize(txs []Transaction, recent int) Dashboard {
	d := Dashboard{
		Income:             decimal.Zero,
		Expense:            decimal.Zero,
		UserSplit:          []SplitInput{},
		RecentTransactions: []Transaction{},
	}
	index := map[string]int{}
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			d.Income = d.Income.Add(tx.Amount)
		case Expense:
			d.Expense = d.Expense.Add(tx.Amount)
			name := string(tx.User)
			i, ok := index[name]
			if !ok {
				i = len(d.UserSplit)
				index[name] = i
				d.UserSplit = append(d.UserSplit, SplitInput{Name: name, Value: decimal.Zero})
			}
			d.UserSplit[i].Value = d.UserSplit[i].Value.Add(tx.Amount)
		}
	}
	d.Balance = d.Income.Sub(d.Expense)

	if recent <= 0 {
		return d
	}
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	if len(sorted) > recent {
		sorted = sorted[:recent]
	}
	d.RecentTransactions = sorted
	return d
}
