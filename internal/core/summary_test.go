package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tx(id, date string, amount int64, typ TxType, user Role) Transaction {
	return Transaction{ID: RecordID(id), Date: date, Description: id, Category: "c", Amount: decimal.NewFromInt(amount), Type: typ, User: user}
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		tx("1", "2023-12-01", 5000, Income, RoleUser1),
		tx("2", "2023-12-05", 2000, Expense, RoleShared),
		tx("3", "2023-12-06", 450, Expense, RoleUser2),
		tx("4", "2023-12-07", 50, Expense, RoleShared),
	}
	d := Summarize(txs, 3)

	if !d.Income.Equal(decimal.NewFromInt(5000)) || !d.Expense.Equal(decimal.NewFromInt(2500)) || !d.Balance.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("unexpected totals %s %s %s", d.Income, d.Expense, d.Balance)
	}
	if len(d.UserSplit) != 2 {
		t.Fatalf("expected 2 split entries, got %d", len(d.UserSplit))
	}
	if d.UserSplit[0].Name != "shared" || !d.UserSplit[0].Value.Equal(decimal.NewFromInt(2050)) {
		t.Fatalf("unexpected first split %+v", d.UserSplit[0])
	}
	if d.UserSplit[1].Name != "user2" {
		t.Fatalf("unexpected second split %+v", d.UserSplit[1])
	}
	if len(d.RecentTransactions) != 3 || d.RecentTransactions[0].ID != "4" || d.RecentTransactions[2].ID != "2" {
		t.Fatalf("unexpected recent %+v", d.RecentTransactions)
	}
	if txs[0].ID != "1" {
		t.Fatalf("input reordered")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	d := Summarize(nil, RecentLimit)
	if !d.Balance.IsZero() || len(d.UserSplit) != 0 || d.RecentTransactions == nil {
		t.Fatalf("unexpected empty summary %+v", d)
	}
}
