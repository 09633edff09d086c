package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

func TestMemoryStoreAddListDelete(t *testing.T) {
	ctx := context.Background()
	s := New(Seed{}, WithIDGenerator(func() core.RecordID { return "fixed" }))

	created, err := s.AddTransaction(ctx, core.NewTransaction{
		Description: "Feira",
		Category:    "Alimentação",
		Amount:      decimal.NewFromInt(80),
		Type:        core.Expense,
		User:        core.RoleUser1,
	})
	if err != nil || created.ID != "fixed" {
		t.Fatalf("unexpected add: %+v err=%v", created, err)
	}
	if created.Date != core.Today() {
		t.Fatalf("expected default date, got %q", created.Date)
	}

	txs, _ := s.ListTransactions(ctx)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if err := s.DeleteTransaction(ctx, "fixed"); err != nil {
		t.Fatalf("unexpected delete error %v", err)
	}
	if err := s.DeleteTransaction(ctx, "fixed"); err == nil {
		t.Fatalf("expected error deleting missing record")
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New(Seed{})
	_, err := s.AddTransaction(context.Background(), core.NewTransaction{Description: "x", Category: "y", Type: core.Income})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestMemoryStoreGoalsAndSettings(t *testing.T) {
	ctx := context.Background()
	s := New(DemoSeed())

	if err := s.UpdateGoal(ctx, core.GoalUpdate{ID: "1", Current: decimal.NewFromInt(4000)}); err != nil {
		t.Fatalf("unexpected update error %v", err)
	}
	goals, _ := s.ListGoals(ctx)
	if !goals[0].Current.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("update not applied: %+v", goals[0])
	}

	if err := s.SaveSettings(ctx, core.Settings{core.KeyUser1Name: "Ana"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSettings(ctx, core.Settings{core.KeyAccessPIN: "1234"}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetSettings(ctx)
	if got[core.KeyUser1Name] != "Ana" || got[core.KeyAccessPIN] != "1234" {
		t.Fatalf("expected merged settings, got %v", got)
	}
	got[core.KeyUser1Name] = "mutated"
	again, _ := s.GetSettings(ctx)
	if again[core.KeyUser1Name] != "Ana" {
		t.Fatalf("settings snapshot shares storage")
	}
}

func TestMemoryStoreDashboardFromDemo(t *testing.T) {
	d, err := New(DemoSeed()).GetDashboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !d.Income.Equal(decimal.NewFromInt(5000)) || !d.Expense.Equal(decimal.NewFromInt(2450)) {
		t.Fatalf("unexpected totals %s %s", d.Income, d.Expense)
	}
}

func TestMemoryStoreLatencyHonoursContext(t *testing.T) {
	s := New(DemoSeed(), WithLatency(time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := s.ListGoals(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	goals, _ := s.ListGoals(context.Background())
	if len(goals) != 2 {
		t.Fatalf("expected demo goals when file missing, got %d", len(goals))
	}

	path := filepath.Join(dir, "seed.json")
	seed := `{"transactions":[{"id":7,"date":"2024-01-02","description":"Luz","category":"Casa","amount":120.5,"type":"expense","user":"user2"}],"settings":{"user2_name":"Bia"}}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	txs, _ := s.ListTransactions(context.Background())
	if len(txs) != 1 || txs[0].ID != "7" {
		t.Fatalf("unexpected seeded transactions %+v", txs)
	}

	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
