package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "financas.db")
	repo, err := NewSQLiteRepository(path, nil)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestMigrationsApplied(t *testing.T) {
	_, path := newTestRepo(t)
	v, dirty, err := SchemaVersion(path)
	if err != nil || dirty || v != 1 {
		t.Fatalf("expected clean version 1, got v=%d dirty=%v err=%v", v, dirty, err)
	}
	// running again is a no-op
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.AddTransaction(ctx, core.NewTransaction{
		Date: "2024-01-10", Description: "Mercado", Category: "Alimentação",
		Amount: decimal.RequireFromString("123.45"), Type: core.Expense, User: core.RoleUser1,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.ID != "1" || !first.Amount.Equal(decimal.RequireFromString("123.45")) {
		t.Fatalf("unexpected created %+v", first)
	}
	if _, err := repo.AddTransaction(ctx, core.NewTransaction{
		Date: "2024-01-12", Description: "Salário", Category: "Salário",
		Amount: decimal.NewFromInt(5000), Type: core.Income, User: core.RoleUser2,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	txs, err := repo.ListTransactions(ctx)
	if err != nil || len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d err=%v", len(txs), err)
	}
	if txs[0].Date != "2024-01-12" {
		t.Fatalf("expected newest first, got %+v", txs[0])
	}

	d, err := repo.GetDashboard(ctx)
	if err != nil || !d.Balance.Equal(decimal.RequireFromString("4876.55")) {
		t.Fatalf("unexpected dashboard %+v err=%v", d, err)
	}

	if err := repo.DeleteTransaction(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "not-a-number"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign id, got %v", err)
	}
}

func TestAddTransactionValidates(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.AddTransaction(context.Background(), core.NewTransaction{Description: "x", Category: "y", Amount: decimal.NewFromInt(1), Type: "gift"})
	if !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestGoals(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	g, err := repo.AddGoal(ctx, core.NewGoal{Name: " Viagem ", Target: decimal.NewFromInt(5000), Current: decimal.NewFromInt(100)})
	if err != nil || g.Name != "Viagem" {
		t.Fatalf("unexpected goal %+v err=%v", g, err)
	}
	if err := repo.UpdateGoal(ctx, core.GoalUpdate{ID: g.ID, Current: decimal.NewFromInt(3500)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	goals, _ := repo.ListGoals(ctx)
	if len(goals) != 1 || !goals[0].Current.Equal(decimal.NewFromInt(3500)) {
		t.Fatalf("unexpected goals %+v", goals)
	}
	if err := repo.UpdateGoal(ctx, core.GoalUpdate{ID: "99", Current: decimal.Zero}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSettingsUpsert(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveSettings(ctx, core.Settings{core.KeyUser1Name: "Ana", core.KeyUser2Name: "Bia"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveSettings(ctx, core.Settings{core.KeyUser1Name: "Ana Paula"}); err != nil {
		t.Fatal(err)
	}
	s, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s[core.KeyUser1Name] != "Ana Paula" || s[core.KeyUser2Name] != "Bia" {
		t.Fatalf("unexpected settings %v", s)
	}
}
