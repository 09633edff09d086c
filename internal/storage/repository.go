package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"financas/internal/core"
	"financas/internal/gateway"
	"financas/internal/log"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an id matches no row.
var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

var _ gateway.Gateway = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// parseID accepts only the integer ids this store hands out.
func parseID(id core.RecordID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n, nil
}

func formatID(id int64) core.RecordID {
	return core.RecordID(strconv.FormatInt(id, 10))
}

func toTransaction(t Transaction) (core.Transaction, error) {
	amount, err := decimal.NewFromString(t.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d amount %q: %w", t.ID, t.Amount, err)
	}
	return core.Transaction{
		ID:          formatID(t.ID),
		Date:        t.Date,
		Description: t.Description,
		Category:    t.Category,
		Amount:      amount,
		Type:        core.TxType(t.Type),
		User:        core.Role(t.UserTag),
	}, nil
}

func toGoal(g Goal) (core.Goal, error) {
	target, err := decimal.NewFromString(g.Target)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %d target %q: %w", g.ID, g.Target, err)
	}
	current, err := decimal.NewFromString(g.Current)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %d current %q: %w", g.ID, g.Current, err)
	}
	return core.Goal{ID: formatID(g.ID), Name: g.Name, Target: target, Current: current}, nil
}

func (r *SQLiteRepository) GetDashboard(ctx context.Context) (core.Dashboard, error) {
	txs, err := r.ListTransactions(ctx)
	if err != nil {
		return core.Dashboard{}, err
	}
	return core.Summarize(txs, core.RecentLimit), nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := toTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *SQLiteRepository) AddTransaction(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Date:        in.Date,
		Description: in.Description,
		Category:    in.Category,
		Amount:      in.Amount.String(),
		Type:        string(in.Type),
		UserTag:     string(in.User),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	r.logger.InfoContext(ctx, "Transaction saved to SQLite",
		log.FieldRecordID, row.ID,
		log.FieldAmount, row.Amount,
		log.FieldTxType, row.Type)
	return toTransaction(row)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id core.RecordID) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := r.queries.DeleteTransaction(ctx, n)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", n, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %d", ErrNotFound, n)
	}
	return nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.queries.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.Goal, 0, len(rows))
	for _, row := range rows {
		g, err := toGoal(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *SQLiteRepository) AddGoal(ctx context.Context, in core.NewGoal) (core.Goal, error) {
	if err := in.Validate(); err != nil {
		return core.Goal{}, err
	}
	row, err := r.queries.CreateGoal(ctx, CreateGoalParams{
		Name:    strings.TrimSpace(in.Name),
		Target:  in.Target.String(),
		Current: in.Current.String(),
	})
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return toGoal(row)
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, u core.GoalUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	n, err := parseID(u.ID)
	if err != nil {
		return err
	}
	affected, err := r.queries.UpdateGoalCurrent(ctx, u.Current.String(), n)
	if err != nil {
		return fmt.Errorf("update goal %d: %w", n, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: goal %d", ErrNotFound, n)
	}
	return nil
}

func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	m, err := r.queries.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return core.Settings(m), nil
}

// SaveSettings upserts every key of partial in one transaction.
func (r *SQLiteRepository) SaveSettings(ctx context.Context, partial core.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)
	for k, v := range partial {
		if err := q.UpsertSetting(ctx, k, v); err != nil {
			return fmt.Errorf("save setting %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	r.logger.InfoContext(ctx, "Settings saved", log.FieldKeys, len(partial))
	return nil
}
