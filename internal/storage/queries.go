package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Transaction struct {
	ID          int64
	Date        string
	Description string
	Category    string
	Amount      string
	Type        string
	UserTag     string
}

type Goal struct {
	ID      int64
	Name    string
	Target  string
	Current string
}

const createTransaction = `INSERT INTO transactions (date, description, category, amount, type, user_tag)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, date, description, category, amount, type, user_tag`

type CreateTransactionParams struct {
	Date        string
	Description string
	Category    string
	Amount      string
	Type        string
	UserTag     string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.Date, arg.Description, arg.Category, arg.Amount, arg.Type, arg.UserTag)
	var i Transaction
	err := row.Scan(&i.ID, &i.Date, &i.Description, &i.Category, &i.Amount, &i.Type, &i.UserTag)
	return i, err
}

const listTransactions = `SELECT id, date, description, category, amount, type, user_tag
FROM transactions
ORDER BY date DESC, id DESC`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.ID, &i.Date, &i.Description, &i.Category, &i.Amount, &i.Type, &i.UserTag); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createGoal = `INSERT INTO goals (name, target, current)
VALUES (?, ?, ?)
RETURNING id, name, target, current`

type CreateGoalParams struct {
	Name    string
	Target  string
	Current string
}

func (q *Queries) CreateGoal(ctx context.Context, arg CreateGoalParams) (Goal, error) {
	row := q.db.QueryRowContext(ctx, createGoal, arg.Name, arg.Target, arg.Current)
	var i Goal
	err := row.Scan(&i.ID, &i.Name, &i.Target, &i.Current)
	return i, err
}

const listGoals = `SELECT id, name, target, current FROM goals ORDER BY id`

func (q *Queries) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Goal
	for rows.Next() {
		var i Goal
		if err := rows.Scan(&i.ID, &i.Name, &i.Target, &i.Current); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateGoalCurrent = `UPDATE goals SET current = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) UpdateGoalCurrent(ctx context.Context, current string, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateGoalCurrent, current, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listSettings = `SELECT key, value FROM settings`

func (q *Queries) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := q.db.QueryContext(ctx, listSettings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

const upsertSetting = `INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`

func (q *Queries) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, upsertSetting, key, value)
	return err
}
