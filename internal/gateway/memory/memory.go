package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"financas/internal/core"
	"financas/internal/gateway"
)

// Seed is the initial content of a Store.
type Seed struct {
	Transactions []core.Transaction `json:"transactions"`
	Goals        []core.Goal        `json:"goals"`
	Settings     core.Settings      `json:"settings"`
}

// DemoSeed returns the demo data shown when no backend is configured.
func DemoSeed() Seed {
	return Seed{
		Transactions: []core.Transaction{
			{ID: "1", Date: "2023-12-01", Description: "Salário", Category: "Salário", Amount: decimal.NewFromInt(5000), Type: core.Income, User: "Pessoa 1"},
			{ID: "2", Date: "2023-12-05", Description: "Aluguel", Category: "Moradia", Amount: decimal.NewFromInt(2000), Type: core.Expense, User: "Compartilhado"},
			{ID: "3", Date: "2023-12-06", Description: "Supermercado", Category: "Alimentação", Amount: decimal.NewFromInt(450), Type: core.Expense, User: "Pessoa 2"},
		},
		Goals: []core.Goal{
			{ID: "1", Name: "Viagem Fim de Ano", Target: decimal.NewFromInt(5000), Current: decimal.NewFromInt(3500)},
			{ID: "2", Name: "Reserva de Emergência", Target: decimal.NewFromInt(20000), Current: decimal.NewFromInt(8000)},
		},
		Settings: core.Settings{},
	}
}

// Store is an in-process backend. Records live only as long as the process.
type Store struct {
	mu       sync.Mutex
	txs      []core.Transaction
	goals    []core.Goal
	settings core.Settings
	latency  time.Duration
	newID    func() core.RecordID
}

var _ gateway.Gateway = (*Store)(nil)

// Option customizes a Store.
type Option func(*Store)

// WithLatency delays every call, simulating a remote round trip.
func WithLatency(d time.Duration) Option {
	return func(s *Store) { s.latency = d }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() core.RecordID) Option {
	return func(s *Store) { s.newID = fn }
}

func New(seed Seed, opts ...Option) *Store {
	s := &Store{
		txs:      append([]core.Transaction(nil), seed.Transactions...),
		goals:    append([]core.Goal(nil), seed.Goals...),
		settings: seed.Settings.Clone(),
		newID:    func() core.RecordID { return core.RecordID(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromFile seeds the store from a JSON file. A missing file means the
// demo data.
func NewFromFile(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return New(DemoSeed(), opts...), nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(DemoSeed(), opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return New(seed, opts...), nil
}

func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Store) GetDashboard(ctx context.Context) (core.Dashboard, error) {
	if err := s.wait(ctx); err != nil {
		return core.Dashboard{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Summarize(s.txs, core.RecentLimit), nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction{}, s.txs...), nil
}

// AddTransaction stores tx after filling its defaults.
func (s *Store) AddTransaction(ctx context.Context, tx core.NewTransaction) (core.Transaction, error) {
	tx = tx.Normalize()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.wait(ctx); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	created := tx.WithID(s.newID())
	s.txs = append(s.txs, created)
	return created, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id core.RecordID) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.txs {
		if tx.ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s not found", id)
}

func (s *Store) ListGoals(ctx context.Context) ([]core.Goal, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal{}, s.goals...), nil
}

func (s *Store) AddGoal(ctx context.Context, g core.NewGoal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.wait(ctx); err != nil {
		return core.Goal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	created := g.WithID(s.newID())
	s.goals = append(s.goals, created)
	return created, nil
}

func (s *Store) UpdateGoal(ctx context.Context, u core.GoalUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals {
		if s.goals[i].ID == u.ID {
			s.goals[i].Current = u.Current
			return nil
		}
	}
	return fmt.Errorf("goal %s not found", u.ID)
}

func (s *Store) GetSettings(ctx context.Context) (core.Settings, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone(), nil
}

// SaveSettings merges partial into the stored settings.
func (s *Store) SaveSettings(ctx context.Context, partial core.Settings) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		s.settings = core.Settings{}
	}
	for k, v := range partial {
		s.settings[k] = v
	}
	return nil
}
