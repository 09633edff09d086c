package adapters

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/gateway/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.MutationEvent
	err    error
}

func (p *recordingPublisher) PublishMutation(_ context.Context, evt *amqp.MutationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}

func TestPublishesAfterSuccessfulWrites(t *testing.T) {
	pub := &recordingPublisher{}
	gw := NewPublishingGateway(memory.New(memory.DemoSeed()), pub, "memory", nil)
	ctx := context.Background()

	tx, err := gw.AddTransaction(ctx, core.NewTransaction{Description: "Café", Category: "Alimentação", Amount: decimal.NewFromInt(8), Type: core.Expense})
	if err != nil {
		t.Fatal(err)
	}
	if err := gw.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatal(err)
	}
	g, err := gw.AddGoal(ctx, core.NewGoal{Name: "Carro", Target: decimal.NewFromInt(1000)})
	if err != nil {
		t.Fatal(err)
	}
	if err := gw.UpdateGoal(ctx, core.GoalUpdate{ID: g.ID, Current: decimal.NewFromInt(10)}); err != nil {
		t.Fatal(err)
	}
	if err := gw.SaveSettings(ctx, core.Settings{core.KeyUser2Name: "Bia", core.KeyUser1Name: "Ana"}); err != nil {
		t.Fatal(err)
	}
	if _, err := gw.ListTransactions(ctx); err != nil {
		t.Fatal(err)
	}

	want := []string{amqp.TransactionCreated, amqp.TransactionDeleted, amqp.GoalCreated, amqp.GoalUpdated, amqp.SettingsSaved}
	got := pub.kinds()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if pub.events[0].RecordID != tx.ID.String() || pub.events[0].Backend != "memory" {
		t.Fatalf("unexpected first event %+v", pub.events[0])
	}
	if keys := pub.events[4].Keys; len(keys) != 2 || keys[0] != core.KeyUser1Name {
		t.Fatalf("settings keys must be sorted, got %v", keys)
	}
}

func TestNoEventWhenWriteFails(t *testing.T) {
	pub := &recordingPublisher{}
	gw := NewPublishingGateway(memory.New(memory.DemoSeed()), pub, "memory", nil)

	if err := gw.DeleteTransaction(context.Background(), "missing"); err == nil {
		t.Fatal("expected delete of unknown id to fail")
	}
	if len(pub.kinds()) != 0 {
		t.Fatal("failed write must not publish")
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("connection refused")}
	gw := NewPublishingGateway(memory.New(memory.DemoSeed()), pub, "memory", nil)

	if err := gw.UpdateGoal(context.Background(), core.GoalUpdate{ID: "1", Current: decimal.NewFromInt(1)}); err != nil {
		t.Fatalf("write must succeed despite publish failure: %v", err)
	}
}

func TestNilPublisher(t *testing.T) {
	gw := NewPublishingGateway(memory.New(memory.DemoSeed()), nil, "memory", nil)
	if err := gw.SaveSettings(context.Background(), core.Settings{core.KeyAccessPIN: "1234"}); err != nil {
		t.Fatal(err)
	}
}
