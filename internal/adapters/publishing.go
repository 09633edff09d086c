// Package adapters decorates backends with side effects the core does not
// know about.
package adapters

import (
	"context"
	"sort"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/gateway"
	"financas/internal/log"
)

// Publisher sends mutation events.
type Publisher interface {
	PublishMutation(ctx context.Context, evt *amqp.MutationEvent) error
}

// PublishingGateway forwards every call to the wrapped backend and, after
// each successful write, publishes a mutation event. A failed publish is
// logged and never fails the write; the record is already stored.
type PublishingGateway struct {
	gateway.Gateway
	pub     Publisher
	backend string
	logger  *log.Logger
}

var _ gateway.Gateway = (*PublishingGateway)(nil)

func NewPublishingGateway(inner gateway.Gateway, pub Publisher, backend string, logger *log.Logger) *PublishingGateway {
	if logger == nil {
		logger = log.Discard()
	}
	return &PublishingGateway{
		Gateway: inner,
		pub:     pub,
		backend: backend,
		logger:  logger.WithComponent(log.ComponentAMQP),
	}
}

func (g *PublishingGateway) AddTransaction(ctx context.Context, tx core.NewTransaction) (core.Transaction, error) {
	created, err := g.Gateway.AddTransaction(ctx, tx)
	if err != nil {
		return created, err
	}
	g.publish(ctx, amqp.NewMutationEvent(amqp.TransactionCreated, created.ID.String()))
	return created, nil
}

func (g *PublishingGateway) DeleteTransaction(ctx context.Context, id core.RecordID) error {
	if err := g.Gateway.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	g.publish(ctx, amqp.NewMutationEvent(amqp.TransactionDeleted, id.String()))
	return nil
}

func (g *PublishingGateway) AddGoal(ctx context.Context, goal core.NewGoal) (core.Goal, error) {
	created, err := g.Gateway.AddGoal(ctx, goal)
	if err != nil {
		return created, err
	}
	g.publish(ctx, amqp.NewMutationEvent(amqp.GoalCreated, created.ID.String()))
	return created, nil
}

func (g *PublishingGateway) UpdateGoal(ctx context.Context, u core.GoalUpdate) error {
	if err := g.Gateway.UpdateGoal(ctx, u); err != nil {
		return err
	}
	g.publish(ctx, amqp.NewMutationEvent(amqp.GoalUpdated, u.ID.String()))
	return nil
}

func (g *PublishingGateway) SaveSettings(ctx context.Context, partial core.Settings) error {
	if err := g.Gateway.SaveSettings(ctx, partial); err != nil {
		return err
	}
	keys := make([]string, 0, len(partial))
	for k := range partial {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	g.publish(ctx, amqp.NewSettingsEvent(keys))
	return nil
}

func (g *PublishingGateway) publish(ctx context.Context, evt *amqp.MutationEvent) {
	if g.pub == nil {
		g.logger.DebugContext(ctx, "AMQP publisher not available, skipping event", "kind", evt.Kind)
		return
	}
	evt.Backend = g.backend
	if err := g.pub.PublishMutation(ctx, evt); err != nil {
		g.logger.ErrorContext(ctx, "Failed to publish mutation event",
			"kind", evt.Kind, log.FieldRecordID, evt.RecordID, log.FieldError, err)
	}
}
