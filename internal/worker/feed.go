// Package worker turns mutation events into a readable activity feed.
package worker

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"financas/internal/amqp"
	"financas/internal/log"
)

const timeLayout = "02/01/2006 15:04"

var kindLabels = map[string]string{
	amqp.TransactionCreated: "Transação adicionada",
	amqp.TransactionDeleted: "Transação excluída",
	amqp.GoalCreated:        "Meta criada",
	amqp.GoalUpdated:        "Meta atualizada",
	amqp.SettingsSaved:      "Configurações salvas",
}

// Feed writes one line per mutation event to out.
type Feed struct {
	mu     sync.Mutex
	out    io.Writer
	logger *log.Logger
	seen   int
}

func NewFeed(out io.Writer, logger *log.Logger) *Feed {
	if logger == nil {
		logger = log.Discard()
	}
	return &Feed{out: out, logger: logger.WithComponent(log.ComponentAMQP)}
}

// HandleMutation formats evt. Unknown kinds are written with their raw
// name. A write error is returned so the delivery is requeued.
func (f *Feed) HandleMutation(ctx context.Context, evt *amqp.MutationEvent) error {
	line := FormatEvent(evt)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := fmt.Fprintln(f.out, line); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	f.seen++
	f.logger.DebugContext(ctx, "Mutation event handled", "kind", evt.Kind, log.FieldRecordID, evt.RecordID, log.FieldBackend, evt.Backend)
	return nil
}

// Seen returns how many events were written.
func (f *Feed) Seen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen
}

// FormatEvent renders evt as "[dd/mm/yyyy hh:mm] Label #id (backend)".
func FormatEvent(evt *amqp.MutationEvent) string {
	var b strings.Builder
	b.WriteString("[" + evt.Timestamp.Local().Format(timeLayout) + "] ")

	label, ok := kindLabels[evt.Kind]
	if !ok {
		label = evt.Kind
	}
	b.WriteString(label)

	if evt.RecordID != "" {
		b.WriteString(" #" + evt.RecordID)
	}
	if len(evt.Keys) > 0 {
		b.WriteString(": " + strings.Join(evt.Keys, ", "))
	}
	if evt.Backend != "" {
		b.WriteString(" (" + evt.Backend + ")")
	}
	return b.String()
}
