package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"financas/internal/amqp"
)

func TestFormatEvent(t *testing.T) {
	at := time.Date(2024, 2, 10, 14, 3, 0, 0, time.Local)
	tests := []struct {
		name string
		evt  amqp.MutationEvent
		want string
	}{
		{
			"transaction",
			amqp.MutationEvent{Kind: amqp.TransactionCreated, RecordID: "42", Backend: "sqlite", Timestamp: at},
			"[10/02/2024 14:03] Transação adicionada #42 (sqlite)",
		},
		{
			"settings lists keys",
			amqp.MutationEvent{Kind: amqp.SettingsSaved, Keys: []string{"user1_name", "user2_name"}, Timestamp: at},
			"[10/02/2024 14:03] Configurações salvas: user1_name, user2_name",
		},
		{
			"unknown kind",
			amqp.MutationEvent{Kind: "budget.closed", Timestamp: at},
			"[10/02/2024 14:03] budget.closed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatEvent(&tt.evt); got != tt.want {
				t.Errorf("FormatEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFeedHandleMutation(t *testing.T) {
	var buf bytes.Buffer
	f := NewFeed(&buf, nil)

	for _, kind := range []string{amqp.GoalCreated, amqp.GoalUpdated} {
		if err := f.HandleMutation(context.Background(), amqp.NewMutationEvent(kind, "g1")); err != nil {
			t.Fatal(err)
		}
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "Meta atualizada #g1") {
		t.Fatalf("unexpected feed %q", buf.String())
	}
	if f.Seen() != 2 {
		t.Fatalf("Seen() = %d", f.Seen())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFeedWriteError(t *testing.T) {
	f := NewFeed(failingWriter{}, nil)
	if err := f.HandleMutation(context.Background(), amqp.NewMutationEvent(amqp.TransactionDeleted, "1")); err == nil {
		t.Fatal("expected error")
	}
	if f.Seen() != 0 {
		t.Fatal("failed writes must not count")
	}
}
