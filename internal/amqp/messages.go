package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Mutation kinds.
const (
	TransactionCreated = "transaction.created"
	TransactionDeleted = "transaction.deleted"
	GoalCreated        = "goal.created"
	GoalUpdated        = "goal.updated"
	SettingsSaved      = "settings.saved"
)

// MutationEvent announces a successful write. It carries identifiers only;
// consumers read the record from the backend if they need it.
type MutationEvent struct {
	Kind      string    `json:"kind"`
	RecordID  string    `json:"record_id,omitempty"`
	Keys      []string  `json:"keys,omitempty"`
	Backend   string    `json:"backend,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMutationEvent(kind, recordID string) *MutationEvent {
	return &MutationEvent{
		Kind:      kind,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// NewSettingsEvent names the saved keys, never their values.
func NewSettingsEvent(keys []string) *MutationEvent {
	return &MutationEvent{
		Kind:      SettingsSaved,
		Keys:      keys,
		Timestamp: time.Now(),
	}
}

func (m *MutationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationEventFromJSON(data []byte) (*MutationEvent, error) {
	var msg MutationEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		return nil, fmt.Errorf("mutation event without kind")
	}
	return &msg, nil
}
