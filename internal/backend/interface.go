package backend

import (
	"context"
	"time"

	"financas/internal/gateway"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	// Backend is what the session talks to. Every call carries the
	// configured timeout.
	Backend gateway.Gateway
	// Dispatcher serves envelope requests against the same backend, for
	// the /exec endpoint.
	Dispatcher *gateway.Dispatcher
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type           BackendType
	RequestTimeout time.Duration

	// Remote specific
	APIURL   string
	APIToken string

	// Memory specific
	MemorySeedFile string
	MemoryLatency  time.Duration

	// SQLite specific
	SQLiteDBPath string

	// Mutation events; off when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID     string
	GoogleTransactionsSheet string
	GoogleGoalsSheet        string
	GoogleSettingsSheet     string
	GoogleCredentialsFile   string
	GoogleCredentialsJSON   string
}

// BackendType represents the type of backend
type BackendType string

const (
	RemoteBackend BackendType = "remote"
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case RemoteBackend, MemoryBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
