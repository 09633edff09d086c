package backend

import (
	"context"
	"errors"
	"fmt"

	"financas/internal/adapters"
	"financas/internal/amqp"
	"financas/internal/gateway"
	"financas/internal/gateway/memory"
	"financas/internal/gateway/remote"
	"financas/internal/gateway/sheets"
	"financas/internal/log"
	"financas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend builds the configured backend. Local backends are reached
// through the same envelope dispatch and timeout as the remote one, so
// every backend behaves alike towards the session. Successful writes are
// announced over AMQP when it is configured.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var closers []func() error
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return fmt.Errorf("close backend: %w", errors.Join(errs...))
		}
		return nil
	}

	var pub adapters.Publisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			pub = client
			closers = append(closers, client.Close)
		}
	}

	if config.Type == RemoteBackend {
		var gw gateway.Gateway = gateway.NewClient(remote.New(config.APIURL).WithToken(config.APIToken), config.RequestTimeout, f.logger)
		if pub != nil {
			gw = adapters.NewPublishingGateway(gw, pub, config.Type.String(), f.logger)
		}
		f.logger.Info("Initialized remote backend", "timeout", config.RequestTimeout)
		return &BackendResult{Backend: gw, Dispatcher: gateway.NewDispatcher(gw), Cleanup: cleanup}, nil
	}

	local, closeLocal, err := f.createLocal(ctx, config)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	if closeLocal != nil {
		closers = append(closers, closeLocal)
	}
	if pub != nil {
		local = adapters.NewPublishingGateway(local, pub, config.Type.String(), f.logger)
	}

	disp := gateway.NewDispatcher(local)
	return &BackendResult{
		Backend:    gateway.NewClient(disp, config.RequestTimeout, f.logger),
		Dispatcher: disp,
		Cleanup:    cleanup,
	}, nil
}

func (f *DefaultFactory) createLocal(ctx context.Context, config Config) (gateway.Gateway, func() error, error) {
	switch config.Type {
	case MemoryBackend:
		store, err := memory.NewFromFile(config.MemorySeedFile, memory.WithLatency(config.MemoryLatency))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize memory backend: %w", err)
		}
		f.logger.Info("Initialized memory backend", "seed_file", config.MemorySeedFile, "latency", config.MemoryLatency)
		return store, nil, nil

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, repo.Close, nil

	case SheetsBackend:
		cli, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:     config.GoogleSpreadsheetID,
			TransactionsSheet: config.GoogleTransactionsSheet,
			GoalsSheet:        config.GoogleGoalsSheet,
			SettingsSheet:     config.GoogleSettingsSheet,
			CredentialsJSON:   config.GoogleCredentialsJSON,
			CredentialsFile:   config.GoogleCredentialsFile,
		}, f.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)
		return cli, nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
}
