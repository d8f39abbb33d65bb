package backend

import (
	"context"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/collection"
	"expensetracker/internal/collection/memory"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if config.SeedDemoData {
		existing, err := repo.List(ctx)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("inspect SQLite repository: %w", err)
		}
		// only an empty database is seeded, so deleted demo rows stay deleted
		if len(existing) == 0 {
			if err := repo.Seed(ctx, memory.DemoRecords()); err != nil {
				repo.Close()
				return nil, fmt.Errorf("seed SQLite repository: %w", err)
			}
			f.logger.Info("Seeded demo expenses", log.FieldRecordCount, len(memory.DemoRecords()))
		}
	}

	svc := f.newService(repo, config)
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Repository: repo,
		Service:    svc,
		Ready:      repo.Ping,
		Cleanup:    svc.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(_ context.Context, config Config) (*BackendResult, error) {
	store := memory.New()
	if config.SeedDemoData {
		store = memory.NewSeeded()
	}
	svc := f.newService(store, config)
	f.logger.Info("Initialized memory backend", "seeded", config.SeedDemoData)

	return &BackendResult{
		Repository: store,
		Service:    svc,
		Ready:      func(context.Context) error { return nil },
		Cleanup:    svc.Close,
	}, nil
}

// newService attaches an AMQP publisher when configured. A broker that cannot
// be reached is logged and the API runs without events.
func (f *DefaultFactory) newService(repo collection.Repository, config Config) *services.ExpenseService {
	if config.AMQPURL == "" {
		return services.NewExpenseService(repo, nil, f.logger)
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err.Error())
		return services.NewExpenseService(repo, nil, f.logger)
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return services.NewExpenseService(repo, client, f.logger)
}
