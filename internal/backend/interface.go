package backend

import (
	"context"

	"expensetracker/internal/collection"
	"expensetracker/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult is everything the expense API needs from its storage layer.
type BackendResult struct {
	Repository collection.Repository
	Service    *services.ExpenseService
	// Ready reports whether the storage is reachable.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	SeedDemoData bool

	// Change events, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
