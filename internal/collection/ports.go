package collection

import (
	"context"

	"expensetracker/internal/core"
)

// Ports for the expense collection. The dashboard talks to a Collection over
// the network; the API server persists through a Repository.
type (
	Collection interface {
		// List returns the whole collection in store order.
		List(ctx context.Context) ([]core.ExpenseRecord, error)
		// Create stores the draft and returns it with its assigned id.
		Create(ctx context.Context, d core.Draft) (core.ExpenseRecord, error)
		// Update replaces the four mutable fields of record id.
		Update(ctx context.Context, id string, d core.Draft) (core.ExpenseRecord, error)
		// Delete removes record id. Missing ids return core.ErrNotFound.
		Delete(ctx context.Context, id string) error
	}

	Repository interface {
		Collection
		Get(ctx context.Context, id string) (core.ExpenseRecord, error)
	}
)
