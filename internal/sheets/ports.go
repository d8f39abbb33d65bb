package sheets

import (
	"context"

	"expensetracker/internal/amqp"
)

// EventMirror appends collection change events to an external ledger.
type EventMirror interface {
	Mirror(ctx context.Context, ev *amqp.RecordEvent) (rowRef string, err error)
}
