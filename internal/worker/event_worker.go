package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"expensetracker/internal/amqp"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
)

// EventSource delivers record events to a handler until ctx ends.
type EventSource interface {
	ConsumeRecordEvents(ctx context.Context, handler func(context.Context, *amqp.RecordEvent) error) error
}

// Stats counts handled events since start.
type Stats struct {
	Mirrored int64
	Failed   int64
}

// EventWorker copies collection change events into the mirror.
type EventWorker struct {
	mirror sheets.EventMirror
	logger *log.Logger

	mirrored atomic.Int64
	failed   atomic.Int64
}

func NewEventWorker(mirror sheets.EventMirror, logger *log.Logger) *EventWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &EventWorker{
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRecordEvent mirrors one event. A returned error asks the source to
// redeliver it.
func (w *EventWorker) HandleRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error {
	w.logger.DebugContext(ctx, "Processing record event",
		log.FieldOperation, string(ev.Op),
		log.FieldRecordID, ev.Record.ID)

	ref, err := w.mirror.Mirror(ctx, ev)
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("mirror %s event for %s: %w", ev.Op, ev.Record.ID, err)
	}
	w.mirrored.Add(1)

	w.logger.InfoContext(ctx, "Record event mirrored",
		log.FieldOperation, string(ev.Op),
		log.FieldRecordID, ev.Record.ID,
		"ref", ref)
	return nil
}

// Run consumes from source until ctx is cancelled. Cancellation is a clean stop.
func (w *EventWorker) Run(ctx context.Context, source EventSource) error {
	w.logger.InfoContext(ctx, "Event worker started")
	err := source.ConsumeRecordEvents(ctx, w.HandleRecordEvent)
	if errors.Is(err, context.Canceled) {
		s := w.Stats()
		w.logger.Info("Event worker stopped", "mirrored", s.Mirrored, "failed", s.Failed)
		return nil
	}
	return err
}

func (w *EventWorker) Stats() Stats {
	return Stats{Mirrored: w.mirrored.Load(), Failed: w.failed.Load()}
}
