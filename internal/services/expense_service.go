package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"expensetracker/internal/amqp"
	"expensetracker/internal/collection"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// EventPublisher announces collection changes to downstream consumers.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error
}

// ExpenseService is the collection service behind the expense API: it
// validates input, persists through the repository and publishes a change
// event for every successful mutation.
type ExpenseService struct {
	repo      collection.Repository
	publisher EventPublisher
	logger    *log.Logger
	audit     *log.StructuredLogger
}

// NewExpenseService wires the service. publisher may be nil, in which case
// no events are published.
func NewExpenseService(repo collection.Repository, publisher EventPublisher, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentExpense)
	return &ExpenseService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		audit:     log.NewStructuredLogger(logger),
	}
}

func (s *ExpenseService) List(ctx context.Context) ([]core.ExpenseRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return records, nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (core.ExpenseRecord, error) {
	return s.repo.Get(ctx, id)
}

// Create saves a new expense and publishes a created event
func (s *ExpenseService) Create(ctx context.Context, d core.Draft) (core.ExpenseRecord, error) {
	if err := d.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	rec, err := s.repo.Create(ctx, d)
	if err != nil {
		s.audit.LogError(ctx, "Failed to save expense", err, log.ErrorTypeDatabase, log.OpCreate, nil)
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}
	s.logMutation(ctx, log.OpCreate, rec)
	s.publish(ctx, amqp.EventCreated, rec)
	return rec, nil
}

// Update replaces all mutable fields of record id.
func (s *ExpenseService) Update(ctx context.Context, id string, d core.Draft) (core.ExpenseRecord, error) {
	if err := d.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	rec, err := s.repo.Update(ctx, id, d)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.audit.LogError(ctx, "Failed to update expense", err, log.ErrorTypeDatabase, log.OpUpdate,
				log.NewFields().With(log.FieldRecordID, id))
		}
		return core.ExpenseRecord{}, err
	}
	s.logMutation(ctx, log.OpUpdate, rec)
	s.publish(ctx, amqp.EventUpdated, rec)
	return rec, nil
}

// Patch merges a partial JSON body onto the stored record and validates the
// result before saving.
func (s *ExpenseService) Patch(ctx context.Context, id string, body []byte) (core.ExpenseRecord, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	merged, err := core.MergeDraft(current.Draft(), body)
	if err != nil {
		return core.ExpenseRecord{}, &core.ValidationError{Field: "body", Err: err}
	}
	return s.Update(ctx, id, merged)
}

// Delete removes record id and publishes the removed record.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.audit.LogError(ctx, "Failed to delete expense", err, log.ErrorTypeDatabase, log.OpDelete,
				log.NewFields().With(log.FieldRecordID, id))
		}
		return err
	}
	s.logMutation(ctx, log.OpDelete, rec)
	s.publish(ctx, amqp.EventDeleted, rec)
	return nil
}

// publish is best effort: the mutation is already stored.
func (s *ExpenseService) publish(ctx context.Context, op amqp.EventOp, rec core.ExpenseRecord) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher configured, skipping event",
			log.FieldOperation, string(op), log.FieldRecordID, rec.ID)
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, amqp.NewRecordEvent(op, rec)); err != nil {
		s.audit.LogError(ctx, "Failed to publish record event", err, log.ErrorTypeTransport, log.OpPublish,
			log.NewFields().With(log.FieldRecordID, rec.ID))
	}
}

func (s *ExpenseService) logMutation(ctx context.Context, op string, r core.ExpenseRecord) {
	s.audit.LogMutation(ctx, op, r.ID, r.Title, r.Amount.String(), string(r.Category), r.Date.String())
}

// Close closes the repository and publisher when they hold resources.
func (s *ExpenseService) Close() error {
	var errs []error
	if c, ok := s.repo.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}
	return nil
}
