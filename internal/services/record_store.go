package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"expensetracker/internal/collection"
	"expensetracker/internal/core"
	"expensetracker/internal/log"

	"golang.org/x/sync/semaphore"
)

// RecordStore is the dashboard's view of the remote collection. The local
// slice is only ever replaced wholesale by a successful List; mutations are
// serialised and each one is followed by a full re-fetch.
type RecordStore struct {
	remote collection.Collection
	logger *log.Logger
	audit  *log.StructuredLogger
	writes *semaphore.Weighted

	mu      sync.RWMutex
	records []core.ExpenseRecord
	applied uint64 // sequence of the List result currently held

	issued atomic.Uint64
}

func NewRecordStore(remote collection.Collection, logger *log.Logger) *RecordStore {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentRecordStore)
	return &RecordStore{
		remote:  remote,
		logger:  logger,
		audit:   log.NewStructuredLogger(logger),
		writes:  semaphore.NewWeighted(1),
		records: []core.ExpenseRecord{},
	}
}

// Records returns a copy of the last applied collection.
func (s *RecordStore) Records() []core.ExpenseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Refresh fetches the full collection. On failure the previous records are
// returned together with the error and nothing is replaced. A response whose
// request was issued before the one already applied is dropped.
func (s *RecordStore) Refresh(ctx context.Context) ([]core.ExpenseRecord, error) {
	seq := s.issued.Add(1)
	list, err := s.remote.List(ctx)
	if err != nil {
		s.audit.LogError(ctx, "Refresh failed, keeping previous records", err,
			errorType(err), log.OpRefresh, log.NewFields().With(log.FieldSequence, seq))
		return s.Records(), asTransport(log.OpList, err)
	}
	s.apply(ctx, seq, list)
	return s.Records(), nil
}

func (s *RecordStore) apply(ctx context.Context, seq uint64, list []core.ExpenseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		s.logger.DebugContext(ctx, "Discarding stale list response",
			log.FieldSequence, seq,
			"applied_sequence", s.applied)
		return
	}
	s.records = slices.Clone(list)
	if s.records == nil {
		s.records = []core.ExpenseRecord{}
	}
	s.applied = seq
	s.logger.DebugContext(ctx, "Applied list response",
		log.FieldSequence, seq,
		log.FieldRecordCount, len(list))
}

// Submit dispatches a validated form submission to Create or Update.
func (s *RecordStore) Submit(ctx context.Context, sub core.Submission) (core.ExpenseRecord, error) {
	if sub.IsUpdate() {
		return s.Update(ctx, sub.ID, sub.Draft)
	}
	return s.Create(ctx, sub.Draft)
}

func (s *RecordStore) Create(ctx context.Context, d core.Draft) (core.ExpenseRecord, error) {
	if err := d.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	if err := s.writes.Acquire(ctx, 1); err != nil {
		return core.ExpenseRecord{}, err
	}
	defer s.writes.Release(1)

	rec, err := s.remote.Create(ctx, d)
	if err != nil {
		s.audit.LogError(ctx, "Create failed", err, errorType(err), log.OpCreate, nil)
		return core.ExpenseRecord{}, asTransport(log.OpCreate, err)
	}
	s.logMutation(ctx, log.OpCreate, rec)
	s.refreshAfterWrite(ctx, log.OpCreate)
	return rec, nil
}

// Update replaces record id. A missing target is reported to the caller, but
// the collection is still re-fetched so the edit form can be reconciled.
func (s *RecordStore) Update(ctx context.Context, id string, d core.Draft) (core.ExpenseRecord, error) {
	if err := d.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	if err := s.writes.Acquire(ctx, 1); err != nil {
		return core.ExpenseRecord{}, err
	}
	defer s.writes.Release(1)

	rec, err := s.remote.Update(ctx, id, d)
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.audit.LogError(ctx, "Update target not found", err, log.ErrorTypeNotFound, log.OpUpdate,
			log.NewFields().With(log.FieldRecordID, id))
		s.refreshAfterWrite(ctx, log.OpUpdate)
		return core.ExpenseRecord{}, err
	case err != nil:
		s.audit.LogError(ctx, "Update failed", err, errorType(err), log.OpUpdate,
			log.NewFields().With(log.FieldRecordID, id))
		return core.ExpenseRecord{}, asTransport(log.OpUpdate, err)
	}
	s.logMutation(ctx, log.OpUpdate, rec)
	s.refreshAfterWrite(ctx, log.OpUpdate)
	return rec, nil
}

// Delete removes record id. Deleting an absent record is not an error.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	if err := s.writes.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.writes.Release(1)

	err := s.remote.Delete(ctx, id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.logger.InfoContext(ctx, "Delete target already absent", log.FieldRecordID, id)
	case err != nil:
		s.audit.LogError(ctx, "Delete failed", err, errorType(err), log.OpDelete,
			log.NewFields().With(log.FieldRecordID, id))
		return asTransport(log.OpDelete, err)
	default:
		s.logMutation(ctx, log.OpDelete, core.ExpenseRecord{ID: id})
	}
	s.refreshAfterWrite(ctx, log.OpDelete)
	return nil
}

// refreshAfterWrite re-fetches the collection after a mutation. The mutation
// itself already succeeded, so a failed re-fetch is logged and not returned.
func (s *RecordStore) refreshAfterWrite(ctx context.Context, op string) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "Collection stale after mutation",
			log.FieldOperation, op,
			log.FieldError, err.Error())
	}
}

func (s *RecordStore) logMutation(ctx context.Context, op string, r core.ExpenseRecord) {
	s.audit.LogMutation(ctx, op, r.ID, r.Title, r.Amount.String(), string(r.Category), r.Date.String())
}

// asTransport wraps errors that carry no taxonomy of their own.
func asTransport(op string, err error) error {
	if err == nil || core.IsTransport(err) || core.IsValidation(err) ||
		errors.Is(err, core.ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &core.TransportError{Op: op, Err: err}
}

func errorType(err error) string {
	switch {
	case core.IsValidation(err):
		return log.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return log.ErrorTypeNotFound
	case core.IsTransport(err):
		return log.ErrorTypeTransport
	default:
		return log.ErrorTypeInternal
	}
}
