package memory

import (
	"context"
	"slices"
	"sync"

	"expensetracker/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu    sync.Mutex
	items []core.ExpenseRecord
}

func New(seed ...core.ExpenseRecord) *Store {
	return &Store{items: slices.Clone(seed)}
}

// NewSeeded returns a store holding the three demo expenses.
func NewSeeded() *Store {
	return New(DemoRecords()...)
}

// DemoRecords is the sample data a fresh dashboard starts with.
func DemoRecords() []core.ExpenseRecord {
	return []core.ExpenseRecord{
		{ID: "1", Title: "Lunch", Amount: decimal.NewFromInt(15), Category: core.Food, Date: core.NewDate(2025, 8, 14)},
		{ID: "2", Title: "Bus Ticket", Amount: decimal.NewFromInt(5), Category: core.Transport, Date: core.NewDate(2025, 8, 15)},
		{ID: "3", Title: "T-shirt", Amount: decimal.NewFromInt(25), Category: core.Shopping, Date: core.NewDate(2025, 8, 15)},
	}
}

func (s *Store) List(_ context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

func (s *Store) Get(_ context.Context, id string) (core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	return s.items[i], nil
}

// Create stores the draft under a fresh uuid. Validation is the caller's job.
func (s *Store) Create(_ context.Context, d core.Draft) (core.ExpenseRecord, error) {
	r := d.WithID(uuid.NewString())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return r, nil
}

func (s *Store) Update(_ context.Context, id string, d core.Draft) (core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	s.items[i] = d.WithID(id)
	return s.items[i], nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return core.ErrNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.items, func(r core.ExpenseRecord) bool { return r.ID == id })
}
