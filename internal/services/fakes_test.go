package services

import (
	"context"
	"sync"

	"expensetracker/internal/amqp"
	"expensetracker/internal/collection/memory"
	"expensetracker/internal/core"
)

// fakeCollection wraps the memory store and lets tests inject failures and
// count round trips.
type fakeCollection struct {
	*memory.Store

	mu        sync.Mutex
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	listFn    func(ctx context.Context) ([]core.ExpenseRecord, error)
	calls     map[string]int
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{Store: memory.NewSeeded(), calls: map[string]int{}}
}

func (f *fakeCollection) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeCollection) hit(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeCollection) List(ctx context.Context) ([]core.ExpenseRecord, error) {
	f.hit("list")
	f.mu.Lock()
	fn, err := f.listFn, f.listErr
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	if err != nil {
		return nil, err
	}
	return f.Store.List(ctx)
}

func (f *fakeCollection) Create(ctx context.Context, d core.Draft) (core.ExpenseRecord, error) {
	f.hit("create")
	if f.createErr != nil {
		return core.ExpenseRecord{}, f.createErr
	}
	return f.Store.Create(ctx, d)
}

func (f *fakeCollection) Update(ctx context.Context, id string, d core.Draft) (core.ExpenseRecord, error) {
	f.hit("update")
	if f.updateErr != nil {
		return core.ExpenseRecord{}, f.updateErr
	}
	return f.Store.Update(ctx, id, d)
}

func (f *fakeCollection) Delete(ctx context.Context, id string) error {
	f.hit("delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Store.Delete(ctx, id)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.RecordEvent
	err    error
}

func (p *fakePublisher) PublishRecordEvent(_ context.Context, ev *amqp.RecordEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) ops() []amqp.EventOp {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventOp, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Op
	}
	return out
}
