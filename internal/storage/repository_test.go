package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"expensetracker/internal/collection/memory"
	"expensetracker/internal/core"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "expenses.db"), nil)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}

	created, err := repo.Create(ctx, core.Draft{
		Title:    "Groceries",
		Amount:   decimal.RequireFromString("42.10"),
		Category: core.Food,
		Date:     core.NewDate(2025, 8, 20),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Groceries" || got.Amount.String() != "42.1" || got.Date.String() != "2025-08-20" {
		t.Fatalf("unexpected round trip: %+v", got)
	}

	_, err = repo.Update(ctx, created.ID, core.Draft{
		Title:    "Groceries and wine",
		Amount:   decimal.RequireFromString("55"),
		Category: core.Food,
		Date:     core.NewDate(2025, 8, 21),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.Get(ctx, created.ID)
	if got.Title != "Groceries and wine" || !got.Amount.Equal(decimal.NewFromInt(55)) {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteRepository_MissingIDs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.Delete(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete missing: expected ErrNotFound, got %v", err)
	}
	_, err := repo.Update(ctx, "nope", core.Draft{Title: "x"})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update missing: expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRepository_SeedKeepsOrderAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for i := 0; i < 2; i++ {
		if err := repo.Seed(ctx, memory.DemoRecords()); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	for i, id := range []string{"1", "2", "3"} {
		if list[i].ID != id {
			t.Errorf("position %d: id %q, want %q", i, list[i].ID, id)
		}
	}
	if !core.Total(list).Equal(decimal.NewFromInt(45)) {
		t.Errorf("total = %s, want 45", core.Total(list))
	}
}

func TestSQLiteRepository_ReopenRunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.db")
	first, err := NewSQLiteRepository(path, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := first.Create(context.Background(), core.Draft{
		Title: "Coffee", Amount: decimal.NewFromInt(3), Category: core.Food, Date: core.NewDate(2025, 1, 2),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	first.Close()

	second, err := NewSQLiteRepository(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	list, _ := second.List(context.Background())
	if len(list) != 1 {
		t.Fatalf("expected persisted record, got %d", len(list))
	}
}
