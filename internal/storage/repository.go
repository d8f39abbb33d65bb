package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"expensetracker/internal/core"
	"expensetracker/internal/log"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	selectColumns = `SELECT id, title, amount, category, date FROM expenses`

	insertExpense = `INSERT INTO expenses (id, title, amount, category, date) VALUES (?, ?, ?, ?, ?)`

	updateExpense = `UPDATE expenses
SET title = ?, amount = ?, category = ?, date = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

	deleteExpense = `DELETE FROM expenses WHERE id = ?`
)

// SQLiteRepository persists expense records in a single SQLite table.
// Amounts are stored as decimal text so sums stay exact.
type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Seed inserts records that are not already present, keeping their ids.
func (r *SQLiteRepository) Seed(ctx context.Context, records []core.ExpenseRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO expenses (id, title, amount, category, date) VALUES (?, ?, ?, ?, ?)`,
			rec.ID, rec.Title, rec.Amount.String(), string(rec.Category), rec.Date.String())
		if err != nil {
			return fmt.Errorf("seed expense %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) List(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := []core.ExpenseRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.ExpenseRecord, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	return rec, err
}

func (r *SQLiteRepository) Create(ctx context.Context, d core.Draft) (core.ExpenseRecord, error) {
	rec := d.WithID(uuid.NewString())
	_, err := r.db.ExecContext(ctx, insertExpense,
		rec.ID, rec.Title, rec.Amount.String(), string(rec.Category), rec.Date.String())
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("create expense: %w", err)
	}

	r.logger.DebugContext(ctx, "Expense saved to SQLite",
		log.FieldRecordID, rec.ID,
		log.FieldTitle, rec.Title,
		log.FieldAmount, rec.Amount.String())
	return rec, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, d core.Draft) (core.ExpenseRecord, error) {
	res, err := r.db.ExecContext(ctx, updateExpense,
		d.Title, d.Amount.String(), string(d.Category), d.Date.String(), id)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("update expense %s: %w", id, err)
	}
	if err := expectOneRow(res); err != nil {
		return core.ExpenseRecord{}, err
	}
	return d.WithID(id), nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	return expectOneRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (core.ExpenseRecord, error) {
	var (
		rec              core.ExpenseRecord
		amount, category string
		date             string
	)
	if err := s.Scan(&rec.ID, &rec.Title, &amount, &category, &date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan expense: %w", err)
	}
	rec.Amount = core.CoerceAmount(amount)
	rec.Category = core.Category(category)
	rec.Date = core.ParseDate(date)
	return rec, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
