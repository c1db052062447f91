// Package sqlite stores ledger records in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

// Backend implements store.Backend on SQLite
type Backend struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and migrates it
func New(dbPath string) (*Backend, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	return &Backend{db: db}, nil
}

// Insert stores rec under rec.Key
func (b *Backend) Insert(ctx context.Context, scope domain.Scope, rec domain.Record) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO ledger_records (year, month, collection, record_key, label, amount, category_key)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		scope.Period.Year, scope.Period.Month, string(scope.Collection),
		rec.Key, rec.Label, rec.Amount.String(), rec.CategoryKey,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Replace overwrites an existing record
func (b *Backend) Replace(ctx context.Context, scope domain.Scope, rec domain.Record) error {
	res, err := b.db.ExecContext(ctx, `
		UPDATE ledger_records
		SET label = ?, amount = ?, category_key = ?, updated_at = CURRENT_TIMESTAMP
		WHERE year = ? AND month = ? AND collection = ? AND record_key = ?`,
		rec.Label, rec.Amount.String(), rec.CategoryKey,
		scope.Period.Year, scope.Period.Month, string(scope.Collection), rec.Key,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// Delete removes key from scope if present
func (b *Backend) Delete(ctx context.Context, scope domain.Scope, key string) error {
	_, err := b.db.ExecContext(ctx, `
		DELETE FROM ledger_records
		WHERE year = ? AND month = ? AND collection = ? AND record_key = ?`,
		scope.Period.Year, scope.Period.Month, string(scope.Collection), key,
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// DeleteAll drops every record of scope
func (b *Backend) DeleteAll(ctx context.Context, scope domain.Scope) error {
	_, err := b.db.ExecContext(ctx, `
		DELETE FROM ledger_records
		WHERE year = ? AND month = ? AND collection = ?`,
		scope.Period.Year, scope.Period.Month, string(scope.Collection),
	)
	if err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

// List returns the records of scope ordered by key
func (b *Backend) List(ctx context.Context, scope domain.Scope) ([]domain.Record, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT record_key, label, amount, category_key
		FROM ledger_records
		WHERE year = ? AND month = ? AND collection = ?
		ORDER BY record_key`,
		scope.Period.Year, scope.Period.Month, string(scope.Collection),
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var rec domain.Record
		var amount string
		if err := rows.Scan(&rec.Key, &rec.Label, &amount, &rec.CategoryKey); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount of %s: %w", rec.Key, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Close closes the database
func (b *Backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
