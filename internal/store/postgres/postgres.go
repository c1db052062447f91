// Package postgres stores ledger records in PostgreSQL and reports changes
// made by other processes through LISTEN/NOTIFY.
package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const notifyChannel = "ledger_changes"

// DBTX is the part of a pool or transaction the record queries need
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// notificationSource yields NOTIFY payloads of a listening connection
type notificationSource interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
}

// Backend implements store.Backend and store.Watcher using PostgreSQL
type Backend struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New connects to databaseURL, verifies the connection and migrates the schema
func New(ctx context.Context, databaseURL string) (*Backend, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info().Msg("Connected to database")

	return NewWithPool(pool), nil
}

// NewWithPool wraps an existing pool; the schema must already be migrated
func NewWithPool(pool *pgxpool.Pool) *Backend {
	return &Backend{db: pool, pool: pool}
}

// Insert stores rec under rec.Key
func (b *Backend) Insert(ctx context.Context, scope domain.Scope, rec domain.Record) error {
	_, err := b.db.Exec(ctx, `
		INSERT INTO ledger_records (year, month, collection, record_key, label, amount, category_key)
		VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7)`,
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
	tag, err := b.db.Exec(ctx, `
		UPDATE ledger_records
		SET label = $5, amount = $6::text::numeric, category_key = $7, updated_at = NOW()
		WHERE year = $1 AND month = $2 AND collection = $3 AND record_key = $4`,
		scope.Period.Year, scope.Period.Month, string(scope.Collection),
		rec.Key, rec.Label, rec.Amount.String(), rec.CategoryKey,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return replaceResult(tag)
}

// replaceResult maps an UPDATE that matched nothing to domain.ErrRecordNotFound
func replaceResult(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// Delete removes key from scope if present
func (b *Backend) Delete(ctx context.Context, scope domain.Scope, key string) error {
	_, err := b.db.Exec(ctx, `
		DELETE FROM ledger_records
		WHERE year = $1 AND month = $2 AND collection = $3 AND record_key = $4`,
		scope.Period.Year, scope.Period.Month, string(scope.Collection), key,
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// DeleteAll drops every record of scope
func (b *Backend) DeleteAll(ctx context.Context, scope domain.Scope) error {
	_, err := b.db.Exec(ctx, `
		DELETE FROM ledger_records
		WHERE year = $1 AND month = $2 AND collection = $3`,
		scope.Period.Year, scope.Period.Month, string(scope.Collection),
	)
	if err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

// List returns the records of scope ordered by key
func (b *Backend) List(ctx context.Context, scope domain.Scope) ([]domain.Record, error) {
	rows, err := b.db.Query(ctx, `
		SELECT record_key, label, amount::text, category_key
		FROM ledger_records
		WHERE year = $1 AND month = $2 AND collection = $3
		ORDER BY record_key`,
		scope.Period.Year, scope.Period.Month, string(scope.Collection),
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return records, nil
}

// Watch listens for change notifications until ctx is done
func (b *Backend) Watch(ctx context.Context, fn func(domain.Scope)) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("listen on %s: %w", notifyChannel, err)
	}

	return dispatchNotifications(ctx, conn.Conn(), fn)
}

// dispatchNotifications calls fn with the scope of every well-formed payload
// until ctx is done or the connection fails
func dispatchNotifications(ctx context.Context, src notificationSource, fn func(domain.Scope)) error {
	for {
		notification, err := src.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		scope, err := domain.ParseScopePath(notification.Payload)
		if err != nil {
			log.Warn().Err(err).Str("payload", notification.Payload).Msg("Ignoring malformed change notification")
			continue
		}
		fn(scope)
	}
}

// Close closes the pool
func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}

func scanRecord(row pgx.CollectableRow) (domain.Record, error) {
	var rec domain.Record
	var amount string
	if err := row.Scan(&rec.Key, &rec.Label, &amount, &rec.CategoryKey); err != nil {
		return domain.Record{}, err
	}

	parsed, err := parseAmount(rec.Key, amount)
	if err != nil {
		return domain.Record{}, err
	}
	rec.Amount = parsed
	return rec, nil
}

// parseAmount reads the amount::text column
func parseAmount(key, text string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount of %s: %w", key, err)
	}
	return amount, nil
}
