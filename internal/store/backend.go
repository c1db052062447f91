package store

import (
	"context"

	"github.com/dafibh/ledger/internal/domain"
)

// Backend is the storage engine behind a Gateway.
// Keys are assigned by the Gateway before Insert is called.
type Backend interface {
	Insert(ctx context.Context, scope domain.Scope, rec domain.Record) error
	// Replace returns domain.ErrRecordNotFound when rec.Key does not exist
	Replace(ctx context.Context, scope domain.Scope, rec domain.Record) error
	// Delete must succeed when key does not exist
	Delete(ctx context.Context, scope domain.Scope, key string) error
	DeleteAll(ctx context.Context, scope domain.Scope) error
	// List returns records ordered by key
	List(ctx context.Context, scope domain.Scope) ([]domain.Record, error)
	Close() error
}

// Watcher is implemented by backends that can report changes made by other processes
type Watcher interface {
	// Watch blocks until ctx is done, calling fn with each changed scope
	Watch(ctx context.Context, fn func(domain.Scope)) error
}
