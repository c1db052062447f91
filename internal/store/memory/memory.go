// Package memory provides a process-local store backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dafibh/ledger/internal/domain"
)

// Backend keeps records in maps keyed by scope path
type Backend struct {
	scopes map[string]map[string]domain.Record
	mu     sync.RWMutex
}

// New creates an empty Backend
func New() *Backend {
	return &Backend{
		scopes: make(map[string]map[string]domain.Record),
	}
}

// Insert stores rec under rec.Key
func (b *Backend) Insert(ctx context.Context, scope domain.Scope, rec domain.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := scope.Path()
	if b.scopes[path] == nil {
		b.scopes[path] = make(map[string]domain.Record)
	}
	b.scopes[path][rec.Key] = rec
	return nil
}

// Replace overwrites an existing record
func (b *Backend) Replace(ctx context.Context, scope domain.Scope, rec domain.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	records, ok := b.scopes[scope.Path()]
	if !ok {
		return domain.ErrRecordNotFound
	}
	if _, exists := records[rec.Key]; !exists {
		return domain.ErrRecordNotFound
	}
	records[rec.Key] = rec
	return nil
}

// Delete removes key from scope if present
func (b *Backend) Delete(ctx context.Context, scope domain.Scope, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := scope.Path()
	if records, ok := b.scopes[path]; ok {
		delete(records, key)
		if len(records) == 0 {
			delete(b.scopes, path)
		}
	}
	return nil
}

// DeleteAll drops every record of scope
func (b *Backend) DeleteAll(ctx context.Context, scope domain.Scope) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.scopes, scope.Path())
	return nil
}

// List returns the records of scope ordered by key
func (b *Backend) List(ctx context.Context, scope domain.Scope) ([]domain.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	records := b.scopes[scope.Path()]
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Close is a no-op
func (b *Backend) Close() error {
	return nil
}
