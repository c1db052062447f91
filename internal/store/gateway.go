package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Ensure Gateway implements domain.RecordStore
var _ domain.RecordStore = (*Gateway)(nil)

// Gateway implements domain.RecordStore on top of a Backend and pushes the full
// record list of a scope to its subscribers after every mutation
type Gateway struct {
	backend Backend
	hub     *hub
	// refreshMu orders list+publish so subscribers never receive an older list last
	refreshMu sync.Mutex
	newKey    func() (string, error)
}

// NewGateway creates a Gateway over backend
func NewGateway(backend Backend) *Gateway {
	return &Gateway{
		backend: backend,
		hub:     newHub(),
		newKey:  newRecordKey,
	}
}

// newRecordKey returns a time-ordered key so key order matches insertion order
func newRecordKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Add stores rec under a freshly assigned key and returns the key
func (g *Gateway) Add(ctx context.Context, scope domain.Scope, rec domain.Record) (string, error) {
	if err := validateScope(scope); err != nil {
		return "", err
	}

	key, err := g.newKey()
	if err != nil {
		return "", fmt.Errorf("generate record key: %w", err)
	}
	rec.Key = key

	if err := g.backend.Insert(ctx, scope, rec); err != nil {
		return "", fmt.Errorf("add record to %s: %w", scope.Path(), err)
	}

	g.refresh(ctx, scope)
	return key, nil
}

// Update replaces the record stored under key
func (g *Gateway) Update(ctx context.Context, scope domain.Scope, key string, rec domain.Record) error {
	if err := validateScope(scope); err != nil {
		return err
	}
	if key == "" {
		return domain.ErrRecordNotFound
	}
	rec.Key = key

	if err := g.backend.Replace(ctx, scope, rec); err != nil {
		return fmt.Errorf("update record %s in %s: %w", key, scope.Path(), err)
	}

	g.refresh(ctx, scope)
	return nil
}

// Delete removes the record stored under key. Deleting a missing key is a no-op.
func (g *Gateway) Delete(ctx context.Context, scope domain.Scope, key string) error {
	if err := validateScope(scope); err != nil {
		return err
	}

	if err := g.backend.Delete(ctx, scope, key); err != nil {
		return fmt.Errorf("delete record %s from %s: %w", key, scope.Path(), err)
	}

	g.refresh(ctx, scope)
	return nil
}

// DeleteAll removes every record in scope
func (g *Gateway) DeleteAll(ctx context.Context, scope domain.Scope) error {
	if err := validateScope(scope); err != nil {
		return err
	}

	if err := g.backend.DeleteAll(ctx, scope); err != nil {
		// Partial deletes are possible, so subscribers still get the current state
		g.refresh(ctx, scope)
		return fmt.Errorf("delete all records from %s: %w", scope.Path(), err)
	}

	g.refresh(ctx, scope)
	return nil
}

// List returns the records in scope ordered by key
func (g *Gateway) List(ctx context.Context, scope domain.Scope) ([]domain.Record, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}

	records, err := g.backend.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list records in %s: %w", scope.Path(), err)
	}
	return records, nil
}

// Subscribe registers fn for scope and delivers the current list before returning.
// fn runs while the gateway publishes, so it must not write to the store.
func (g *Gateway) Subscribe(ctx context.Context, scope domain.Scope, fn func([]domain.Record)) (func(), error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}

	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	records, err := g.backend.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", scope.Path(), err)
	}

	sub := g.hub.register(scope, fn)
	sub.deliver(cloneRecords(records))

	var once sync.Once
	return func() {
		once.Do(func() { g.hub.unregister(scope, sub) })
	}, nil
}

// LoadPeriod lists all three collections of period concurrently
func (g *Gateway) LoadPeriod(ctx context.Context, period domain.Period) (*domain.PeriodRecords, error) {
	result := &domain.PeriodRecords{}
	eg, egCtx := errgroup.WithContext(ctx)

	targets := map[domain.Collection]*[]domain.Record{
		domain.CollectionIncome:     &result.Incomes,
		domain.CollectionExpense:    &result.Expenses,
		domain.CollectionCategories: &result.Categories,
	}
	for collection, dst := range targets {
		eg.Go(func() error {
			records, err := g.List(egCtx, domain.NewScope(period, collection))
			if err != nil {
				return err
			}
			*dst = records
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Watch forwards external changes reported by the backend to subscribers.
// It returns immediately with nil when the backend cannot watch.
func (g *Gateway) Watch(ctx context.Context) error {
	watcher, ok := g.backend.(Watcher)
	if !ok {
		return nil
	}
	log.Info().Msg("Watching store for external changes")
	return watcher.Watch(ctx, func(scope domain.Scope) {
		g.refresh(ctx, scope)
	})
}

// SubscriberCount returns the number of subscribers of scope
func (g *Gateway) SubscriberCount(scope domain.Scope) int {
	return g.hub.subscriberCount(scope)
}

// Close releases the backend
func (g *Gateway) Close() error {
	return g.backend.Close()
}

// refresh re-reads scope and publishes it. Failures are logged, the mutation
// that triggered the refresh already succeeded.
// The subscriber check runs under refreshMu so a concurrent Subscribe is either
// fully registered or has not listed yet.
func (g *Gateway) refresh(ctx context.Context, scope domain.Scope) {
	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	if !g.hub.hasSubscribers(scope) {
		return
	}

	records, err := g.backend.List(ctx, scope)
	if err != nil {
		log.Error().Err(err).Str("scope", scope.Path()).Msg("Failed to refresh subscribers")
		return
	}
	g.hub.publish(scope, records)
}

func validateScope(scope domain.Scope) error {
	if !scope.Collection.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCollection, scope.Collection)
	}
	if scope.Period.Month < 1 || scope.Period.Month > 12 {
		return fmt.Errorf("%w: month %d", domain.ErrInvalidPeriod, scope.Period.Month)
	}
	return nil
}
