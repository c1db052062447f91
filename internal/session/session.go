package session

import (
	"context"
	"sync"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// Session tracks the period the user is working on and keeps its cache
// subscribed to the store
type Session struct {
	store domain.RecordStore
	cache *Cache

	mu           sync.Mutex
	period       domain.Period
	open         bool
	unsubscribes []func()
}

// New creates a session over store. Call Open before reading snapshots.
func New(store domain.RecordStore) *Session {
	return &Session{
		store: store,
		cache: NewCache(domain.Period{}),
	}
}

// Open switches the session to period: the old subscriptions are cancelled and
// every collection of period is subscribed. The cache is filled when Open returns.
func (s *Session) Open(ctx context.Context, period domain.Period) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unsubscribeLocked()
	s.cache.Reset(period)

	for _, collection := range domain.Collections {
		scope := domain.NewScope(period, collection)
		unsubscribe, err := s.store.Subscribe(ctx, scope, func(records []domain.Record) {
			s.cache.Apply(scope, records)
		})
		if err != nil {
			s.unsubscribeLocked()
			s.open = false
			return err
		}
		s.unsubscribes = append(s.unsubscribes, unsubscribe)
	}

	s.period = period
	s.open = true
	log.Debug().Str("period", period.String()).Msg("Session opened")
	return nil
}

// Period returns the active period
func (s *Session) Period() domain.Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

// IsOpen reports whether a period is subscribed
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Snapshot returns a copy of the cached records of the active period
func (s *Session) Snapshot() Snapshot {
	return s.cache.Snapshot()
}

// Close cancels every subscription
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribeLocked()
	s.open = false
}

func (s *Session) unsubscribeLocked() {
	for _, unsubscribe := range s.unsubscribes {
		unsubscribe()
	}
	s.unsubscribes = nil
}
