package websocket

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/dafibh/ledger/internal/session"
	"github.com/rs/zerolog/log"
)

// Feed subscribes to the store for every period that has connected clients and
// broadcasts a fresh summary whenever one of its collections changes
type Feed struct {
	store domain.RecordStore
	hub   *Hub

	mu      sync.Mutex
	periods map[domain.Period]*periodFeed
}

type periodFeed struct {
	cache        *session.Cache
	unsubscribes []func()
	// ready stays false while the initial lists arrive so joins do not broadcast
	// half-loaded summaries
	ready atomic.Bool
}

// NewFeed creates a Feed publishing through hub
func NewFeed(store domain.RecordStore, hub *Hub) *Feed {
	return &Feed{
		store:   store,
		hub:     hub,
		periods: make(map[domain.Period]*periodFeed),
	}
}

// Join registers client and sends it the current summary of its period.
// The first client of a period starts the store subscriptions.
func (f *Feed) Join(ctx context.Context, client ClientInterface) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	period := client.Period()
	pf, ok := f.periods[period]
	if !ok {
		var err error
		pf, err = f.subscribe(ctx, period)
		if err != nil {
			return err
		}
		f.periods[period] = pf
	}

	f.hub.Register(client)
	f.hub.SendTo(client, LedgerSnapshot(pf.cache.Snapshot().Summary()))
	return nil
}

// Leave unregisters client. The last client of a period stops its subscriptions.
func (f *Feed) Leave(client ClientInterface) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.hub.Unregister(client) {
		return
	}

	period := client.Period()
	if pf, ok := f.periods[period]; ok {
		for _, unsubscribe := range pf.unsubscribes {
			unsubscribe()
		}
		delete(f.periods, period)
		log.Debug().Str("period", period.String()).Msg("Stopped watching period")
	}
}

// WatchedPeriods returns how many periods have subscriptions
func (f *Feed) WatchedPeriods() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.periods)
}

// subscribe runs with f.mu held. Store callbacks must not take f.mu: they run
// while the store holds its own publish lock.
func (f *Feed) subscribe(ctx context.Context, period domain.Period) (*periodFeed, error) {
	pf := &periodFeed{cache: session.NewCache(period)}

	for _, collection := range domain.Collections {
		scope := domain.NewScope(period, collection)
		unsubscribe, err := f.store.Subscribe(ctx, scope, func(records []domain.Record) {
			pf.cache.Apply(scope, records)
			if pf.ready.Load() {
				f.hub.Broadcast(period, LedgerChanged(pf.cache.Snapshot().Summary()))
			}
		})
		if err != nil {
			for _, u := range pf.unsubscribes {
				u()
			}
			return nil, err
		}
		pf.unsubscribes = append(pf.unsubscribes, unsubscribe)
	}

	pf.ready.Store(true)
	log.Debug().Str("period", period.String()).Msg("Started watching period")
	return pf, nil
}
