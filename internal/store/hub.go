package store

import (
	"sync"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/rs/zerolog/log"
)

type subscriber struct {
	id int64
	fn func([]domain.Record)
	mu sync.Mutex
}

// deliver serializes calls so a subscriber never sees two lists at once
func (s *subscriber) deliver(records []domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn(records)
}

// hub fans record lists out to subscribers organized by scope path.
// It is safe for concurrent use
type hub struct {
	scopes map[string]map[int64]*subscriber
	nextID int64
	mu     sync.RWMutex
}

func newHub() *hub {
	return &hub{
		scopes: make(map[string]map[int64]*subscriber),
	}
}

func (h *hub) register(scope domain.Scope, fn func([]domain.Record)) *subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	path := scope.Path()
	if h.scopes[path] == nil {
		h.scopes[path] = make(map[int64]*subscriber)
	}

	h.nextID++
	sub := &subscriber{id: h.nextID, fn: fn}
	h.scopes[path][sub.id] = sub

	log.Debug().Str("scope", path).Int64("subscriber_id", sub.id).Msg("Subscriber registered")
	return sub
}

func (h *hub) unregister(scope domain.Scope, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	path := scope.Path()
	if subs, ok := h.scopes[path]; ok {
		if _, exists := subs[sub.id]; exists {
			delete(subs, sub.id)

			// Clean up empty scope maps
			if len(subs) == 0 {
				delete(h.scopes, path)
			}

			log.Debug().Str("scope", path).Int64("subscriber_id", sub.id).Msg("Subscriber unregistered")
		}
	}
}

// publish hands every subscriber of scope its own copy of records
func (h *hub) publish(scope domain.Scope, records []domain.Record) {
	h.mu.RLock()
	subs, ok := h.scopes[scope.Path()]
	if !ok || len(subs) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy subscribers to avoid holding lock during delivery
	subsCopy := make([]*subscriber, 0, len(subs))
	for _, sub := range subs {
		subsCopy = append(subsCopy, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subsCopy {
		sub.deliver(cloneRecords(records))
	}
}

func (h *hub) hasSubscribers(scope domain.Scope) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.scopes[scope.Path()]) > 0
}

func (h *hub) subscriberCount(scope domain.Scope) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.scopes[scope.Path()])
}

func cloneRecords(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	copy(out, records)
	return out
}
