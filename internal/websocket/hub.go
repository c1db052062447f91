package websocket

import (
	"errors"
	"sync"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	Period() domain.Period
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by period
// It is safe for concurrent use
type Hub struct {
	// periods maps a period to a map of client ID to client
	periods map[domain.Period]map[string]ClientInterface
	mu      sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		periods: make(map[domain.Period]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its period
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	period := client.Period()
	if h.periods[period] == nil {
		h.periods[period] = make(map[string]ClientInterface)
	}
	h.periods[period][client.ID()] = client

	log.Debug().
		Str("period", period.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub. It reports whether the client was
// the last one of its period.
func (h *Hub) Unregister(client ClientInterface) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	period := client.Period()
	clients, ok := h.periods[period]
	if !ok {
		return false
	}
	if _, exists := clients[client.ID()]; !exists {
		return false
	}

	delete(clients, client.ID())
	log.Debug().
		Str("period", period.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client unregistered")

	if len(clients) == 0 {
		delete(h.periods, period)
		return true
	}
	return false
}

// Broadcast sends an event to all clients watching period
func (h *Hub) Broadcast(period domain.Period, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("period", period.String()).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.periods[period]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	for _, client := range clientsCopy {
		send(client, data)
	}

	log.Debug().
		Str("period", period.String()).
		Str("event_type", event.Type).
		Int("client_count", len(clientsCopy)).
		Msg("Broadcast event")
}

// SendTo delivers an event to a single client
func (h *Hub) SendTo(client ClientInterface, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}
	send(client, data)
}

// send never blocks: Client.Send only queues
func send(client ClientInterface, data []byte) {
	if err := client.Send(data); err != nil {
		log.Warn().
			Err(err).
			Str("period", client.Period().String()).
			Str("client_id", client.ID()).
			Msg("Failed to send to client")
	}
}

// ClientCount returns the number of clients watching period
func (h *Hub) ClientCount(period domain.Period) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.periods[period]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all periods
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.periods {
		total += len(clients)
	}
	return total
}
