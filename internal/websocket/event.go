package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dafibh/ledger/internal/domain"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeSnapshot EventType = "snapshot"
	EventTypeChanged  EventType = "changed"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeLedger EntityType = "ledger"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "ledger.changed"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "ledger"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerSnapshot creates the ledger.snapshot event sent when a client connects
func LedgerSnapshot(summary *domain.PeriodSummary) Event {
	return NewEvent(EventTypeSnapshot, EntityTypeLedger, summary)
}

// LedgerChanged creates a ledger.changed event
func LedgerChanged(summary *domain.PeriodSummary) Event {
	return NewEvent(EventTypeChanged, EntityTypeLedger, summary)
}
