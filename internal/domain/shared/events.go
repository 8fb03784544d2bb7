package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by an aggregate after a state change
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// EventHeader is embedded by concrete events to satisfy DomainEvent
type EventHeader struct {
	ID         uuid.UUID `json:"event_id"`
	Type       string    `json:"event_type"`
	At         time.Time `json:"occurred_at"`
	Source     uuid.UUID `json:"aggregate_id"`
	SourceKind string    `json:"aggregate_type"`
}

// NewEventHeader stamps a fresh event id and the current UTC time
func NewEventHeader(eventType, aggregateType string, aggregateID uuid.UUID) EventHeader {
	return EventHeader{
		ID:         uuid.New(),
		Type:       eventType,
		At:         time.Now().UTC(),
		Source:     aggregateID,
		SourceKind: aggregateType,
	}
}

func (h *EventHeader) EventID() uuid.UUID     { return h.ID }
func (h *EventHeader) EventType() string      { return h.Type }
func (h *EventHeader) OccurredAt() time.Time  { return h.At }
func (h *EventHeader) AggregateID() uuid.UUID { return h.Source }
func (h *EventHeader) AggregateType() string  { return h.SourceKind }

// EventHandler reacts to published events. An empty EventTypes subscribes
// the handler to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher hands committed events to their handlers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// AggregateRoot is an auditable entity that buffers the events raised by
// its own methods until the surrounding transaction commits.
type AggregateRoot struct {
	AuditableEntity
	pending []DomainEvent `gorm:"-"`
}

// NewAggregateRoot creates an aggregate with a fresh identity
func NewAggregateRoot() AggregateRoot {
	return AggregateRoot{AuditableEntity: NewAuditableEntity()}
}

// Raise buffers an event
func (a *AggregateRoot) Raise(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// PendingEvents returns the buffered events without clearing them
func (a *AggregateRoot) PendingEvents() []DomainEvent {
	return a.pending
}

// DrainEvents returns the buffered events and empties the buffer
func (a *AggregateRoot) DrainEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
