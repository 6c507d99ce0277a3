package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by an aggregate and delivered through the outbox
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	// ActorID is the caller whose operation raised the event, uuid.Nil for the system
	ActorID() uuid.UUID
}

// BaseDomainEvent carries the envelope fields. Concrete events embed it and
// add their payload; the JSON tags are the outbox payload format.
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
	Actor     uuid.UUID `json:"actor_id"`
}

func NewBaseDomainEvent(eventType, aggType string, aggID, actorID uuid.UUID, at time.Time) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: at,
		AggID:     aggID,
		AggType:   aggType,
		Actor:     actorID,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string  { return e.AggType }
func (e *BaseDomainEvent) ActorID() uuid.UUID     { return e.Actor }

// EventHandler reacts to dispatched events. An empty EventTypes subscribes
// to everything. Handlers must tolerate redelivery.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher hands events to their handlers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus routes published events to subscribed handlers
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}
