package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity and timestamps every persisted record carries
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh id created at now
func NewBaseEntity(now time.Time) BaseEntity {
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch records a modification at now
func (e *BaseEntity) Touch(now time.Time) {
	e.UpdatedAt = now
}

// BaseAggregateRoot adds the optimistic-lock version and the events raised
// since the aggregate was loaded. Repositories compare Version on save and
// bump it with IncrementVersion once the write succeeds.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot starts an aggregate at version 1
func NewBaseAggregateRoot(now time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(now), Version: 1}
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent queues event for the next save
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the queued events without draining them
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

// ClearDomainEvents drops the queued events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// PullDomainEvents drains the queue. Services pull once per attempt so a
// retried save never writes the same event to the outbox twice.
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
