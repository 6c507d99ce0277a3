package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox row
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

// DeliveryPolicy bounds redelivery of a failed outbox entry
type DeliveryPolicy struct {
	// MaxAttempts failed deliveries move an entry to DEAD
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultDeliveryPolicy allows five attempts, waiting 1s, 2s, 4s, 8s between them
func DefaultDeliveryPolicy() DeliveryPolicy {
	return DeliveryPolicy{MaxAttempts: 5, BaseBackoff: time.Second, MaxBackoff: 5 * time.Minute}
}

// Backoff is the wait after the given failed attempt (1-based), doubling from
// BaseBackoff and never exceeding MaxBackoff
func (p DeliveryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// OutboxEntry is a serialized domain event waiting to be dispatched. It is
// written in the same transaction as the aggregate that raised the event.
type OutboxEntry struct {
	ID            uuid.UUID
	ActorID       uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOutboxEntry wraps event for delivery with at most maxAttempts tries
func NewOutboxEntry(event DomainEvent, payload []byte, maxAttempts int, now time.Time) *OutboxEntry {
	if maxAttempts < 1 {
		maxAttempts = DefaultDeliveryPolicy().MaxAttempts
	}
	return &OutboxEntry{
		ID:            uuid.New(),
		ActorID:       event.ActorID(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    maxAttempts,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Delivered records that every handler accepted the event
func (e *OutboxEntry) Delivered(now time.Time) {
	e.Status = OutboxStatusSent
	e.ProcessedAt = &now
	e.NextRetryAt = nil
	e.UpdatedAt = now
}

// Failed records a failed attempt. The entry is scheduled again after the
// policy's backoff, or dead-lettered once MaxRetries attempts have failed.
func (e *OutboxEntry) Failed(reason string, p DeliveryPolicy, now time.Time) {
	e.RetryCount++
	e.LastError = reason
	e.UpdatedAt = now
	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxStatusDead
		e.NextRetryAt = nil
		return
	}
	e.Status = OutboxStatusFailed
	next := now.Add(p.Backoff(e.RetryCount))
	e.NextRetryAt = &next
}

// Requeue gives a dead entry a fresh set of attempts
func (e *OutboxEntry) Requeue(now time.Time) error {
	if e.Status != OutboxStatusDead {
		return NewDomainError(CodeInvalidState, "only dead entries can be requeued").
			WithDetail("currentStatus", string(e.Status))
	}
	e.Status = OutboxStatusPending
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	e.UpdatedAt = now
	return nil
}

func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

// OutboxRepository stores outbox entries
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	// FindRetryable returns FAILED entries whose next attempt is due at before
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	FindDead(ctx context.Context, page, pageSize int) ([]*OutboxEntry, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	// MarkProcessing claims the given entries for this worker and returns the
	// ones it won; rows locked or already claimed elsewhere are left out
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	// DeleteOlderThan purges SENT entries processed before the cutoff
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}

// OutboxEventSaver writes events to the outbox inside the caller's
// transaction so an aggregate row and its events commit together.
// txProvider is the active *gorm.DB.
type OutboxEventSaver interface {
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}
