package event

import (
	"context"
	"fmt"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher is the shared.OutboxEventSaver the repositories use. It
// serializes each event and inserts the rows through the caller's transaction.
type OutboxPublisher struct {
	serializer  *EventSerializer
	maxAttempts int
	now         func() time.Time
}

func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{
		serializer:  serializer,
		maxAttempts: shared.DefaultDeliveryPolicy().MaxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetMaxRetries sets how many failed deliveries dead-letter a new entry
func (p *OutboxPublisher) SetMaxRetries(n int) {
	if n > 0 {
		p.maxAttempts = n
	}
}

func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("outbox: expected *gorm.DB transaction, got %T", txProvider)
	}

	now := p.now()
	entries := make([]*shared.OutboxEntry, len(events))
	for i, ev := range events {
		payload, err := p.serializer.Serialize(ev)
		if err != nil {
			return fmt.Errorf("serialize %s: %w", ev.EventType(), err)
		}
		entries[i] = shared.NewOutboxEntry(ev, payload, p.maxAttempts, now)
	}
	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
