package persistence

import (
	"context"
	"fmt"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/dbtx"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// aggregateStore holds what every aggregate repository shares: the connection
// and the optional outbox writer used to persist events in the same commit.
type aggregateStore struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (s *aggregateStore) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	s.outboxSaver = saver
}

func (s *aggregateStore) saveEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if s.outboxSaver == nil || len(events) == 0 {
		return nil
	}
	if err := s.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
		return fmt.Errorf("failed to save events to outbox: %w", err)
	}
	return nil
}

// create inserts model and writes events in one transaction.
// A unique violation is reported as CONFLICT with conflictMsg.
func (s *aggregateStore) create(ctx context.Context, model any, events []shared.DomainEvent, conflictMsg string) error {
	return dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return conflictOr(err, conflictMsg)
		}
		return s.saveEvents(ctx, tx, events)
	})
}

// updateVersioned writes every column of model where the row still has
// expectedVersion. model must already carry expectedVersion+1.
func (s *aggregateStore) updateVersioned(ctx context.Context, empty, model any, id uuid.UUID, expectedVersion int, events []shared.DomainEvent, resource string) error {
	return dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		result := tx.Model(empty).
			Where("id = ? AND version = ?", id, expectedVersion).
			Select("*").
			Omit("id", "created_at").
			Updates(model)
		if result.Error != nil {
			return conflictOr(result.Error, resource+" conflicts with an existing record")
		}
		if result.RowsAffected == 0 {
			return concurrentModification(resource)
		}
		return s.saveEvents(ctx, tx, events)
	})
}
