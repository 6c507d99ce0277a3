package event

import (
	"context"
	"errors"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/dbtx"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const outboxTable = "outbox_events"

// claimOutboxSQL moves the still-claimable rows among ids to PROCESSING in one
// statement. Rows another relay holds are skipped, not waited on.
const claimOutboxSQL = "UPDATE " + outboxTable + " SET status = ?, updated_at = ? " +
	"WHERE id IN (SELECT id FROM " + outboxTable + " WHERE id IN ? AND status IN ? FOR UPDATE SKIP LOCKED) " +
	"RETURNING *"

var claimable = []shared.OutboxStatus{shared.OutboxStatusPending, shared.OutboxStatusFailed}

// GormOutboxRepository stores outbox entries in Postgres. Calls made with a
// dbtx context join that transaction.
type GormOutboxRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *GormOutboxRepository) table(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db).Table(outboxTable)
}

func (r *GormOutboxRepository) list(q *gorm.DB, limit int) ([]*shared.OutboxEntry, error) {
	var entries []*shared.OutboxEntry
	err := q.Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *GormOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.table(ctx).Create(entries).Error
}

// FindPending returns new entries in the order they were written
func (r *GormOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	return r.list(r.table(ctx).
		Where("status = ?", shared.OutboxStatusPending).
		Order("created_at ASC"), limit)
}

func (r *GormOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	return r.list(r.table(ctx).
		Where("status = ? AND next_retry_at <= ?", shared.OutboxStatusFailed, before).
		Order("next_retry_at ASC"), limit)
}

func (r *GormOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var won []*shared.OutboxEntry
	err := dbtx.Conn(ctx, r.db).
		Raw(claimOutboxSQL, shared.OutboxStatusProcessing, r.now(), ids, claimable).
		Scan(&won).Error
	if err != nil {
		return nil, err
	}
	return won, nil
}

// Update persists the delivery state the entry's transitions produced
func (r *GormOutboxRepository) Update(ctx context.Context, e *shared.OutboxEntry) error {
	return r.table(ctx).
		Where("id = ?", e.ID).
		Updates(map[string]any{
			"status":        e.Status,
			"retry_count":   e.RetryCount,
			"max_retries":   e.MaxRetries,
			"last_error":    e.LastError,
			"next_retry_at": e.NextRetryAt,
			"processed_at":  e.ProcessedAt,
			"updated_at":    e.UpdatedAt,
		}).Error
}

func (r *GormOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res := r.table(ctx).
		Where("status = ? AND processed_at < ?", shared.OutboxStatusSent, before).
		Delete(&shared.OutboxEntry{})
	return res.RowsAffected, res.Error
}

// FindDead pages through dead entries, latest failure first
func (r *GormOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	dead := r.table(ctx).Where("status = ?", shared.OutboxStatusDead).Session(&gorm.Session{})

	var total int64
	if err := dead.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	entries, err := r.list(dead.Order("updated_at DESC").Offset((max(page, 1)-1)*pageSize), pageSize)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *GormOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	var e shared.OutboxEntry
	err := r.table(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	var rows []struct {
		Status shared.OutboxStatus
		N      int64
	}
	if err := r.table(ctx).Select("status, count(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[shared.OutboxStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}

var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)
