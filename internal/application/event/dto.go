package event

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OutboxEntryDTO is what operators see of a stored event
type OutboxEntryDTO struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	ActorID       uuid.UUID  `json:"actor_id"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func newOutboxEntryDTO(e *shared.OutboxEntry) *OutboxEntryDTO {
	return &OutboxEntryDTO{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		ActorID:       e.ActorID,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

type OutboxFilter struct {
	Page     int `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

// window clamps the filter to a valid page
func (f OutboxFilter) window() (page, size int) {
	size = f.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	return max(f.Page, 1), min(size, maxPageSize)
}

type OutboxListResult struct {
	Entries    []OutboxEntryDTO `json:"entries"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// OutboxStatsDTO counts entries per delivery status
type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

func newOutboxStatsDTO(counts map[shared.OutboxStatus]int64) *OutboxStatsDTO {
	stats := &OutboxStatsDTO{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats
}
