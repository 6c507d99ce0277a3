package event

import (
	"context"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxService is the admin surface over the outbox: dead-letter listing,
// requeueing and per-status counts. Every requeue is audited.
type OutboxService struct {
	repo   shared.OutboxRepository
	trail  audit.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewOutboxService(repo shared.OutboxRepository, trail audit.Repository, logger *zap.Logger) *OutboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxService{
		repo:   repo,
		trail:  trail,
		logger: logger.Named("outbox_admin"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *OutboxService) GetDeadLetterEntries(ctx context.Context, caller shared.Caller, filter OutboxFilter) (*OutboxListResult, error) {
	if err := caller.Require(shared.RoleAdmin); err != nil {
		return nil, err
	}
	page, size := filter.window()
	dead, total, err := s.repo.FindDead(ctx, page, size)
	if err != nil {
		return nil, shared.WrapInternal("list dead outbox entries", err)
	}

	res := &OutboxListResult{
		Entries:    make([]OutboxEntryDTO, 0, len(dead)),
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}
	for _, e := range dead {
		res.Entries = append(res.Entries, *newOutboxEntryDTO(e))
	}
	return res, nil
}

func (s *OutboxService) GetEntry(ctx context.Context, caller shared.Caller, id uuid.UUID) (*OutboxEntryDTO, error) {
	if err := caller.Require(shared.RoleAdmin); err != nil {
		return nil, err
	}
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return newOutboxEntryDTO(e), nil
}

// RetryDeadEntry gives one DEAD entry a fresh attempt budget
func (s *OutboxService) RetryDeadEntry(ctx context.Context, caller shared.Caller, id uuid.UUID) (*OutboxEntryDTO, error) {
	if err := caller.Require(shared.RoleAdmin); err != nil {
		return nil, err
	}
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requeue(ctx, caller, e); err != nil {
		return nil, err
	}
	return newOutboxEntryDTO(e), nil
}

// RetryAllDeadEntries requeues every DEAD entry and reports how many moved.
// Requeued entries leave the dead set, so the first page is read until it
// comes back empty or nothing on it could be requeued.
func (s *OutboxService) RetryAllDeadEntries(ctx context.Context, caller shared.Caller) (int64, error) {
	if err := caller.Require(shared.RoleAdmin); err != nil {
		return 0, err
	}
	var requeued int64
	for {
		dead, _, err := s.repo.FindDead(ctx, 1, maxPageSize)
		if err != nil {
			return requeued, shared.WrapInternal("list dead outbox entries", err)
		}
		before := requeued
		for _, e := range dead {
			if s.requeue(ctx, caller, e) == nil {
				requeued++
			}
		}
		if requeued == before || len(dead) < maxPageSize {
			break
		}
	}
	s.logger.Info("dead outbox entries requeued", zap.Int64("count", requeued), zap.Stringer("actor_id", caller.UserID))
	return requeued, nil
}

func (s *OutboxService) GetStats(ctx context.Context, caller shared.Caller) (*OutboxStatsDTO, error) {
	if err := caller.Require(shared.RoleAdmin); err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, shared.WrapInternal("count outbox entries", err)
	}
	return newOutboxStatsDTO(counts), nil
}

func (s *OutboxService) load(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	e, err := s.repo.FindByID(ctx, id)
	switch {
	case shared.IsNotFound(err):
		return nil, err
	case err != nil:
		return nil, shared.WrapInternal("load outbox entry "+id.String(), err)
	case e == nil:
		return nil, shared.NewNotFoundError("outbox entry")
	}
	return e, nil
}

func (s *OutboxService) requeue(ctx context.Context, caller shared.Caller, e *shared.OutboxEntry) error {
	if err := e.Requeue(s.now()); err != nil {
		return err
	}
	log := s.logger.With(zap.Stringer("id", e.ID), zap.String("event_type", e.EventType))
	if err := s.repo.Update(ctx, e); err != nil {
		log.Error("requeue outbox entry", zap.Error(err))
		return shared.WrapInternal("requeue outbox entry", err)
	}
	log.Info("outbox entry requeued", zap.Stringer("actor_id", caller.UserID))
	s.audit(ctx, caller, e)
	return nil
}

// audit failures are logged; they never undo a requeue
func (s *OutboxService) audit(ctx context.Context, caller shared.Caller, e *shared.OutboxEntry) {
	if s.trail == nil {
		return
	}
	entry, err := audit.NewEntry(caller, audit.ActionOutboxRetried, "OutboxEntry", e.ID, "",
		map[string]any{"eventType": e.EventType, "eventId": e.EventID.String()}, s.now())
	if err == nil {
		err = s.trail.Create(ctx, entry)
	}
	if err != nil {
		s.logger.Warn("audit outbox requeue", zap.Stringer("id", e.ID), zap.Error(err))
	}
}
