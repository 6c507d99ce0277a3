package event

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin    = shared.NewCaller(uuid.New(), shared.RoleAdmin)
	reviewer = shared.NewCaller(uuid.New(), shared.RoleReviewer)
)

// memOutbox keeps entries in insertion order so paging is deterministic
type memOutbox struct {
	order     []uuid.UUID
	byID      map[uuid.UUID]*shared.OutboxEntry
	updateErr error
}

func newMemOutbox() *memOutbox {
	return &memOutbox{byID: map[uuid.UUID]*shared.OutboxEntry{}}
}

func (m *memOutbox) add(e *shared.OutboxEntry) *shared.OutboxEntry {
	m.order = append(m.order, e.ID)
	m.byID[e.ID] = e
	return e
}

func (m *memOutbox) withStatus(s shared.OutboxStatus) []*shared.OutboxEntry {
	var out []*shared.OutboxEntry
	for _, id := range m.order {
		if e := m.byID[id]; e.Status == s {
			out = append(out, e)
		}
	}
	return out
}

func (m *memOutbox) Save(_ context.Context, entries ...*shared.OutboxEntry) error {
	for _, e := range entries {
		m.add(e)
	}
	return nil
}

func (m *memOutbox) FindPending(_ context.Context, limit int) ([]*shared.OutboxEntry, error) {
	out := m.withStatus(shared.OutboxStatusPending)
	return out[:min(limit, len(out))], nil
}

func (m *memOutbox) FindRetryable(context.Context, time.Time, int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (m *memOutbox) FindDead(_ context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	dead := m.withStatus(shared.OutboxStatusDead)
	from := min((page-1)*pageSize, len(dead))
	to := min(from+pageSize, len(dead))
	return dead[from:to], int64(len(dead)), nil
}

func (m *memOutbox) FindByID(_ context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	return m.byID[id], nil
}

func (m *memOutbox) MarkProcessing(context.Context, []uuid.UUID) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (m *memOutbox) Update(_ context.Context, e *shared.OutboxEntry) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.byID[e.ID] = e
	return nil
}

func (m *memOutbox) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (m *memOutbox) CountByStatus(context.Context) (map[shared.OutboxStatus]int64, error) {
	counts := map[shared.OutboxStatus]int64{}
	for _, e := range m.byID {
		counts[e.Status]++
	}
	return counts, nil
}

type stubEvent struct {
	shared.BaseDomainEvent
}

// entryIn builds an entry that went through real delivery transitions to reach status
func entryIn(status shared.OutboxStatus) *shared.OutboxEntry {
	now := time.Now().UTC()
	ev := &stubEvent{shared.NewBaseDomainEvent("EscrowReleased", "Escrow", uuid.New(), uuid.New(), now)}
	e := shared.NewOutboxEntry(ev, []byte(`{}`), 2, now)
	policy := shared.DefaultDeliveryPolicy()
	switch status {
	case shared.OutboxStatusFailed:
		e.Failed("notifier down", policy, now)
	case shared.OutboxStatusDead:
		e.Failed("notifier down", policy, now)
		e.Failed("notifier still down", policy, now)
	case shared.OutboxStatusSent:
		e.Delivered(now)
	case shared.OutboxStatusProcessing:
		e.Status = shared.OutboxStatusProcessing
	}
	return e
}

type recordingAuditRepo struct {
	entries []*audit.Entry
}

func (r *recordingAuditRepo) Create(_ context.Context, e *audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *recordingAuditRepo) FindByResource(context.Context, string, uuid.UUID, int) ([]audit.Entry, error) {
	return nil, nil
}

func TestOutboxService_GetDeadLetterEntries(t *testing.T) {
	repo := newMemOutbox()
	for range 5 {
		repo.add(entryIn(shared.OutboxStatusDead))
	}
	repo.add(entryIn(shared.OutboxStatusPending))
	svc := NewOutboxService(repo, nil, nil)

	tests := []struct {
		name      string
		filter    OutboxFilter
		wantLen   int
		wantPage  int
		wantSize  int
		wantPages int
	}{
		{"first page", OutboxFilter{Page: 1, PageSize: 2}, 2, 1, 2, 3},
		{"last partial page", OutboxFilter{Page: 3, PageSize: 2}, 1, 3, 2, 3},
		{"defaults", OutboxFilter{}, 5, 1, 20, 1},
		{"oversized page", OutboxFilter{Page: 1, PageSize: 500}, 5, 1, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.GetDeadLetterEntries(context.Background(), admin, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(5), res.Total)
			assert.Len(t, res.Entries, tt.wantLen)
			assert.Equal(t, tt.wantPage, res.Page)
			assert.Equal(t, tt.wantSize, res.PageSize)
			assert.Equal(t, tt.wantPages, res.TotalPages)
			for _, e := range res.Entries {
				assert.Equal(t, "DEAD", e.Status)
				assert.Equal(t, "notifier still down", e.LastError)
			}
		})
	}
}

func TestOutboxService_RetryDeadEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("requeues and audits", func(t *testing.T) {
		repo := newMemOutbox()
		dead := repo.add(entryIn(shared.OutboxStatusDead))
		trail := &recordingAuditRepo{}
		svc := NewOutboxService(repo, trail, nil)

		got, err := svc.RetryDeadEntry(ctx, admin, dead.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", got.Status)
		assert.Zero(t, got.RetryCount)
		assert.Empty(t, got.LastError)

		require.Len(t, trail.entries, 1)
		assert.Equal(t, audit.ActionOutboxRetried, trail.entries[0].Action)
		assert.Equal(t, dead.ID, trail.entries[0].ResourceID)
		assert.Equal(t, admin.UserID, trail.entries[0].ActorID)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := NewOutboxService(newMemOutbox(), nil, nil)
		_, err := svc.RetryDeadEntry(ctx, admin, uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})

	for _, status := range []shared.OutboxStatus{shared.OutboxStatusPending, shared.OutboxStatusFailed, shared.OutboxStatusSent} {
		t.Run("refuses "+string(status), func(t *testing.T) {
			repo := newMemOutbox()
			e := repo.add(entryIn(status))
			_, err := NewOutboxService(repo, nil, nil).RetryDeadEntry(ctx, admin, e.ID)

			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, shared.CodeInvalidState, de.Code)
			assert.Equal(t, string(status), de.Details["currentStatus"])
		})
	}

	t.Run("update failure is internal", func(t *testing.T) {
		repo := newMemOutbox()
		dead := repo.add(entryIn(shared.OutboxStatusDead))
		repo.updateErr = errors.New("connection reset")
		_, err := NewOutboxService(repo, nil, nil).RetryDeadEntry(ctx, admin, dead.ID)
		assert.Equal(t, shared.CodeInternal, shared.CodeOf(err))
	})
}

func TestOutboxService_RetryAllDeadEntries(t *testing.T) {
	repo := newMemOutbox()
	var dead []uuid.UUID
	for range 3 {
		dead = append(dead, repo.add(entryIn(shared.OutboxStatusDead)).ID)
	}
	sent := repo.add(entryIn(shared.OutboxStatusSent))

	n, err := NewOutboxService(repo, nil, nil).RetryAllDeadEntries(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	var requeued []uuid.UUID
	for _, e := range repo.withStatus(shared.OutboxStatusPending) {
		requeued = append(requeued, e.ID)
	}
	sortIDs(dead)
	sortIDs(requeued)
	assert.Equal(t, dead, requeued)
	assert.Equal(t, shared.OutboxStatusSent, repo.byID[sent.ID].Status)
}

func TestOutboxService_GetStats(t *testing.T) {
	repo := newMemOutbox()
	layout := map[shared.OutboxStatus]int{
		shared.OutboxStatusPending:    2,
		shared.OutboxStatusProcessing: 1,
		shared.OutboxStatusSent:       3,
		shared.OutboxStatusFailed:     1,
		shared.OutboxStatusDead:       1,
	}
	for status, n := range layout {
		for range n {
			repo.add(entryIn(status))
		}
	}

	stats, err := NewOutboxService(repo, nil, nil).GetStats(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, OutboxStatsDTO{Pending: 2, Processing: 1, Sent: 3, Failed: 1, Dead: 1, Total: 8}, *stats)
}

func TestOutboxService_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	svc := NewOutboxService(newMemOutbox(), nil, nil)

	_, err := svc.GetStats(ctx, reviewer)
	assert.Equal(t, shared.CodeForbidden, shared.CodeOf(err))
	_, err = svc.GetEntry(ctx, reviewer, uuid.New())
	assert.Equal(t, shared.CodeForbidden, shared.CodeOf(err))
	_, err = svc.RetryAllDeadEntries(ctx, reviewer)
	assert.Equal(t, shared.CodeForbidden, shared.CodeOf(err))
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
