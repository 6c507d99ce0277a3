package event

import (
	"context"
	"sync"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testEvent struct {
	shared.BaseDomainEvent
	Note string `json:"note"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), uuid.New(), time.Now().UTC()),
		Note:            "hello",
	}
}

// recordingHandler collects the events it sees and returns err
type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	err    error
	events []shared.DomainEvent
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

type mockOutboxRepository struct {
	mock.Mock
}

func (m *mockOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *mockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]*shared.OutboxEntry)
	return entries, args.Error(1)
}

func (m *mockOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, before, limit)
	entries, _ := args.Get(0).([]*shared.OutboxEntry)
	return entries, args.Error(1)
}

func (m *mockOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	args := m.Called(ctx, page, pageSize)
	entries, _ := args.Get(0).([]*shared.OutboxEntry)
	return entries, args.Get(1).(int64), args.Error(2)
}

func (m *mockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	args := m.Called(ctx, id)
	entry, _ := args.Get(0).(*shared.OutboxEntry)
	return entry, args.Error(1)
}

func (m *mockOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, ids)
	entries, _ := args.Get(0).([]*shared.OutboxEntry)
	return entries, args.Error(1)
}

func (m *mockOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[shared.OutboxStatus]int64)
	return counts, args.Error(1)
}

var _ shared.OutboxRepository = (*mockOutboxRepository)(nil)
