package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type releasedEvent struct {
	BaseDomainEvent
}

func newEntry(t *testing.T, maxAttempts int, at time.Time) *OutboxEntry {
	t.Helper()
	ev := &releasedEvent{NewBaseDomainEvent("EscrowReleased", "Escrow", uuid.New(), uuid.New(), at)}
	e := NewOutboxEntry(ev, []byte(`{"amount":"10.00"}`), maxAttempts, at)
	require.Equal(t, ev.EventID(), e.EventID)
	require.Equal(t, ev.ActorID(), e.ActorID)
	return e
}

func TestDeliveryPolicy_Backoff(t *testing.T) {
	p := DeliveryPolicy{MaxAttempts: 10, BaseBackoff: time.Second, MaxBackoff: 30 * time.Second}

	for attempt, want := range map[int]time.Duration{
		-1: time.Second,
		0:  time.Second,
		1:  time.Second,
		2:  2 * time.Second,
		4:  8 * time.Second,
		5:  16 * time.Second,
		6:  30 * time.Second,
		60: 30 * time.Second,
	} {
		assert.Equal(t, want, p.Backoff(attempt), "attempt %d", attempt)
	}

	uncapped := DeliveryPolicy{BaseBackoff: time.Second}
	assert.Equal(t, 64*time.Second, uncapped.Backoff(7))
}

func TestNewOutboxEntry(t *testing.T) {
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	e := newEntry(t, 3, at)
	assert.Equal(t, OutboxStatusPending, e.Status)
	assert.Equal(t, "EscrowReleased", e.EventType)
	assert.Equal(t, "Escrow", e.AggregateType)
	assert.Equal(t, 3, e.MaxRetries)
	assert.Equal(t, at, e.CreatedAt)

	assert.Equal(t, DefaultDeliveryPolicy().MaxAttempts, newEntry(t, 0, at).MaxRetries)
}

func TestOutboxEntry_Failed(t *testing.T) {
	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	policy := DefaultDeliveryPolicy()
	e := newEntry(t, 3, at)

	e.Failed("timeout", policy, at)
	assert.Equal(t, OutboxStatusFailed, e.Status)
	assert.Equal(t, 1, e.RetryCount)
	require.NotNil(t, e.NextRetryAt)
	assert.Equal(t, at.Add(time.Second), *e.NextRetryAt)

	e.Failed("timeout again", policy, at)
	assert.Equal(t, at.Add(2*time.Second), *e.NextRetryAt)
	assert.False(t, e.IsDead())

	e.Failed("gave up", policy, at)
	assert.True(t, e.IsDead())
	assert.Nil(t, e.NextRetryAt)
	assert.Equal(t, "gave up", e.LastError)
	assert.Equal(t, 3, e.RetryCount)
}

func TestOutboxEntry_Delivered(t *testing.T) {
	at := time.Now().UTC()
	e := newEntry(t, 3, at)
	e.Failed("flaky", DefaultDeliveryPolicy(), at)

	later := at.Add(time.Minute)
	e.Delivered(later)
	assert.Equal(t, OutboxStatusSent, e.Status)
	require.NotNil(t, e.ProcessedAt)
	assert.Equal(t, later, *e.ProcessedAt)
	assert.Nil(t, e.NextRetryAt)
	assert.Equal(t, later, e.UpdatedAt)
}

func TestOutboxEntry_Requeue(t *testing.T) {
	at := time.Now().UTC()

	t.Run("dead entry starts over", func(t *testing.T) {
		e := newEntry(t, 1, at)
		e.Failed("boom", DefaultDeliveryPolicy(), at)
		require.True(t, e.IsDead())

		require.NoError(t, e.Requeue(at.Add(time.Hour)))
		assert.Equal(t, OutboxStatusPending, e.Status)
		assert.Zero(t, e.RetryCount)
		assert.Empty(t, e.LastError)
		assert.Equal(t, at.Add(time.Hour), e.UpdatedAt)
	})

	for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusProcessing, OutboxStatusSent, OutboxStatusFailed} {
		t.Run(string(status)+" is refused", func(t *testing.T) {
			e := newEntry(t, 3, at)
			e.Status = status

			err := e.Requeue(at)
			var de *DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, CodeInvalidState, de.Code)
			assert.Equal(t, string(status), de.Details["currentStatus"])
			assert.Equal(t, status, e.Status)
		})
	}
}
