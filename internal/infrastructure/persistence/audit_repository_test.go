package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAuditRepository(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewGormAuditRepository(db)
	ctx := context.Background()

	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}
	resource := uuid.New()
	for i := 0; i < 3; i++ {
		e, err := audit.NewEntry(admin, audit.ActionGateOverridden, "transaction", resource,
			"trusted buyer", map[string]any{"attempt": float64(i)}, testNow.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, e))
	}
	other, err := audit.NewEntry(admin, audit.ActionEscrowReleased, "escrow", uuid.New(), "", nil, testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, other))

	entries, err := repo.FindByResource(ctx, "transaction", resource, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, float64(2), entries[0].Details["attempt"])
	assert.Equal(t, shared.RoleAdmin, entries[0].ActorRole)
	assert.Equal(t, admin.UserID, entries[0].ActorID)

	limited, err := repo.FindByResource(ctx, "transaction", resource, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := repo.FindByResource(ctx, "escrow", resource, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
