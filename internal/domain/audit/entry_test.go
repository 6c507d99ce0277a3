package audit

import (
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	admin := shared.NewCaller(uuid.New(), shared.RoleAdmin)
	details := map[string]any{"outcome": "ADMITTED"}

	e, err := NewEntry(admin, ActionGateOverridden, "Transaction", uuid.New(), "  trusted partner ", details, now)
	require.NoError(t, err)
	assert.Equal(t, "trusted partner", e.Reason)
	assert.Equal(t, admin.UserID, e.ActorID)
	assert.Equal(t, shared.RoleAdmin, e.ActorRole)
	assert.Equal(t, now, e.CreatedAt)

	details["outcome"] = "changed"
	assert.Equal(t, "ADMITTED", e.Details["outcome"])

	_, err = NewEntry(admin, "DELETED_EVERYTHING", "Transaction", uuid.New(), "", nil, now)
	assert.Error(t, err)
	_, err = NewEntry(admin, ActionGateOverridden, "", uuid.New(), "", nil, now)
	assert.Error(t, err)
}
