package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_CodeMatching(t *testing.T) {
	t.Run("errors.Is matches by code through wrapping", func(t *testing.T) {
		err := fmt.Errorf("load case: %w", NewNotFoundError("verification case"))
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, IsNotFound(err))
		assert.False(t, IsConflict(err))
	})

	t.Run("CodeOf falls back to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.Equal(t, CodeConflict, CodeOf(ErrConflict))
	})

	t.Run("WithDetail copies", func(t *testing.T) {
		base := NewDomainError(CodeConflict, "duplicate")
		withID := base.WithDetail("existingTransactionId", "abc")
		assert.Nil(t, base.Details)
		assert.Equal(t, "abc", withID.Details["existingTransactionId"])
	})

	t.Run("WrapInternal unwraps to cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := WrapInternal("save escrow", cause)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestCaller_Require(t *testing.T) {
	admin := NewCaller(uuid.New(), RoleAdmin)
	buyer := NewCaller(uuid.New(), RoleBuyer)

	require.NoError(t, admin.Require(RoleAdmin, RoleReviewer))
	err := buyer.Require(RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, CodeForbidden, CodeOf(err))

	assert.NoError(t, buyer.RequireSelfOr(buyer.UserID, RoleAdmin))
	assert.Error(t, buyer.RequireSelfOr(uuid.New(), RoleAdmin))
	assert.Error(t, Caller{}.RequireSelfOr(uuid.Nil, RoleAdmin))
}
