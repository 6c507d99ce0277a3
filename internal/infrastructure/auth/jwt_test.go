package auth

import (
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWT = config.JWTConfig{Secret: "test-secret-that-is-long-enough-32b", Issuer: "tradewave-identity"}

func TestVerifier_RoundTrip(t *testing.T) {
	caller := shared.NewCaller(uuid.New(), shared.RoleSupplier)
	token, err := Issue(testJWT, caller, time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := NewVerifier(testJWT).Verify(token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := claims.Caller()
	require.NoError(t, err)
	assert.Equal(t, caller, got)
}

func TestVerifier_Rejects(t *testing.T) {
	caller := shared.NewCaller(uuid.New(), shared.RoleAdmin)
	v := NewVerifier(testJWT)

	t.Run("expired", func(t *testing.T) {
		token, err := Issue(testJWT, caller, time.Minute, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		token, err := Issue(testJWT, caller, time.Hour, time.Now().Add(time.Hour))
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := testJWT
		other.Secret = "another-secret-another-secret-123"
		token, err := Issue(other, caller, time.Hour, time.Now())
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := testJWT
		other.Issuer = "someone-else"
		token, err := Issue(other, caller, time.Hour, time.Now())
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   caller.UserID.String(),
				Issuer:    testJWT.Issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: "ADMIN",
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: caller.UserID.String(), Issuer: testJWT.Issuer},
			Role:             "ADMIN",
		}).SignedString([]byte(testJWT.Secret))
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_Caller(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name    string
		claims  Claims
		wantErr bool
	}{
		{"buyer", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}, Role: "BUYER"}, false},
		{"reviewer", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}, Role: "REVIEWER"}, false},
		{"bad subject", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}, Role: "BUYER"}, true},
		{"unknown role", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}, Role: "OWNER"}, true},
		{"system role cannot be claimed", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}, Role: "SYSTEM"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller, err := tt.claims.Caller()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClaims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, caller.UserID)
			assert.Equal(t, shared.Role(tt.claims.Role), caller.Role)
		})
	}
}
