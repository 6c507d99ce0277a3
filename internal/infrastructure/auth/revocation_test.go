package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimsIssuedAt(jti, sub string, iat time.Time) *Claims {
	return &Claims{RegisteredClaims: jwt.RegisteredClaims{ID: jti, Subject: sub, IssuedAt: jwt.NewNumericDate(iat)}}
}

func exerciseRevocationStore(t *testing.T, store RevocationStore) {
	ctx := context.Background()
	now := time.Now()

	revoked, err := store.IsRevoked(ctx, claimsIssuedAt("jti-1", "user-1", now))
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.RevokeToken(ctx, "jti-1", time.Hour))
	revoked, err = store.IsRevoked(ctx, claimsIssuedAt("jti-1", "user-1", now))
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, store.RevokeUser(ctx, "user-2", now, time.Hour))

	revoked, err = store.IsRevoked(ctx, claimsIssuedAt("jti-2", "user-2", now.Add(-time.Minute)))
	require.NoError(t, err)
	assert.True(t, revoked, "token issued before the user revocation")

	revoked, err = store.IsRevoked(ctx, claimsIssuedAt("jti-3", "user-2", now.Add(time.Minute)))
	require.NoError(t, err)
	assert.False(t, revoked, "token issued after the user revocation")
}

func TestMemoryRevocationStore(t *testing.T) {
	exerciseRevocationStore(t, NewMemoryRevocationStore())
}

func TestMemoryRevocationStore_TokenEntryExpires(t *testing.T) {
	store := NewMemoryRevocationStore()
	clock := time.Now()
	store.now = func() time.Time { return clock }

	require.NoError(t, store.RevokeToken(context.Background(), "jti-9", time.Minute))
	clock = clock.Add(2 * time.Minute)

	revoked, err := store.IsRevoked(context.Background(), claimsIssuedAt("jti-9", "user-9", clock))
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevocationStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisRevocationStore(client)
	exerciseRevocationStore(t, store)

	mr.FastForward(2 * time.Hour)
	revoked, err := store.IsRevoked(context.Background(), claimsIssuedAt("jti-1", "user-1", time.Now()))
	require.NoError(t, err)
	assert.False(t, revoked, "revocations expire with their ttl")
}
