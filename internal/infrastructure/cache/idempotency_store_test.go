package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewInMemoryIdempotencyStore()
	store.now = func() time.Time { return now }

	claimed, err := store.Claim(ctx, "event:a", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, _ = store.Claim(ctx, "event:a", time.Minute)
	assert.False(t, claimed, "held key")

	require.NoError(t, store.Release(ctx, "event:a"))
	claimed, _ = store.Claim(ctx, "event:a", time.Minute)
	assert.True(t, claimed, "released key")

	now = now.Add(2 * time.Minute)
	claimed, _ = store.Claim(ctx, "event:a", time.Hour)
	assert.True(t, claimed, "expired key")

	_, _ = store.Claim(ctx, "event:short", time.Second)
	assert.Equal(t, 2, store.Len())

	now = now.Add(sweepEvery)
	_, _ = store.Claim(ctx, "event:b", time.Hour)
	assert.Equal(t, 2, store.Len(), "sweep drops event:short and keeps event:a")

	assert.NoError(t, store.Close())
}

func TestRedisIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisIdempotencyStore(client, "")

	claimed, err := store.Claim(ctx, "event:a", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.True(t, mr.Exists(idempotencyPrefix+"event:a"))
	assert.Equal(t, time.Minute, mr.TTL(idempotencyPrefix+"event:a"))

	claimed, err = store.Claim(ctx, "event:a", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)

	mr.FastForward(2 * time.Minute)
	claimed, _ = store.Claim(ctx, "event:a", time.Minute)
	assert.True(t, claimed, "expired key")

	require.NoError(t, store.Release(ctx, "event:a"))
	assert.False(t, mr.Exists(idempotencyPrefix+"event:a"))

	require.NoError(t, store.Close())
	assert.NoError(t, client.Ping(ctx).Err(), "borrowed client stays open")

	broken := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	_ = broken.Close()
	_, err = NewRedisIdempotencyStore(broken, "x:").Claim(ctx, "event:b", time.Hour)
	assert.ErrorContains(t, err, "claim event:b")
}

func TestNewIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("no redis configured", func(t *testing.T) {
		store, err := NewIdempotencyStore(ctx, config.RedisConfig{}, nil, false, nil)
		require.NoError(t, err)
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("borrows the shared client", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		store, err := NewIdempotencyStore(ctx, config.RedisConfig{}, client, true, nil)
		require.NoError(t, err)
		rs := store.(*RedisIdempotencyStore)
		assert.False(t, rs.owned)
	})

	t.Run("dials configured redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, err := NewIdempotencyStore(ctx, config.RedisConfig{Host: mr.Host(), Port: mustPort(t, mr)}, nil, true, nil)
		require.NoError(t, err)
		defer store.Close()
		rs := store.(*RedisIdempotencyStore)
		assert.True(t, rs.owned)
	})

	t.Run("degrades when redis is unreachable", func(t *testing.T) {
		store, err := NewIdempotencyStore(ctx, unreachable, nil, false, nil)
		require.NoError(t, err)
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("required redis", func(t *testing.T) {
		_, err := NewIdempotencyStore(ctx, unreachable, nil, true, nil)
		assert.ErrorContains(t, err, "needs redis")

		_, err = NewIdempotencyStore(ctx, config.RedisConfig{}, nil, true, nil)
		assert.ErrorContains(t, err, "redis.host is empty")
	})
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return port
}
