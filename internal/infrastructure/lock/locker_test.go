package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := NewRedisLocker(client, DefaultOptions(), nil)
	require.NoError(t, err)
	return l, mr
}

func lockers(t *testing.T) map[string]shared.Locker {
	redisLocker, _ := newTestRedisLocker(t)
	return map[string]shared.Locker{
		"redis":  redisLocker,
		"memory": NewMemoryLocker(),
	}
}

func TestLocker_WithLock(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name+" runs fn and returns its error", func(t *testing.T) {
			ran := false
			err := l.WithLock(context.Background(), "admission:offer:1", func(ctx context.Context) error {
				ran = true
				return nil
			})
			require.NoError(t, err)
			assert.True(t, ran)

			boom := errors.New("boom")
			err = l.WithLock(context.Background(), "admission:offer:1", func(ctx context.Context) error {
				return boom
			})
			assert.ErrorIs(t, err, boom)
		})

		t.Run(name+" reports CONFLICT while held", func(t *testing.T) {
			err := l.WithLock(context.Background(), "admission:offer:2", func(ctx context.Context) error {
				inner := l.WithLock(ctx, "admission:offer:2", func(context.Context) error {
					t.Fatal("nested acquisition must not run")
					return nil
				})
				assert.True(t, shared.IsConflict(inner))
				return nil
			})
			require.NoError(t, err)
		})

		t.Run(name+" releases after fn", func(t *testing.T) {
			for i := 0; i < 3; i++ {
				require.NoError(t, l.WithLock(context.Background(), "admission:offer:3", func(context.Context) error { return nil }))
			}
		})

		t.Run(name+" different keys do not contend", func(t *testing.T) {
			err := l.WithLock(context.Background(), "a", func(ctx context.Context) error {
				return l.WithLock(ctx, "b", func(context.Context) error { return nil })
			})
			assert.NoError(t, err)
		})

		t.Run(name+" rejects an empty key", func(t *testing.T) {
			err := l.WithLock(context.Background(), " ", func(context.Context) error { return nil })
			assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
		})
	}
}

func TestLocker_ConcurrentCallersSerialize(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var (
				wg        sync.WaitGroup
				active    atomic.Int32
				overlap   atomic.Bool
				successes atomic.Int32
				conflicts atomic.Int32
			)
			start := make(chan struct{})
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					err := l.WithLock(context.Background(), "admission:offer:race", func(context.Context) error {
						if active.Add(1) > 1 {
							overlap.Store(true)
						}
						time.Sleep(20 * time.Millisecond)
						active.Add(-1)
						return nil
					})
					switch {
					case err == nil:
						successes.Add(1)
					case shared.IsConflict(err):
						conflicts.Add(1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			close(start)
			wg.Wait()

			assert.False(t, overlap.Load())
			assert.GreaterOrEqual(t, successes.Load(), int32(1))
			assert.Equal(t, int32(8), successes.Load()+conflicts.Load())
		})
	}
}

func TestRedisLocker(t *testing.T) {
	t.Run("uses the key prefix", func(t *testing.T) {
		l, mr := newTestRedisLocker(t)
		err := l.WithLock(context.Background(), "admission:offer:9", func(context.Context) error {
			assert.True(t, mr.Exists("tradewave:lock:admission:offer:9"))
			return nil
		})
		require.NoError(t, err)
		assert.False(t, mr.Exists("tradewave:lock:admission:offer:9"))
	})

	t.Run("stale lock expires", func(t *testing.T) {
		l, mr := newTestRedisLocker(t)
		require.NoError(t, mr.Set("tradewave:lock:stale", "other-owner"))
		mr.SetTTL("tradewave:lock:stale", time.Second)

		err := l.WithLock(context.Background(), "stale", func(context.Context) error { return nil })
		assert.True(t, shared.IsConflict(err))

		mr.FastForward(2 * time.Second)
		assert.NoError(t, l.WithLock(context.Background(), "stale", func(context.Context) error { return nil }))
	})

	t.Run("cancelled context", func(t *testing.T) {
		l, _ := newTestRedisLocker(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := l.WithLock(ctx, "k", func(context.Context) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("constructor validation", func(t *testing.T) {
		_, err := NewRedisLocker(nil, DefaultOptions(), nil)
		assert.Error(t, err)

		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()
		_, err = NewRedisLocker(client, Options{}, nil)
		assert.Error(t, err)
	})
}

func TestMemoryLocker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewMemoryLocker().WithLock(ctx, "k", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
