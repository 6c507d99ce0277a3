package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "tradewave:idempotency:"

// RedisIdempotencyStore shares claims between instances. It closes the
// client only when it dialled the client itself.
type RedisIdempotencyStore struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// NewRedisIdempotencyStore claims keys under prefix, idempotencyPrefix when empty
func NewRedisIdempotencyStore(client redis.UniversalClient, prefix string) *RedisIdempotencyStore {
	if prefix == "" {
		prefix = idempotencyPrefix
	}
	return &RedisIdempotencyStore{client: client, prefix: prefix}
}

// Claim is SET key 1 NX PX ttl
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	err := s.client.SetArgs(ctx, s.prefix+key, "1", redis.SetArgs{Mode: "NX", TTL: ttl}).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
