package cache

import (
	"context"
	"fmt"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore shares client when one is given. Otherwise it dials
// cfg, and with no Redis configured or reachable it degrades to process
// memory unless requireRedis is set.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, client *redis.Client, requireRedis bool, log *zap.Logger) (shared.IdempotencyStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if client != nil {
		log.Info("idempotency keys in redis", zap.String("addr", cfg.Addr()))
		return NewRedisIdempotencyStore(client, ""), nil
	}

	var dialErr error
	if cfg.Host != "" {
		own, err := NewRedisClient(ctx, cfg)
		if err == nil {
			s := NewRedisIdempotencyStore(own, "")
			s.owned = true
			log.Info("idempotency keys in redis", zap.String("addr", cfg.Addr()))
			return s, nil
		}
		dialErr = err
	}

	if requireRedis {
		if dialErr == nil {
			dialErr = fmt.Errorf("redis.host is empty")
		}
		return nil, fmt.Errorf("idempotency store needs redis: %w", dialErr)
	}
	log.Warn("idempotency keys in process memory; duplicates are possible across instances", zap.Error(dialErr))
	return NewInMemoryIdempotencyStore(), nil
}
