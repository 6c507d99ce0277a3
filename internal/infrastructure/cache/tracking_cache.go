package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ShipmentCache stores carrier lookups. Get returns nil, nil on a miss.
type ShipmentCache interface {
	Get(ctx context.Context, key string) (*trade.ShipmentInfo, error)
	Set(ctx context.Context, key string, info *trade.ShipmentInfo, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ShipmentKey builds the cache key of a carrier lookup
func ShipmentKey(carrier, trackingNumber string) string {
	return carrier + ":" + trackingNumber
}

type expiring[T any] struct {
	value     *T
	expiresAt time.Time
}

// InMemoryShipmentCache is a process-local TTL cache
type InMemoryShipmentCache struct {
	entries sync.Map // key -> expiring[trade.ShipmentInfo]
	now     func() time.Time
}

// NewInMemoryShipmentCache creates an empty cache
func NewInMemoryShipmentCache() *InMemoryShipmentCache {
	return &InMemoryShipmentCache{now: time.Now}
}

// Get returns the cached info while it is fresh
func (c *InMemoryShipmentCache) Get(_ context.Context, key string) (*trade.ShipmentInfo, error) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, nil
	}
	e := v.(expiring[trade.ShipmentInfo])
	if !c.now().Before(e.expiresAt) {
		c.entries.Delete(key)
		return nil, nil
	}
	cp := *e.value
	return &cp, nil
}

// Set stores a copy of info for ttl
func (c *InMemoryShipmentCache) Set(_ context.Context, key string, info *trade.ShipmentInfo, ttl time.Duration) error {
	if info == nil || ttl <= 0 {
		return nil
	}
	cp := *info
	c.entries.Store(key, expiring[trade.ShipmentInfo]{value: &cp, expiresAt: c.now().Add(ttl)})
	return nil
}

// Delete drops key
func (c *InMemoryShipmentCache) Delete(_ context.Context, key string) error {
	c.entries.Delete(key)
	return nil
}

// RedisShipmentCache keeps lookups in Redis as JSON
type RedisShipmentCache struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisShipmentCache creates a Redis-backed cache
func NewRedisShipmentCache(client redis.UniversalClient, logger *zap.Logger) *RedisShipmentCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisShipmentCache{client: client, keyPrefix: "tradewave:tracking:", logger: logger}
}

// Get reads and decodes a cached lookup; corrupt entries are dropped and reported as a miss
func (c *RedisShipmentCache) Get(ctx context.Context, key string) (*trade.ShipmentInfo, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tracking cache: %w", err)
	}

	var info trade.ShipmentInfo
	if err := json.Unmarshal(data, &info); err != nil {
		c.logger.Warn("dropping corrupt tracking cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, c.keyPrefix+key).Err()
		return nil, nil
	}
	return &info, nil
}

// Set encodes info and stores it with ttl
func (c *RedisShipmentCache) Set(ctx context.Context, key string, info *trade.ShipmentInfo, ttl time.Duration) error {
	if info == nil || ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode tracking info: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write tracking cache: %w", err)
	}
	return nil
}

// Delete removes key
func (c *RedisShipmentCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.keyPrefix+key).Err()
}

// TieredShipmentCache reads a short-lived local L1 before the shared L2.
type TieredShipmentCache struct {
	l1    ShipmentCache
	l2    ShipmentCache
	l1TTL time.Duration
	log   *zap.Logger

	l1Hits, l2Hits, misses atomic.Int64
}

// TieredStats counts where lookups were answered
type TieredStats struct {
	L1Hits int64 `json:"l1Hits"`
	L2Hits int64 `json:"l2Hits"`
	Misses int64 `json:"misses"`
}

// NewTieredShipmentCache combines l1 and l2; l1 entries live for at most l1TTL
func NewTieredShipmentCache(l1, l2 ShipmentCache, l1TTL time.Duration, logger *zap.Logger) *TieredShipmentCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredShipmentCache{l1: l1, l2: l2, l1TTL: l1TTL, log: logger}
}

// Get checks L1, then L2, back-filling L1 on an L2 hit. L1 errors are only logged.
func (c *TieredShipmentCache) Get(ctx context.Context, key string) (*trade.ShipmentInfo, error) {
	info, err := c.l1.Get(ctx, key)
	if err != nil {
		c.log.Warn("L1 tracking cache error", zap.String("key", key), zap.Error(err))
	}
	if info != nil {
		c.l1Hits.Add(1)
		return info, nil
	}

	info, err = c.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if info == nil {
		c.misses.Add(1)
		return nil, nil
	}
	c.l2Hits.Add(1)
	if err := c.l1.Set(ctx, key, info, c.l1TTL); err != nil {
		c.log.Warn("failed to back-fill L1 tracking cache", zap.String("key", key), zap.Error(err))
	}
	return info, nil
}

// Set writes L2 with ttl and L1 with the shorter of ttl and the L1 TTL
func (c *TieredShipmentCache) Set(ctx context.Context, key string, info *trade.ShipmentInfo, ttl time.Duration) error {
	if err := c.l2.Set(ctx, key, info, ttl); err != nil {
		return err
	}
	l1TTL := c.l1TTL
	if ttl < l1TTL {
		l1TTL = ttl
	}
	if err := c.l1.Set(ctx, key, info, l1TTL); err != nil {
		c.log.Warn("failed to set L1 tracking cache", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Delete removes key from both tiers
func (c *TieredShipmentCache) Delete(ctx context.Context, key string) error {
	if err := c.l2.Delete(ctx, key); err != nil {
		return err
	}
	return c.l1.Delete(ctx, key)
}

// Stats returns the hit counters
func (c *TieredShipmentCache) Stats() TieredStats {
	return TieredStats{L1Hits: c.l1Hits.Load(), L2Hits: c.l2Hits.Load(), Misses: c.misses.Load()}
}

var (
	_ ShipmentCache = (*InMemoryShipmentCache)(nil)
	_ ShipmentCache = (*RedisShipmentCache)(nil)
	_ ShipmentCache = (*TieredShipmentCache)(nil)
)
