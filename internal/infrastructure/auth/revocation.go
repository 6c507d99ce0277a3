package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore tracks tokens revoked before their expiry.
// A user revocation invalidates every token issued at or before it.
type RevocationStore interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	RevokeUser(ctx context.Context, userID string, at time.Time, ttl time.Duration) error
	IsRevoked(ctx context.Context, claims *Claims) (bool, error)
}

// RedisRevocationStore keeps revocations in Redis so every instance sees them
type RedisRevocationStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

func NewRedisRevocationStore(client redis.UniversalClient) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, keyPrefix: "auth:revoked:"}
}

func (s *RedisRevocationStore) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	return s.client.Set(ctx, s.keyPrefix+"jti:"+jti, "1", ttl).Err()
}

func (s *RedisRevocationStore) RevokeUser(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	return s.client.Set(ctx, s.keyPrefix+"user:"+userID, strconv.FormatInt(at.UnixNano(), 10), ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if claims.ID != "" {
		n, err := s.client.Exists(ctx, s.keyPrefix+"jti:"+claims.ID).Result()
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}

	raw, err := s.client.Get(ctx, s.keyPrefix+"user:"+claims.Subject).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, err
	}
	return issuedAtOrBefore(claims, revokedAt), nil
}

// MemoryRevocationStore is the single-instance store used without Redis
type MemoryRevocationStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time // jti -> entry expiry
	users  map[string]int64     // user id -> revoked at (unix nanos)
	now    func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		tokens: map[string]time.Time{},
		users:  map[string]int64{},
		now:    time.Now,
	}
}

func (s *MemoryRevocationStore) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[jti] = s.now().Add(ttl)
	return nil
}

func (s *MemoryRevocationStore) RevokeUser(_ context.Context, userID string, at time.Time, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = at.UnixNano()
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, claims *Claims) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expiry, ok := s.tokens[claims.ID]; ok {
		if s.now().Before(expiry) {
			return true, nil
		}
		delete(s.tokens, claims.ID)
	}
	revokedAt, ok := s.users[claims.Subject]
	return ok && issuedAtOrBefore(claims, revokedAt), nil
}

func issuedAtOrBefore(claims *Claims, revokedAtNanos int64) bool {
	if claims.IssuedAt == nil {
		return true
	}
	return claims.IssuedAt.Time.UnixNano() <= revokedAtNanos
}

var (
	_ RevocationStore = (*RedisRevocationStore)(nil)
	_ RevocationStore = (*MemoryRevocationStore)(nil)
)
