package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
)

// sweepEvery is how often a Claim also drops expired keys
const sweepEvery = 5 * time.Minute

// InMemoryIdempotencyStore holds claims in process memory. Duplicates are
// only suppressed within one instance.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	held      map[string]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{held: map[string]time.Time{}, now: time.Now}
}

func (s *InMemoryIdempotencyStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepEvery {
		for k, until := range s.held {
			if !now.Before(until) {
				delete(s.held, k)
			}
		}
		s.lastSweep = now
	}
	if until, ok := s.held[key]; ok && now.Before(until) {
		return false, nil
	}
	s.held[key] = now.Add(ttl)
	return true, nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.held, key)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryIdempotencyStore) Close() error { return nil }

// Len counts held keys, including expired ones not yet swept
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
