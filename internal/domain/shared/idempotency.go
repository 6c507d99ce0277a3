package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which deliveries a consumer has taken on.
// A key is claimed before the work starts and released if the work fails,
// so the next redelivery is processed instead of skipped.
type IdempotencyStore interface {
	// Claim reports true when key was free and is now held for ttl
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Close() error
}
