package shared

import "context"

// Locker serializes work on a named resource across service instances.
// WithLock returns CONFLICT when the lock is held elsewhere.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
