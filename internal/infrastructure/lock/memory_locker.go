package lock

import (
	"context"
	"strings"
	"sync"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
)

// MemoryLocker serializes work inside one process. Contention fails fast
// with CONFLICT, matching RedisLocker with a single try.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLocker creates an empty locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

// WithLock runs fn while holding key
func (l *MemoryLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if strings.TrimSpace(key) == "" {
		return shared.NewValidationError("lock key cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	if _, busy := l.held[key]; busy {
		l.mu.Unlock()
		return heldError(key)
	}
	l.held[key] = struct{}{}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}()

	return fn(ctx)
}

var _ shared.Locker = (*MemoryLocker)(nil)
