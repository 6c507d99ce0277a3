// Package lock provides shared.Locker implementations used to serialize
// admission decisions per offer.
package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/logger"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "tradewave:lock:"

// Options tunes lock acquisition
type Options struct {
	// Expiry bounds how long a crashed holder blocks others
	Expiry time.Duration
	// Tries is the number of acquisition attempts before reporting CONFLICT
	Tries int
	// RetryDelay separates attempts
	RetryDelay time.Duration
}

// DefaultOptions fails fast: one attempt, ten second expiry
func DefaultOptions() Options {
	return Options{Expiry: 10 * time.Second, Tries: 1, RetryDelay: 50 * time.Millisecond}
}

// RedisLocker is a redsync-backed distributed Locker
type RedisLocker struct {
	rs        *redsync.Redsync
	opts      Options
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisLocker creates a Locker on top of client
func NewRedisLocker(client redis.UniversalClient, opts Options, log *zap.Logger) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client is required for the distributed locker")
	}
	if opts.Expiry <= 0 {
		return nil, errors.New("lock expiry must be greater than 0")
	}
	if opts.Tries < 1 {
		opts.Tries = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLocker{
		rs:        redsync.New(goredis.NewPool(client)),
		opts:      opts,
		keyPrefix: defaultKeyPrefix,
		logger:    log.Named("locker"),
	}, nil
}

// WithLock runs fn while holding key. A lock held elsewhere yields CONFLICT.
func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if strings.TrimSpace(key) == "" {
		return shared.NewValidationError("lock key cannot be empty")
	}
	log := logger.For(ctx, l.logger).With(zap.String("lock_key", key))

	mutex := l.rs.NewMutex(
		l.keyPrefix+key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if isContention(err) {
			log.Debug("lock held by another process")
			return heldError(key)
		}
		return shared.WrapInternal(fmt.Sprintf("failed to acquire lock %s", key), err)
	}
	log.Debug("lock acquired")

	defer func() {
		// The caller's context may already be cancelled; release regardless.
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if ok, err := mutex.UnlockContext(unlockCtx); !ok || err != nil {
			log.Warn("failed to release lock", zap.Bool("unlock_ok", ok), zap.Error(err))
		}
	}()

	return fn(ctx)
}

func isContention(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	var taken *redsync.ErrTaken
	if errors.As(err, &taken) {
		return true
	}
	return strings.Contains(err.Error(), "lock already taken")
}

func heldError(key string) *shared.DomainError {
	return shared.NewDomainError(shared.CodeConflict, "operation already in progress").
		WithDetail("lockKey", key)
}

var _ shared.Locker = (*RedisLocker)(nil)
