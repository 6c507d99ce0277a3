package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client token buckets
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	// IdleTTL drops buckets not used for this long
	IdleTTL time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key.
// Authenticated callers are keyed by user id, everyone else by client IP.
type RateLimiter struct {
	cfg      RateLimitConfig
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// NewRateLimiter builds a limiter. Call Cleanup in a goroutine to evict idle buckets.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = int(math.Max(1, math.Ceil(cfg.RequestsPerSecond)))
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		cfg:      cfg,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Cleanup evicts idle buckets every interval until ctx is done
func (rl *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.cfg.IdleTTL)
	evicted := 0
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			evicted++
		}
	}
	return evicted
}

// Middleware rejects requests over the limit with 429 and a Retry-After hint
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if caller, ok := GetCaller(c); ok {
			key = "user:" + caller.UserID.String()
		}

		limiter := rl.limiterFor(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Burst))
		if !limiter.Allow() {
			retry := time.Duration(float64(time.Second) / math.Max(rl.cfg.RequestsPerSecond, 0.001))
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			c.Header("X-RateLimit-Remaining", "0")
			abortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, "rate limit exceeded")
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Next()
	}
}
