package shared

import (
	"context"
	"time"
)

// RetryPolicy bounds optimistic-locking retries of a read-modify-write loop
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy retries three times starting at 20ms
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 20 * time.Millisecond}
}

// RetryOnConcurrentModification runs fn and reruns it while it fails with
// CONCURRENT_MODIFICATION, doubling the delay each attempt. fn must reload
// the aggregate it modifies on every call.
func RetryOnConcurrentModification(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	delay := p.BaseDelay
	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if err = fn(ctx); err == nil || !IsConcurrentModification(err) {
			return err
		}
		if attempt == p.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
