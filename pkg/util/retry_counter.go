package util

import (
	"context"
	"fmt"
	"time"
)

// RetryCounter counts redeliveries of one message across consumer restarts.
type RetryCounter struct {
	store KeyStore
	ttl   time.Duration
}

func NewRetryCounter(store KeyStore, ttl time.Duration) *RetryCounter {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RetryCounter{store: store, ttl: ttl}
}

// IncrementAndGet increments the retry count for key and returns the new count
func (r *RetryCounter) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	count, err := r.store.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	// 首次计数时设置过期时间
	if count == 1 {
		r.store.Expire(ctx, key, r.ttl)
	}
	return count, nil
}

// Reset resets the retry count
func (r *RetryCounter) Reset(ctx context.Context, key string) error {
	return r.store.Del(ctx, key).Err()
}

// FormatRetryKey formats a retry key for a handler and message id
func FormatRetryKey(handler, id string) string {
	return fmt.Sprintf("retry:%s:%s", handler, id)
}
