package util

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyStore is the subset of redis commands the deduper and retry counter use.
// *redis.Client satisfies it.
type KeyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}
