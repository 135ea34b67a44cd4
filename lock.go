package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Locker is a cross-instance, TTL-bounded exclusivity primitive. There is
// no release: correctness depends on the TTL being at least the worst-case
// critical-section duration, which also bounds the damage of an instance
// dying mid-section.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) bool
}

// RedisLock acquires with a single SET NX EX round trip. Any Redis error
// is treated as "not acquired" so a flaky Redis degrades to skipped
// ambient turns rather than duplicated ones.
type RedisLock struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewRedisLock(rdb *redis.Client, log zerolog.Logger) *RedisLock {
	return &RedisLock{rdb: rdb, log: log}
}

func (l *RedisLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := l.rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("lock acquire failed")
		return false
	}
	return ok
}

// noopLock is used when locking is configured off (single-instance
// deployments); every attempt proceeds unconditionally.
type noopLock struct{}

func (noopLock) TryAcquire(context.Context, string, time.Duration) bool { return true }
