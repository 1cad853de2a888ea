// Package lock provides short-lived distributed locks on top of redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/tripsplit/tripsplit-backend/logger"
)

// ErrNotAcquired is returned when another holder owns the lock.
var ErrNotAcquired = errors.New("lock not acquired")

// ReleaseFunc releases a held lock.
type ReleaseFunc func(ctx context.Context)

// Locker acquires named locks.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// RedisLocker implements Locker with bsm/redislock. Acquire does not retry.
type RedisLocker struct {
	client *redislock.Client
	prefix string
}

func NewRedisLocker(client redislock.RedisClient, prefix string) *RedisLocker {
	return &RedisLocker{client: redislock.New(client), prefix: prefix}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	fullKey := l.prefix + key
	lk, err := l.client.Obtain(ctx, fullKey, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotAcquired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", fullKey, err)
	}

	return func(ctx context.Context) {
		if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.GetLogger().Warnw("Failed to release lock", "key", fullKey, "error", err)
		}
	}, nil
}
