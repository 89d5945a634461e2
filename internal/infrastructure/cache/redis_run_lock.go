package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	syncapp "github.com/shop/backend/internal/application/sync"
)

// releaseScript deletes the lock key only when the stored token still belongs
// to the caller, so an expired lock re-acquired by another instance is never
// released by the original holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRunLock serializes catalog sync runs across service instances using a
// Redis SET NX lock with a TTL. The TTL bounds how long a crashed instance can
// block the next run.
type RedisRunLock struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisRunLock creates a Redis-backed run lock
func NewRedisRunLock(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisRunLock {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisRunLock{
		client:    client,
		keyPrefix: "sync:lock:",
		ttl:       ttl,
		logger:    logger,
	}
}

// Acquire takes the named lock. It returns a release function on success and
// ErrSyncAlreadyRunning when another instance holds the lock.
func (l *RedisRunLock) Acquire(ctx context.Context, name string) (func(), error) {
	key := l.keyPrefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return nil, syncapp.ErrSyncAlreadyRunning
	}

	release := func() {
		// Release must not inherit the run's context: the lock should be freed
		// even when the run was cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release sync lock",
				zap.String("lock", name),
				zap.Error(err))
		}
	}
	return release, nil
}

// Ensure RedisRunLock implements the application lock port
var _ syncapp.RunLock = (*RedisRunLock)(nil)
