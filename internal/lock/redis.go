package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/cinecito/internal/pkg/logger"
)

var (
	ErrNotAcquired = errors.New("lock not acquired")
	ErrNotOwned    = errors.New("lock not owned")
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker takes slot locks with SET NX PX.  A lock expires after TTL so
// a crashed holder cannot block a slot forever.
type RedisLocker struct {
	client     *redis.Client
	ttl        time.Duration
	maxRetries int
	retryDelay time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, maxRetries: 50, retryDelay: 20 * time.Millisecond}
}

// WithRetry sets how many times Acquire polls a busy key and how long it
// waits between polls.
func (l *RedisLocker) WithRetry(maxRetries int, delay time.Duration) *RedisLocker {
	l.maxRetries = maxRetries
	l.retryDelay = delay
	return l
}

// Acquire polls until the key is free, retries run out, or ctx is done.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:" + key
	token := uuid.New().String()

	for i := 0; ; i++ {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", lockKey, err)
		}
		if ok {
			return func() {
				// a short detached context so release still runs after the
				// request context is cancelled
				rctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				switch err := l.release(rctx, lockKey, token); {
				case errors.Is(err, ErrNotOwned):
					// the TTL ran out while the slot was being written; only the
					// store's unique index guarded the tail of that section
					logger.Warn("slot lock expired before release", zap.String("key", lockKey), zap.Duration("ttl", l.ttl))
				case err != nil:
					logger.Warn("slot lock release failed", zap.String("key", lockKey), zap.Error(err))
				}
			}, nil
		}
		if i+1 >= l.maxRetries {
			return nil, ErrNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *RedisLocker) release(ctx context.Context, lockKey, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Int()
	if err != nil {
		return fmt.Errorf("release %s: %w", lockKey, err)
	}
	if n == 0 {
		return ErrNotOwned
	}
	return nil
}
