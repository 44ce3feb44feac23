package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/cinecito/internal/pkg/logger"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLocker(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()

	t.Run("held key is not acquired again", func(t *testing.T) {
		l := NewRedisLocker(client, 5*time.Second).WithRetry(1, time.Millisecond)
		release, err := l.Acquire(ctx, "test-slot-1")
		require.NoError(t, err)
		defer release()

		_, err = l.Acquire(ctx, "test-slot-1")
		assert.ErrorIs(t, err, ErrNotAcquired)
	})

	t.Run("released key can be acquired again", func(t *testing.T) {
		l := NewRedisLocker(client, 5*time.Second).WithRetry(1, time.Millisecond)
		release, err := l.Acquire(ctx, "test-slot-2")
		require.NoError(t, err)
		release()

		release2, err := l.Acquire(ctx, "test-slot-2")
		require.NoError(t, err)
		release2()
	})

	t.Run("retry waits for the holder", func(t *testing.T) {
		l := NewRedisLocker(client, 5*time.Second).WithRetry(20, 25*time.Millisecond)
		release, err := l.Acquire(ctx, "test-slot-3")
		require.NoError(t, err)
		go func() {
			time.Sleep(100 * time.Millisecond)
			release()
		}()

		release2, err := l.Acquire(ctx, "test-slot-3")
		require.NoError(t, err)
		release2()
	})

	t.Run("release does not delete someone else's lock", func(t *testing.T) {
		l := NewRedisLocker(client, 5*time.Second)
		err := l.release(ctx, "lock:test-slot-4", "not-the-owner")
		assert.ErrorIs(t, err, ErrNotOwned)
	})

	t.Run("expired lock is reported on release", func(t *testing.T) {
		prev := logger.Get()
		t.Cleanup(func() { logger.Set(prev) })
		core, logs := observer.New(zapcore.DebugLevel)
		logger.Set(zap.New(core))

		l := NewRedisLocker(client, 50*time.Millisecond)
		release, err := l.Acquire(ctx, "test-slot-5")
		require.NoError(t, err)
		time.Sleep(120 * time.Millisecond)

		// someone else holds the key now; release must leave it alone
		other, err := NewRedisLocker(client, 5*time.Second).Acquire(ctx, "test-slot-5")
		require.NoError(t, err)
		defer other()
		release()

		entries := logs.FilterMessage("slot lock expired before release").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "lock:test-slot-5", entries[0].ContextMap()["key"])
		held, err := client.Exists(ctx, "lock:test-slot-5").Result()
		require.NoError(t, err)
		assert.EqualValues(t, 1, held)
	})
}
