package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinecito/internal/config"
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

// dropKeys removes every key under prefix once the test ends.
func dropKeys(t *testing.T, rdb *redis.Client, prefix string) {
	t.Cleanup(func() {
		ctx := context.Background()
		iter := rdb.Scan(ctx, 0, prefix+":*", 100).Iterator()
		for iter.Next(ctx) {
			_ = rdb.Del(ctx, iter.Val()).Err()
		}
	})
}

func TestPayloadCodec(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"data":[]}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, got)
	assert.Equal(t, `{"data":[]}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok, "header length past the end")
}

func TestCaptureWriter_Truncates(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.truncated)
	assert.Equal(t, "abcdef", rec.Body.String(), "client still gets the full body")
}

func TestRedisCache(t *testing.T) {
	rdb := redisClient(t)
	prefix := "test-cache-" + time.Now().Format("150405.000000")
	cfg := config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: prefix, MaxBodyBytes: 1 << 10}
	dropKeys(t, rdb, prefix)

	var hits atomic.Int32
	e := echo.New()
	g := e.Group("/v1/showtimes", NewRedisCache(cfg, rdb, "showtimes"))
	g.GET("", func(c echo.Context) error {
		hits.Add(1)
		return c.JSON(http.StatusOK, echo.Map{"q": c.QueryParam("q")})
	})
	g.POST("", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	g.DELETE("/:id", func(c echo.Context) error { return c.NoContent(http.StatusConflict) })

	get := func(q string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/showtimes?q="+q, nil))
		return rec
	}

	first := get("Dune")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := get("Dune")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.True(t, strings.HasPrefix(second.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON))
	assert.Equal(t, "MISS", get("Alien").Header().Get("X-Cache"), "query is part of the key")
	assert.EqualValues(t, 2, hits.Load())

	// a failed write keeps the cache
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/v1/showtimes/1", nil))
	assert.Equal(t, "HIT", get("Dune").Header().Get("X-Cache"))

	// a successful write drops it
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/showtimes", nil))
	assert.Equal(t, "MISS", get("Dune").Header().Get("X-Cache"))
	assert.EqualValues(t, 3, hits.Load())
	gen, err := rdb.Get(context.Background(), genKey(cfg, "showtimes")).Int64()
	require.NoError(t, err)
	assert.EqualValues(t, 1, gen)
}

// A read that computed its answer before a write committed must not be served
// after the write returns, even though it stores its entry afterwards.
func TestRedisCache_ReadOverlappingWrite(t *testing.T) {
	rdb := redisClient(t)
	prefix := "test-cache-race-" + time.Now().Format("150405.000000")
	cfg := config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: prefix, MaxBodyBytes: 1 << 10}
	dropKeys(t, rdb, prefix)

	var free atomic.Bool
	free.Store(true)
	var overlap atomic.Bool

	e := echo.New()
	g := e.Group("/v1/showtimes", NewRedisCache(cfg, rdb, "showtimes"))
	g.POST("", func(c echo.Context) error {
		free.Store(false)
		return c.NoContent(http.StatusCreated)
	})
	g.GET("", func(c echo.Context) error {
		answer := free.Load()
		if overlap.CompareAndSwap(true, false) {
			// the write completes while this read still holds its old answer
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/showtimes", nil))
			require.Equal(t, http.StatusCreated, rec.Code)
		}
		return c.JSON(http.StatusOK, echo.Map{"free": answer})
	})

	overlap.Store(true)
	stale := httptest.NewRecorder()
	e.ServeHTTP(stale, httptest.NewRequest(http.MethodGet, "/v1/showtimes", nil))
	assert.JSONEq(t, `{"free":true}`, stale.Body.String())

	next := httptest.NewRecorder()
	e.ServeHTTP(next, httptest.NewRequest(http.MethodGet, "/v1/showtimes", nil))
	assert.Equal(t, "MISS", next.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"free":false}`, next.Body.String())
}

func TestTokenBucket(t *testing.T) {
	rdb := redisClient(t)
	prefix := "test-rl-" + time.Now().Format("150405.000000")
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         prefix,
	}
	dropKeys(t, rdb, prefix)

	e := echo.New()
	e.POST("/v1/showtimes", ok, NewTokenBucket(cfg, rdb))

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		e.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/v1/showtimes", nil))
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
}
