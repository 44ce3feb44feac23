package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/cinecito/internal/config"
    "github.com/iliyamo/cinecito/internal/pkg/logger"
)

// captureWriter copies the response body (up to limit bytes) while
// forwarding it to the client.
type captureWriter struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    truncated bool
    limit     int
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.truncated {
        if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
            cw.truncated = true
            cw.buf.Reset()
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// cacheKey is <prefix>:<resource>:g<gen>:<sha1(path?query)>.  It hashes the
// request path, not the route pattern, so each /:id page gets its own entry.
func cacheKey(cfg config.CacheConfig, resource string, gen int64, c echo.Context) string {
    sum := sha1.Sum([]byte(c.Request().URL.Path + "?" + c.Request().URL.RawQuery))
    return fmt.Sprintf("%s:%s:g%d:%x", cfg.Prefix, resource, gen, sum[:])
}

// genKey holds the resource's generation.  Every successful write bumps it,
// which orphans all entries stored under earlier generations, including one
// written late by a read that started before the write.
func genKey(cfg config.CacheConfig, resource string) string {
    return cfg.Prefix + ":" + resource + ":gen"
}

// encodePayload packs [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// NewRedisCache caches 200 GET responses of one resource (e.g. "showtimes")
// and invalidates all of them after any successful write that passes through
// it.  Install it on the resource's route group so reads and writes share it.
// Disabled or without Redis it passes everything through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, resource string) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    gk := genKey(cfg, resource)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                err := next(c)
                if err == nil && c.Response().Status < http.StatusMultipleChoices {
                    bump(c.Request().Context(), rdb, gk)
                }
                return err
            }

            ctx := c.Request().Context()
            // read before the handler runs: a write that lands after this
            // point moves readers to a newer generation
            gen, err := rdb.Get(ctx, gk).Int64()
            if err != nil && err != redis.Nil {
                logger.Warn("cache: generation read failed", zap.String("key", gk), zap.Error(err))
                return next(c)
            }
            key := cacheKey(cfg, resource, gen, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    _, werr := c.Response().Write(body)
                    return werr
                }
            } else if err != redis.Nil {
                logger.Warn("cache: redis get failed", zap.String("key", key), zap.Error(err))
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated {
                return nil
            }

            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
            if err != nil {
                return nil
            }
            sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
            defer cancel()
            if err := rdb.Set(sctx, key, payload, ttl).Err(); err != nil {
                logger.Warn("cache: redis set failed", zap.String("key", key), zap.Error(err))
            }
            return nil
        }
    }
}

// bump advances the generation.  Entries of older generations are never read
// again and expire on their TTL.
func bump(ctx context.Context, rdb *redis.Client, gk string) {
    ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
    defer cancel()
    if err := rdb.Incr(ctx, gk).Err(); err != nil {
        logger.Warn("cache: generation bump failed", zap.String("key", gk), zap.Error(err))
    }
}
