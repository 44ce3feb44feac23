package handler // declare the package name; contains HTTP handlers

import (
    "context"  // bounds the store ping
    "net/http" // net/http provides status codes and response helpers
    "time"     // ping timeout and response timestamp

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
    "go.uber.org/zap"

    "github.com/iliyamo/cinecito/internal/pkg/logger"
)

// Pinger checks a backing store.  *sqlx.DB satisfies it.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler answers load balancer health checks.  With a Pinger it also
// reports the store; the in-memory store has none and is always up.
type HealthHandler struct {
    store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
    return &HealthHandler{store: store}
}

type healthResp struct {
    Status    string `json:"status"`
    Store     string `json:"store"`
    Timestamp string `json:"timestamp"`
}

// Check returns 200 when the store answers and 503 otherwise.
func (h *HealthHandler) Check(c echo.Context) error {
    resp := healthResp{Status: "ok", Store: "ok", Timestamp: time.Now().UTC().Format(time.RFC3339)}
    if h.store == nil {
        resp.Store = "memory"
        return c.JSON(http.StatusOK, resp)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()
    if err := h.store.PingContext(ctx); err != nil {
        logger.Warn("health check: store ping failed", zap.Error(err))
        resp.Status, resp.Store = "degraded", "unavailable"
        return c.JSON(http.StatusServiceUnavailable, resp)
    }
    return c.JSON(http.StatusOK, resp)
}
