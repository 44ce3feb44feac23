package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/cinecito/internal/pkg/logger"
)

// RequestLogger writes one structured line per request at a level that
// follows the status: info below 400, warn for 4xx, error for 5xx.  Errors
// returned by the chain are rendered here so the logged status is final.
// It must run after echo's RequestID middleware to pick up the id.
func RequestLogger() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            req := c.Request()
            res := c.Response()

            err := next(c)
            if err != nil {
                // let the error handler set the final status before logging
                c.Error(err)
            }

            requestID := req.Header.Get(echo.HeaderXRequestID)
            if requestID == "" {
                requestID = res.Header().Get(echo.HeaderXRequestID)
            }
            fields := []zap.Field{
                zap.String("request_id", requestID),
                zap.String("method", req.Method),
                zap.String("path", req.URL.Path),
                zap.String("route", c.Path()),
                zap.String("query", req.URL.RawQuery),
                zap.Int("status", res.Status),
                zap.Int64("size", res.Size),
                zap.Duration("latency", time.Since(start)),
                zap.String("remote_ip", c.RealIP()),
                zap.String("user", subject(c)),
            }

            if err != nil {
                fields = append(fields, zap.Error(err))
            }
            switch {
            case res.Status >= 500:
                logger.Error("server error", fields...)
            case res.Status >= 400:
                logger.Warn("client error", fields...)
            default:
                logger.Info("request completed", fields...)
            }
            return nil
        }
    }
}
