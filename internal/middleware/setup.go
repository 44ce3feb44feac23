package middleware

import (
    "github.com/labstack/echo/v4"
    "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/cinecito/internal/pkg/metrics"
)

// Setup installs the middleware every route shares.  m may be nil.
func Setup(e *echo.Echo, m *metrics.Metrics) {
    e.Use(middleware.RequestID())
    e.Use(RequestLogger())
    e.Use(middleware.Recover())
    if m != nil {
        e.Use(Prometheus(m))
    }
    e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
        AllowOrigins: []string{"*"},
        AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
    }))
}
