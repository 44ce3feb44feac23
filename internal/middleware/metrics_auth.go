package middleware

import (
    "crypto/subtle"

    "github.com/labstack/echo/v4"
    "github.com/labstack/echo/v4/middleware"
)

// MetricsBasicAuth guards /metrics with basic auth when both user and
// password are set, and leaves it open otherwise.
func MetricsBasicAuth(user, password string) echo.MiddlewareFunc {
    if user == "" || password == "" {
        return passThrough
    }
    return middleware.BasicAuth(func(u, p string, c echo.Context) (bool, error) {
        userOK := subtle.ConstantTimeCompare([]byte(u), []byte(user)) == 1
        passOK := subtle.ConstantTimeCompare([]byte(p), []byte(password)) == 1
        return userOK && passOK, nil
    })
}
