package middleware

import (
    "github.com/labstack/echo/v4"
)

// subject returns the operator name JWTAuth stored on the context, or
// "anon" on routes without a token.  The rate limiter and the request
// logger key on it.
func subject(c echo.Context) string {
    if s, ok := c.Get("user_id").(string); ok && s != "" {
        return s
    }
    return "anon"
}
