package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/cinecito/internal/pkg/logger"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
    Error   string `json:"error"`
    Message string `json:"message,omitempty"`
}

// HTTPErrorHandler renders errors that handlers return instead of writing
// themselves (bind, validation, auth middleware, unknown routes).  5xx are
// logged.
func HTTPErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }

    code := http.StatusInternalServerError
    message := http.StatusText(code)

    var he *echo.HTTPError
    if errors.As(err, &he) {
        code = he.Code
        if m, ok := he.Message.(string); ok {
            message = m
        } else {
            message = http.StatusText(code)
        }
    }

    if code >= 500 {
        logger.Error("server error",
            zap.Int("status", code),
            zap.String("path", c.Request().URL.Path),
            zap.Error(err),
        )
    }

    var werr error
    if c.Request().Method == http.MethodHead {
        werr = c.NoContent(code)
    } else {
        werr = c.JSON(code, ErrorResponse{Error: errorCode(code), Message: message})
    }
    if werr != nil {
        logger.Error("write error response failed", zap.Error(werr))
    }
}

// errorCode turns a status into the snake_case code used in bodies.
func errorCode(status int) string {
    switch status {
    case http.StatusBadRequest:
        return "bad_request"
    case http.StatusUnauthorized:
        return "unauthorized"
    case http.StatusForbidden:
        return "forbidden"
    case http.StatusNotFound:
        return "not_found"
    case http.StatusMethodNotAllowed:
        return "method_not_allowed"
    case http.StatusConflict:
        return "conflict"
    case http.StatusTooManyRequests:
        return "too_many_requests"
    case http.StatusServiceUnavailable:
        return "store_unavailable"
    }
    if status >= 500 {
        return "internal_error"
    }
    return "error"
}
