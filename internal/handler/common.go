package handler // handler holds the HTTP handlers for showtimes, movies and auth

import (
    "errors"   // errors matches repository sentinels
    "net/http" // status codes
    "strconv"  // path id parsing

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/cinecito/internal/pkg/logger"
    "github.com/iliyamo/cinecito/internal/repository"
    "github.com/iliyamo/cinecito/internal/scheduler"
)

// parseID reads the positive integer :id path parameter.
func parseID(c echo.Context) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// statusOf maps a service error to an HTTP status and the code written in
// the body.  Scheduler errors carry a Kind; catalog errors wrap repository
// sentinels.
func statusOf(err error) (int, string) {
    switch scheduler.KindOf(err) {
    case scheduler.KindSlotConflict:
        return http.StatusConflict, "conflict"
    case scheduler.KindNotFound:
        return http.StatusNotFound, "not_found"
    case scheduler.KindStoreUnavailable:
        return http.StatusServiceUnavailable, "store_unavailable"
    case scheduler.KindQueryFailure:
        return http.StatusInternalServerError, "query_failure"
    }
    switch {
    case errors.Is(err, repository.ErrMovieNotFound), errors.Is(err, repository.ErrShowtimeNotFound):
        return http.StatusNotFound, "not_found"
    case errors.Is(err, repository.ErrUnavailable):
        return http.StatusServiceUnavailable, "store_unavailable"
    }
    return http.StatusInternalServerError, "internal_error"
}

// fail writes err as a JSON error.  Server-side failures are logged and
// their cause is not echoed to the client.
func fail(c echo.Context, err error) error {
    status, code := statusOf(err)
    if status >= 500 {
        logger.Error("request failed",
            zap.String("path", c.Path()),
            zap.String("code", code),
            zap.Error(err),
        )
        return c.JSON(status, ErrorResponse{Error: code})
    }
    return c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}

// badRequest is the reply for malformed input the validator does not see.
func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: msg})
}
