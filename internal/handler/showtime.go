package handler

import (
    "context"  // bounds store calls
    "net/http" // status codes
    "time"     // request timeouts

    "github.com/labstack/echo/v4"
)

// storeTimeout bounds every service call made on behalf of a request.
const storeTimeout = 5 * time.Second

// ShowtimeHandler exposes the scheduler over HTTP.
type ShowtimeHandler struct {
    svc ShowtimeService
}

func NewShowtimeHandler(svc ShowtimeService) *ShowtimeHandler {
    if svc == nil {
        panic("nil service passed to NewShowtimeHandler")
    }
    return &ShowtimeHandler{svc: svc}
}

// ----- DTOs -----

// max lengths follow the showtimes columns
type scheduleReq struct {
    Name string `json:"name" validate:"required,max=255"`
    Room string `json:"room" validate:"required,max=100"`
    Time string `json:"time" validate:"required,max=64"`
}

type rescheduleReq struct {
    Room string `json:"room" validate:"required,max=100"`
    Time string `json:"time" validate:"required,max=64"`
}

type availabilityResp struct {
    Room      string `json:"room"`
    Time      string `json:"time"`
    Available bool   `json:"available"`
}

// List returns showtimes whose name contains ?q= (all when absent).
func (h *ShowtimeHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
    defer cancel()

    items, err := h.svc.List(ctx, c.QueryParam("q"))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"data": items, "total": len(items)})
}

func (h *ShowtimeHandler) Get(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return badRequest(c, "invalid id")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
    defer cancel()

    st, err := h.svc.Get(ctx, id)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, st)
}

// Availability answers whether ?room=&time= is free.
func (h *ShowtimeHandler) Availability(c echo.Context) error {
    room, at := c.QueryParam("room"), c.QueryParam("time")
    if room == "" || at == "" {
        return badRequest(c, "room and time are required")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
    defer cancel()

    free, err := h.svc.IsAvailable(ctx, room, at)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, availabilityResp{Room: room, Time: at, Available: free})
}

// Schedule creates a showtime; 409 when the slot is held.
func (h *ShowtimeHandler) Schedule(c echo.Context) error {
    var req scheduleReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
    defer cancel()

    st, err := h.svc.Schedule(ctx, req.Name, req.Room, req.Time)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, st)
}

// Reschedule moves showtime :id to a new slot.
func (h *ShowtimeHandler) Reschedule(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return badRequest(c, "invalid id")
    }
    var req rescheduleReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
    defer cancel()

    st, err := h.svc.Reschedule(ctx, id, req.Room, req.Time)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, st)
}

func (h *ShowtimeHandler) Cancel(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return badRequest(c, "invalid id")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
    defer cancel()

    if err := h.svc.Cancel(ctx, id); err != nil {
        return fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
