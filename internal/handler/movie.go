package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
)

// MovieHandler exposes the catalog over HTTP.
type MovieHandler struct {
    svc MovieService
}

func NewMovieHandler(svc MovieService) *MovieHandler {
    if svc == nil {
        panic("nil service passed to NewMovieHandler")
    }
    return &MovieHandler{svc: svc}
}

// movieReq serves both create and update; update overwrites every field.
type movieReq struct {
    Name     string `json:"name" validate:"required,max=255"`
    Synopsis string `json:"synopsis"`
    Genre    string `json:"genre" validate:"max=100"`
}

func (h *MovieHandler) Search(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
    defer cancel()

    items, err := h.svc.Search(ctx, c.QueryParam("q"))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"data": items, "total": len(items)})
}

func (h *MovieHandler) Get(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return badRequest(c, "invalid id")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
    defer cancel()

    m, err := h.svc.Get(ctx, id)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Create(c echo.Context) error {
    var req movieReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
    defer cancel()

    m, err := h.svc.Create(ctx, req.Name, req.Synopsis, req.Genre)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, m)
}

func (h *MovieHandler) Update(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return badRequest(c, "invalid id")
    }
    var req movieReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
    defer cancel()

    m, err := h.svc.Update(ctx, id, req.Name, req.Synopsis, req.Genre)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Delete(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return badRequest(c, "invalid id")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
    defer cancel()

    if err := h.svc.Delete(ctx, id); err != nil {
        return fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
