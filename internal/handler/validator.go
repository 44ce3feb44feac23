package handler

import (
    "net/http"

    "github.com/go-playground/validator/v10" // struct tag validation for request bodies
    "github.com/labstack/echo/v4"
)

// CustomValidator plugs go-playground/validator into echo's c.Validate.
type CustomValidator struct {
    validator *validator.Validate
}

func NewValidator() *CustomValidator {
    return &CustomValidator{validator: validator.New()}
}

// Validate reports the first failing field as a 400.
func (cv *CustomValidator) Validate(i interface{}) error {
    if err := cv.validator.Struct(i); err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, err.Error())
    }
    return nil
}
