package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"payvault/internal/apperr"
)

// httpError maps the engine's error taxonomy onto HTTP statuses for the
// direct API surface. Webhook delivery has its own mapping in the webhook
// handler.
func httpError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case apperr.IsTransient(err):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		return err
	}
}
