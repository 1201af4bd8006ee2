package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"payvault/internal/service"
)

type SubscriptionHandler struct {
	subs *service.SubscriptionService
}

func NewSubscriptionHandler(subs *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subs: subs,
	}
}

func subscriptionIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid subscription id")
	}
	return uint(id), nil
}

func (h *SubscriptionHandler) Suspend(c echo.Context) error {
	id, err := subscriptionIDParam(c)
	if err != nil {
		return err
	}

	if err := h.subs.Suspend(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "suspended"})
}

func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	id, err := subscriptionIDParam(c)
	if err != nil {
		return err
	}

	if err := h.subs.Cancel(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *SubscriptionHandler) Archive(c echo.Context) error {
	id, err := subscriptionIDParam(c)
	if err != nil {
		return err
	}

	archived := c.QueryParam("archived") != "false"
	if err := h.subs.Archive(c.Request().Context(), id, archived); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"archived": archived})
}
