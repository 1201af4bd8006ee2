package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"payvault/internal/service"
)

type TokenHandler struct {
	tokens *service.TokenService
}

func NewTokenHandler(tokens *service.TokenService) *TokenHandler {
	return &TokenHandler{
		tokens: tokens,
	}
}

func customerIDParam(c echo.Context) (uint, error) {
	raw := c.Param("customerID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}
	return uint(id), nil
}

func (h *TokenHandler) ListTokens(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}
	activeOnly := c.QueryParam("active") == "true"

	tokens, err := h.tokens.ListForCustomer(ctx, customerID, activeOnly)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, tokens)
}

func (h *TokenHandler) DeleteToken(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := customerIDParam(c)
	if err != nil {
		return err
	}
	tokenRef := c.Param("tokenRef")

	if err := h.tokens.Delete(ctx, customerID, tokenRef); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
