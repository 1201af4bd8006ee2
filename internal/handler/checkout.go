package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"payvault/internal/dto"
	"payvault/internal/model"
	"payvault/internal/service"
)

// CheckoutHandler exposes the synchronous recording path invoked by the
// payment-processing code after a successful processor API call.
type CheckoutHandler struct {
	checkout *service.CheckoutService
}

func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
	}
}

func (h *CheckoutHandler) RecordPurchase(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RecordPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CustomerID == 0 || req.OrderID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "customer_id and order_id are required")
	}

	items := make([]service.RecurringLineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.RecurringLineItem{
			LineItemID:            item.LineItemID,
			ProductID:             item.ProductID,
			ProfileID:             item.ProfileID,
			BillingPeriod:         item.BillingPeriod,
			BillingFrequency:      item.BillingFrequency,
			TotalBillingCycles:    item.TotalBillingCycles,
			TrialBillingPeriod:    item.TrialBillingPeriod,
			TrialBillingFrequency: item.TrialBillingFrequency,
			TrialTotalCycles:      item.TrialTotalCycles,
			CurrencyCode:          item.CurrencyCode,
			CurrencyValue:         item.CurrencyValue,
			Amount:                item.Amount,
			SetupFee:              item.SetupFee,
			Attributes:            item.Attributes,
		}
	}

	ids, err := h.checkout.RecordPurchase(ctx, req.CustomerID, req.OrderID, items, req.VaultRequested)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.RecordPurchaseResponse{SubscriptionIDs: ids})
}

func (h *CheckoutHandler) CompleteVault(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CompleteVaultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CustomerID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "customer_id is required")
	}

	receipt, err := h.checkout.CompleteVault(ctx, req.CustomerID, req.OrderID, service.CardSource{
		TokenID:    req.TokenID,
		Status:     req.Status,
		Brand:      req.Brand,
		LastDigits: req.LastDigits,
		CardType:   req.CardType,
		Expiry:     req.Expiry,
		HolderName: req.HolderName,
		BillingAddress: model.Address{
			Line1:       req.Billing.Line1,
			Line2:       req.Billing.Line2,
			City:        req.Billing.City,
			State:       req.Billing.State,
			PostalCode:  req.Billing.PostalCode,
			CountryCode: req.Billing.CountryCode,
		},
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, receipt)
}
