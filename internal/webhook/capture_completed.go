package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"payvault/internal/apperr"
	"payvault/internal/model"
	"payvault/internal/notify"
	"payvault/internal/order"
	"payvault/internal/repository"
)

// CaptureCompletedHandler reconciles a completed capture with the local
// order. The transaction row's applied flag is the idempotency anchor: it is
// set only after the order-side effect completed, so a delivery that failed
// mid-flight is retried on redelivery, while a fully applied one still
// refreshes the row but never re-runs the status transition, which could
// drag a shipped order back to paid.
type CaptureCompletedHandler struct {
	orders   order.Gateway
	txns     repository.TransactionRepository
	notifier notify.Notifier
	log      zerolog.Logger
}

func NewCaptureCompletedHandler(
	orders order.Gateway,
	txns repository.TransactionRepository,
	notifier notify.Notifier,
	log zerolog.Logger,
) *CaptureCompletedHandler {
	return &CaptureCompletedHandler{
		orders:   orders,
		txns:     txns,
		notifier: notifier,
		log:      log.With().Str("component", "capture_completed_handler").Logger(),
	}
}

func (h *CaptureCompletedHandler) Handle(ctx context.Context, evt *Event) error {
	var res CaptureResource
	if err := json.Unmarshal(evt.Resource, &res); err != nil {
		return apperr.MalformedEvent("undecodable capture resource: " + err.Error())
	}
	if res.ID == "" {
		return apperr.MalformedEvent("capture id missing")
	}
	processorOrderID := res.SupplementaryData.RelatedIDs.OrderID
	if processorOrderID == "" {
		return apperr.MalformedEvent("related order id missing")
	}

	ord, err := h.orders.FindByProcessorOrderID(ctx, processorOrderID)
	if err != nil {
		return apperr.Transient(err)
	}
	if ord == nil {
		return apperr.NotFound("order for processor id " + processorOrderID)
	}

	// Record (or refresh) the transaction either way, so a redelivery still
	// catches up on status or amount changes the first delivery missed.
	if err := h.txns.Upsert(ctx, h.buildTransaction(ord.ID, &res)); err != nil {
		return apperr.Transient(err)
	}

	applied, err := h.txns.CaptureApplied(ctx, ord.ID, res.ID)
	if err != nil {
		return apperr.Transient(err)
	}
	if applied {
		h.log.Info().
			Uint("order_id", ord.ID).
			Str("capture_id", res.ID).
			Msg("duplicate capture delivery, order status left untouched")
		return nil
	}

	if err := h.applyOrderEffect(ctx, ord.ID, &res); err != nil {
		return err
	}

	// Only a completed effect marks the row; a transient failure above left
	// it unapplied, so the redelivery the 503 requests retries the effect.
	if err := h.txns.MarkApplied(ctx, ord.ID, res.ID); err != nil {
		return apperr.Transient(err)
	}

	return nil
}

func (h *CaptureCompletedHandler) applyOrderEffect(ctx context.Context, orderID uint, res *CaptureResource) error {
	if !res.FinalCapture {
		// More captures to come; leave the order status alone and note the
		// partial payment for the admin view.
		comment := fmt.Sprintf("partial capture %s recorded (%s)", res.ID, formatAmount(res.Amount))
		if err := h.orders.AppendComment(ctx, orderID, comment); err != nil {
			return apperr.Transient(err)
		}
		return nil
	}

	comment := fmt.Sprintf("capture %s completed (%s)", res.ID, formatAmount(res.Amount))
	transitioned, err := h.orders.SetStatus(ctx, orderID, order.StatusPaid, comment)
	if err != nil {
		return apperr.Transient(err)
	}
	if !transitioned {
		h.log.Info().
			Uint("order_id", orderID).
			Str("capture_id", res.ID).
			Msg("order already in paid status, transition skipped")
		return nil
	}

	subject := fmt.Sprintf("Order %d paid", orderID)
	body := fmt.Sprintf("Final capture %s for order %d settled: %s", res.ID, orderID, formatAmount(res.Amount))
	if err := h.notifier.Notify(ctx, subject, body, notify.AudienceMerchant); err != nil {
		// The order mutation already happened; a lost mail never unwinds it.
		h.log.Warn().Err(err).Uint("order_id", orderID).Msg("merchant notification failed")
	}

	return nil
}

func (h *CaptureCompletedHandler) buildTransaction(orderID uint, res *CaptureResource) *model.Transaction {
	txn := &model.Transaction{
		OrderID:      orderID,
		TxnID:        res.ID,
		TxnType:      model.TxnTypeCapture,
		Status:       res.Status,
		FinalCapture: res.FinalCapture,
	}

	if res.Amount != nil {
		txn.CurrencyCode = res.Amount.CurrencyCode
		if value, err := decimal.NewFromString(res.Amount.Value); err == nil {
			txn.Amount = value
		}
	}
	if res.CreateTime != "" {
		if at, err := time.Parse(time.RFC3339, res.CreateTime); err == nil {
			txn.ProviderTime = &at
		}
	}

	return txn
}

func formatAmount(amount *Amount) string {
	if amount == nil {
		return "amount unknown"
	}
	return amount.Value + " " + amount.CurrencyCode
}
