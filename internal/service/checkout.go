package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RecurringLineItem describes one subscription line item of an order as the
// checkout path sees it after a successful processor call.
type RecurringLineItem struct {
	// LineItemID is zero when the storefront supplied no line-item
	// reference; the ledger stores that as absent, not as zero.
	LineItemID uint
	ProductID  uint
	ProfileID  string

	BillingPeriod      string
	BillingFrequency   int
	TotalBillingCycles int

	TrialBillingPeriod    string
	TrialBillingFrequency int
	TrialTotalCycles      int

	CurrencyCode  string
	CurrencyValue decimal.Decimal
	Amount        decimal.Decimal
	SetupFee      decimal.Decimal

	Attributes map[string]string
}

type CheckoutReceipt struct {
	ReceiptID       string `json:"receipt_id"`
	TokenID         string `json:"token_id"`
	SubscriptionIDs []uint `json:"subscription_ids,omitempty"`
	Activated       int64  `json:"activated"`
}

// CheckoutService is the synchronous path that runs after the external API
// client reports a successful processor call. It converges on the same two
// ledgers the webhook path writes, so everything it does is an idempotent
// upsert or a set-based transition.
type CheckoutService struct {
	tokens *TokenService
	subs   *SubscriptionService
	log    zerolog.Logger
}

func NewCheckoutService(tokens *TokenService, subs *SubscriptionService, log zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		tokens: tokens,
		subs:   subs,
		log:    log.With().Str("component", "checkout_service").Logger(),
	}
}

// RecordPurchase logs the order's recurring line items as pending
// subscriptions. With vaultRequested the rows move straight to
// awaiting_vault: the buyer approved storing a payment method and the vault
// confirmation (API response or webhook, whichever lands first) will
// activate them.
func (s *CheckoutService) RecordPurchase(ctx context.Context, customerID, orderID uint, items []RecurringLineItem, vaultRequested bool) ([]uint, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		data := SubscriptionData{
			ProfileID:             item.ProfileID,
			CustomerID:            customerID,
			OrderID:               orderID,
			ProductID:             item.ProductID,
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
		if item.LineItemID != 0 {
			lineItem := item.LineItemID
			data.OrdersLineItemID = &lineItem
		}

		id, err := s.subs.LogSubscription(ctx, data)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}

	if vaultRequested {
		if _, err := s.subs.MarkAwaitingVault(ctx, customerID, orderID); err != nil {
			return ids, err
		}
	}

	return ids, nil
}

// CompleteVault records the vaulted payment method from a successful
// processor response and activates every subscription of the order waiting
// on it. Replaying the same response is harmless: the token save is an
// upsert and activation only touches rows still awaiting a token.
func (s *CheckoutService) CompleteVault(ctx context.Context, customerID, orderID uint, src CardSource) (*CheckoutReceipt, error) {
	token, err := s.tokens.Save(ctx, customerID, orderID, src, true)
	if err != nil {
		return nil, err
	}

	activated, err := s.subs.ActivateWithVault(ctx, customerID, orderID, token.TokenID)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.MarkUsed(ctx, token.TokenID); err != nil {
		// last_used is bookkeeping; the payment already succeeded.
		s.log.Warn().Err(err).Str("token_id", token.TokenID).Msg("could not stamp last_used")
	}

	return &CheckoutReceipt{
		ReceiptID: uuid.NewString(),
		TokenID:   token.TokenID,
		Activated: activated,
	}, nil
}
