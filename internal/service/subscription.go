package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"payvault/internal/apperr"
	"payvault/internal/model"
	"payvault/internal/repository"
)

// SubscriptionData is the input to LogSubscription. Zero-valued provenance
// fields mean "not supplied"; which ones are set depends on the origin path
// (legacy import, fresh checkout, processor profile creation).
type SubscriptionData struct {
	LegacySubscriptionID uint
	ProfileID            string

	CustomerID       uint
	OrderID          uint
	OrdersLineItemID *uint
	ProductID        uint

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

	// DateAdded preserves the original creation time for migrated rows;
	// zero means "now".
	DateAdded time.Time
}

// SubscriptionService owns the subscription ledger and its state machine.
type SubscriptionService struct {
	subs repository.SubscriptionRepository
	log  zerolog.Logger
}

func NewSubscriptionService(subs repository.SubscriptionRepository, log zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{
		subs: subs,
		log:  log.With().Str("component", "subscription_service").Logger(),
	}
}

// LogSubscription is the idempotent upsert for the ledger. Identity match
// precedence: legacy subscription id, then profile id, then order +
// line-item reference. No match inserts a new pending row. A duplicate-key
// conflict on insert means a concurrent caller won the race; the call then
// resolves to the update path instead of failing.
func (s *SubscriptionService) LogSubscription(ctx context.Context, data SubscriptionData) (uint, error) {
	existing, err := s.match(ctx, data)
	if err != nil {
		return 0, apperr.Transient(err)
	}

	if existing != nil {
		if err := s.subs.UpdateFields(ctx, existing.ID, s.updateFieldsFor(existing, data)); err != nil {
			return 0, apperr.Transient(err)
		}
		return existing.ID, nil
	}

	sub := &model.Subscription{
		LegacySubscriptionID:  data.LegacySubscriptionID,
		ProfileID:             data.ProfileID,
		CustomerID:            data.CustomerID,
		OrderID:               data.OrderID,
		OrdersLineItemID:      data.OrdersLineItemID,
		ProductID:             data.ProductID,
		BillingPeriod:         data.BillingPeriod,
		BillingFrequency:      data.BillingFrequency,
		TotalBillingCycles:    data.TotalBillingCycles,
		TrialBillingPeriod:    data.TrialBillingPeriod,
		TrialBillingFrequency: data.TrialBillingFrequency,
		TrialTotalCycles:      data.TrialTotalCycles,
		CurrencyCode:          data.CurrencyCode,
		CurrencyValue:         data.CurrencyValue,
		Amount:                data.Amount,
		SetupFee:              data.SetupFee,
		Status:                model.SubscriptionPending,
		Attributes:            data.Attributes,
		DateAdded:             data.DateAdded,
	}

	err = s.subs.Create(ctx, sub)
	if err == nil {
		s.log.Info().Uint("subscription_id", sub.ID).Uint("order_id", data.OrderID).Msg("subscription logged")
		return sub.ID, nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		winner, matchErr := s.match(ctx, data)
		if matchErr != nil {
			return 0, apperr.Transient(matchErr)
		}
		if winner != nil {
			if updErr := s.subs.UpdateFields(ctx, winner.ID, s.updateFieldsFor(winner, data)); updErr != nil {
				return 0, apperr.Transient(updErr)
			}
			return winner.ID, nil
		}
	}

	return 0, apperr.Transient(err)
}

func (s *SubscriptionService) match(ctx context.Context, data SubscriptionData) (*model.Subscription, error) {
	if data.LegacySubscriptionID != 0 {
		sub, err := s.subs.FindByLegacyID(ctx, data.LegacySubscriptionID)
		if sub != nil || err != nil {
			return sub, err
		}
	}
	if data.ProfileID != "" {
		sub, err := s.subs.FindByProfileID(ctx, data.ProfileID)
		if sub != nil || err != nil {
			return sub, err
		}
	}
	if data.OrdersLineItemID != nil && *data.OrdersLineItemID != 0 {
		sub, err := s.subs.FindByOrderLineItem(ctx, data.OrderID, *data.OrdersLineItemID)
		if sub != nil || err != nil {
			return sub, err
		}
	}
	return nil, nil
}

// updateFieldsFor refreshes plan terms and provenance on a matched row. The
// state machine columns (status, vault_token_ref, archived) are never
// touched here; they belong to the transition operations.
func (s *SubscriptionService) updateFieldsFor(existing *model.Subscription, data SubscriptionData) map[string]interface{} {
	fields := map[string]interface{}{
		"product_id":              data.ProductID,
		"billing_period":          data.BillingPeriod,
		"billing_frequency":       data.BillingFrequency,
		"total_billing_cycles":    data.TotalBillingCycles,
		"trial_billing_period":    data.TrialBillingPeriod,
		"trial_billing_frequency": data.TrialBillingFrequency,
		"trial_total_cycles":      data.TrialTotalCycles,
		"currency_code":           data.CurrencyCode,
		"currency_value":          data.CurrencyValue,
		"amount":                  data.Amount,
		"setup_fee":               data.SetupFee,
		"last_modified":           time.Now(),
	}

	if data.LegacySubscriptionID != 0 {
		fields["legacy_subscription_id"] = data.LegacySubscriptionID
	}
	if data.ProfileID != "" {
		fields["profile_id"] = data.ProfileID
	}
	if data.Attributes != nil {
		// Map-based updates bypass the model's json serializer.
		if encoded, err := json.Marshal(data.Attributes); err == nil {
			fields["attributes"] = string(encoded)
		}
	}
	if existing.OrdersLineItemID == nil && data.OrdersLineItemID != nil {
		fields["orders_line_item_id"] = *data.OrdersLineItemID
	}

	return fields
}

// MarkAwaitingVault transitions the customer+order's pending subscriptions
// once a token has been attached but the vault has not confirmed it.
func (s *SubscriptionService) MarkAwaitingVault(ctx context.Context, customerID, orderID uint) (int64, error) {
	rows, err := s.subs.MarkAwaitingVault(ctx, customerID, orderID)
	if err != nil {
		return 0, apperr.Transient(err)
	}
	return rows, nil
}

// ActivateWithVault attaches the vault token to every eligible subscription
// for the customer+order and activates them in one set-based update. Zero
// eligible rows is a no-op, never an error: one order can carry several
// subscription line items sharing the newly-vaulted token, or none at all.
func (s *SubscriptionService) ActivateWithVault(ctx context.Context, customerID, orderID uint, tokenID string) (int64, error) {
	rows, err := s.subs.ActivateWithVault(ctx, customerID, orderID, tokenID)
	if err != nil {
		return 0, apperr.Transient(err)
	}
	if rows > 0 {
		s.log.Info().
			Uint("customer_id", customerID).
			Uint("order_id", orderID).
			Str("token_id", tokenID).
			Int64("activated", rows).
			Msg("subscriptions activated")
	}
	return rows, nil
}

// Suspend is the merchant/customer action pausing billing. Only active and
// awaiting_vault subscriptions can be suspended.
func (s *SubscriptionService) Suspend(ctx context.Context, id uint) error {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return apperr.Transient(err)
	}
	if sub == nil {
		return apperr.NotFound("subscription")
	}
	if sub.Status != model.SubscriptionActive && sub.Status != model.SubscriptionAwaitingVault {
		return apperr.InvalidInput("subscription is not active")
	}

	if err := s.subs.SetStatus(ctx, id, model.SubscriptionSuspended); err != nil {
		return apperr.Transient(err)
	}
	return nil
}

// Cancel moves the subscription to cancelled from any state. The row stays;
// cancellation is a status, not a deletion.
func (s *SubscriptionService) Cancel(ctx context.Context, id uint) error {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return apperr.Transient(err)
	}
	if sub == nil {
		return apperr.NotFound("subscription")
	}

	if err := s.subs.SetStatus(ctx, id, model.SubscriptionCancelled); err != nil {
		return apperr.Transient(err)
	}
	return nil
}

// Archive hides or unhides the row in admin listings without touching the
// billing state machine.
func (s *SubscriptionService) Archive(ctx context.Context, id uint, archived bool) error {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return apperr.Transient(err)
	}
	if sub == nil {
		return apperr.NotFound("subscription")
	}

	if err := s.subs.SetArchived(ctx, id, archived); err != nil {
		return apperr.Transient(err)
	}
	return nil
}
