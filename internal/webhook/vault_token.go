package webhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"payvault/internal/apperr"
	"payvault/internal/service"
)

// VaultTokenUpdatedHandler folds a token lifecycle event into the token
// store. Only fields present in the event are written. A token the store
// never saved is a lookup miss, not a failure; it may have been created
// straight in the processor dashboard.
type VaultTokenUpdatedHandler struct {
	tokens *service.TokenService
	subs   *service.SubscriptionService
	log    zerolog.Logger
}

func NewVaultTokenUpdatedHandler(tokens *service.TokenService, subs *service.SubscriptionService, log zerolog.Logger) *VaultTokenUpdatedHandler {
	return &VaultTokenUpdatedHandler{
		tokens: tokens,
		subs:   subs,
		log:    log.With().Str("component", "vault_token_handler").Logger(),
	}
}

func (h *VaultTokenUpdatedHandler) Handle(ctx context.Context, evt *Event) error {
	var res VaultTokenResource
	if err := json.Unmarshal(evt.Resource, &res); err != nil {
		return apperr.MalformedEvent("undecodable vault token resource: " + err.Error())
	}
	if res.ID == "" {
		return apperr.MalformedEvent("token id missing")
	}

	upd := service.TokenUpdate{
		TokenID: res.ID,
		Status:  res.Status,
		Raw:     evt.Resource,
	}
	if card := res.PaymentSource.Card; card != nil {
		upd.Brand = card.Brand
		upd.LastDigits = card.LastDigits
		upd.CardType = card.Type
		upd.Expiry = card.Expiry
		upd.HolderName = card.Name
		upd.BillingAddress = card.BillingAddress
	}
	if res.UpdateTime != "" {
		if at, err := time.Parse(time.RFC3339, res.UpdateTime); err == nil {
			upd.ProviderUpdateTime = &at
		}
	}

	token, err := h.tokens.UpdateFromEvent(ctx, upd)
	if err != nil {
		// NotFound flows to the router, which logs and drops it.
		return err
	}

	// The update confirms the vault entry; pick up any subscriptions of the
	// origin order still waiting on this token.
	if token.OrderID != 0 {
		if _, err := h.subs.ActivateWithVault(ctx, token.CustomerID, token.OrderID, token.TokenID); err != nil {
			return err
		}
	}

	h.log.Debug().Str("token_id", token.TokenID).Msg("vault token refreshed from event")
	return nil
}
