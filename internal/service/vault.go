package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"payvault/internal/apperr"
	"payvault/internal/model"
	"payvault/internal/repository"
)

// CardSource is the parsed payment-source payload from a processor response
// or event. The engine never talks to the processor itself; callers hand it
// this shape already decoded.
type CardSource struct {
	TokenID    string
	Status     string
	Brand      string
	LastDigits string
	CardType   string
	// Expiry is YYYY-MM.
	Expiry         string
	HolderName     string
	BillingAddress model.Address

	ProviderCreateTime *time.Time
	ProviderUpdateTime *time.Time

	// Raw is the provider payload kept for audit and debugging.
	Raw json.RawMessage
}

// TokenUpdate carries a partial update. Nil pointers mean "field absent from
// the event, keep the stored value"; absence is explicit, never a silent
// default.
type TokenUpdate struct {
	TokenID string

	Status         *string
	Brand          *string
	LastDigits     *string
	CardType       *string
	Expiry         *string
	HolderName     *string
	BillingAddress *model.Address

	ProviderUpdateTime *time.Time
	Raw                json.RawMessage
}

// TokenService owns the vault token store.
type TokenService struct {
	tokens repository.TokenRepository
	log    zerolog.Logger
	now    func() time.Time
}

func NewTokenService(tokens repository.TokenRepository, log zerolog.Logger) *TokenService {
	return &TokenService{
		tokens: tokens,
		log:    log.With().Str("component", "token_service").Logger(),
		now:    time.Now,
	}
}

// Save upserts by the processor-assigned token id. Two concurrent saves for
// the same id resolve to one row; the later writer's fields win.
func (s *TokenService) Save(ctx context.Context, customerID, orderID uint, src CardSource, visible bool) (*model.Token, error) {
	tokenID := strings.TrimSpace(src.TokenID)
	if tokenID == "" {
		return nil, apperr.InvalidInput("token id is required")
	}

	token := &model.Token{
		TokenID:            tokenID,
		CustomerID:         customerID,
		OrderID:            orderID,
		Status:             src.Status,
		Brand:              src.Brand,
		LastDigits:         src.LastDigits,
		CardType:           src.CardType,
		Expiry:             src.Expiry,
		HolderName:         src.HolderName,
		BillingAddress:     src.BillingAddress,
		RawPayload:         src.Raw,
		Visible:            visible,
		ProviderCreateTime: src.ProviderCreateTime,
		ProviderUpdateTime: src.ProviderUpdateTime,
	}

	saved, err := s.tokens.Upsert(ctx, token)
	if err != nil {
		return nil, apperr.Transient(err)
	}

	s.log.Debug().Str("token_id", tokenID).Uint("customer_id", customerID).Msg("token saved")
	return saved, nil
}

// UpdateFromEvent overwrites only the fields present in the update. Returns
// apperr.ErrNotFound when no row matches: a webhook may reference a token
// this store never saw, e.g. one created in the processor dashboard.
func (s *TokenService) UpdateFromEvent(ctx context.Context, upd TokenUpdate) (*model.Token, error) {
	if strings.TrimSpace(upd.TokenID) == "" {
		return nil, apperr.InvalidInput("token id is required")
	}

	fields := map[string]interface{}{}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.Brand != nil {
		fields["brand"] = *upd.Brand
	}
	if upd.LastDigits != nil {
		fields["last_digits"] = *upd.LastDigits
	}
	if upd.CardType != nil {
		fields["card_type"] = *upd.CardType
	}
	if upd.Expiry != nil {
		fields["expiry"] = *upd.Expiry
	}
	if upd.HolderName != nil {
		fields["holder_name"] = *upd.HolderName
	}
	if upd.BillingAddress != nil {
		// Map-based updates bypass the model's json serializer.
		encoded, err := json.Marshal(upd.BillingAddress)
		if err != nil {
			return nil, apperr.InvalidInput("unencodable billing address")
		}
		fields["billing_address"] = string(encoded)
	}
	if upd.ProviderUpdateTime != nil {
		fields["provider_update_time"] = *upd.ProviderUpdateTime
	}
	if len(upd.Raw) > 0 {
		fields["raw_payload"] = upd.Raw
	}

	if len(fields) == 0 {
		token, err := s.tokens.FindByTokenID(ctx, upd.TokenID)
		if err != nil {
			return nil, apperr.Transient(err)
		}
		if token == nil {
			return nil, apperr.NotFound("token " + upd.TokenID)
		}
		return token, nil
	}

	fields["last_modified"] = s.now()

	rows, err := s.tokens.UpdateFields(ctx, upd.TokenID, fields)
	if err != nil {
		return nil, apperr.Transient(err)
	}
	if rows == 0 {
		return nil, apperr.NotFound("token " + upd.TokenID)
	}

	token, err := s.tokens.FindByTokenID(ctx, upd.TokenID)
	if err != nil {
		return nil, apperr.Transient(err)
	}
	return token, nil
}

// ListForCustomer returns the customer's tokens. With activeOnly the list is
// reduced to chargeable ones: approved status, visible, expiry month not yet
// elapsed.
func (s *TokenService) ListForCustomer(ctx context.Context, customerID uint, activeOnly bool) ([]*model.Token, error) {
	tokens, err := s.tokens.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperr.Transient(err)
	}
	if !activeOnly {
		return tokens, nil
	}

	now := s.now()
	usable := tokens[:0]
	for _, t := range tokens {
		if t.Usable(now) {
			usable = append(usable, t)
		}
	}
	return usable, nil
}

// Delete removes the customer's token. A token that exists but belongs to
// someone else reads as not found, so the call leaks no existence info.
func (s *TokenService) Delete(ctx context.Context, customerID uint, tokenRef string) error {
	rows, err := s.tokens.Delete(ctx, customerID, tokenRef)
	if err != nil {
		return apperr.Transient(err)
	}
	if rows == 0 {
		return apperr.NotFound("token " + tokenRef)
	}

	s.log.Info().Str("token_id", tokenRef).Uint("customer_id", customerID).Msg("token deleted")
	return nil
}

// MarkUsed stamps last_used after a charge ran against the token.
func (s *TokenService) MarkUsed(ctx context.Context, tokenID string) error {
	if err := s.tokens.TouchLastUsed(ctx, tokenID, s.now()); err != nil {
		return apperr.Transient(err)
	}
	return nil
}
