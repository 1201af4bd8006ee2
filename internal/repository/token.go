package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payvault/internal/model"
)

type TokenRepository interface {
	// Upsert inserts the token or, when a row for the same token id already
	// exists, overwrites its mutable fields. Single atomic statement so two
	// concurrent saves for one token id cannot race into duplicate rows.
	Upsert(ctx context.Context, token *model.Token) (*model.Token, error)
	// UpdateFields overwrites only the given columns and reports how many
	// rows matched the token id.
	UpdateFields(ctx context.Context, tokenID string, fields map[string]interface{}) (int64, error)
	FindByTokenID(ctx context.Context, tokenID string) (*model.Token, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]*model.Token, error)
	// Delete removes the row only when it belongs to the given customer and
	// reports how many rows went away.
	Delete(ctx context.Context, customerID uint, tokenRef string) (int64, error)
	TouchLastUsed(ctx context.Context, tokenID string, at time.Time) error
}

type tokenRepoImpl struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepoImpl{
		db: db,
	}
}

var tokenUpsertColumns = []string{
	"customer_id",
	"order_id",
	"status",
	"brand",
	"last_digits",
	"card_type",
	"expiry",
	"holder_name",
	"billing_address",
	"raw_payload",
	"visible",
	"provider_create_time",
	"provider_update_time",
}

func (r *tokenRepoImpl) Upsert(ctx context.Context, token *model.Token) (*model.Token, error) {
	assignments := clause.AssignmentColumns(tokenUpsertColumns)
	assignments = append(assignments, clause.Assignments(map[string]interface{}{
		"last_modified": time.Now(),
	})...)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}},
		DoUpdates: assignments,
	}).Create(token).Error
	if err != nil {
		return nil, err
	}

	return r.FindByTokenID(ctx, token.TokenID)
}

func (r *tokenRepoImpl) UpdateFields(ctx context.Context, tokenID string, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Token{}).
		Where("token_id = ?", tokenID).
		Updates(fields)

	return result.RowsAffected, result.Error
}

func (r *tokenRepoImpl) FindByTokenID(ctx context.Context, tokenID string) (*model.Token, error) {
	var token model.Token
	err := r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		First(&token).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &token, nil
}

func (r *tokenRepoImpl) ListByCustomer(ctx context.Context, customerID uint) ([]*model.Token, error) {
	var tokens []*model.Token
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("date_added").
		Find(&tokens).Error

	if err != nil {
		return nil, err
	}

	return tokens, nil
}

func (r *tokenRepoImpl) Delete(ctx context.Context, customerID uint, tokenRef string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("customer_id = ? AND token_id = ?", customerID, tokenRef).
		Delete(&model.Token{})

	return result.RowsAffected, result.Error
}

func (r *tokenRepoImpl) TouchLastUsed(ctx context.Context, tokenID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Token{}).
		Where("token_id = ?", tokenID).
		Update("last_used", at).Error
}
