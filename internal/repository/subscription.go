package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"payvault/internal/model"
)

type SubscriptionRepository interface {
	FindByLegacyID(ctx context.Context, legacyID uint) (*model.Subscription, error)
	FindByProfileID(ctx context.Context, profileID string) (*model.Subscription, error)
	FindByOrderLineItem(ctx context.Context, orderID, lineItemID uint) (*model.Subscription, error)
	FindByID(ctx context.Context, id uint) (*model.Subscription, error)
	ListByOrder(ctx context.Context, orderID uint) ([]*model.Subscription, error)

	Create(ctx context.Context, sub *model.Subscription) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error

	// MarkAwaitingVault moves the customer+order's pending subscriptions to
	// awaiting_vault once a token has been attached but not yet confirmed.
	MarkAwaitingVault(ctx context.Context, customerID, orderID uint) (int64, error)

	// ActivateWithVault attaches the token to every subscription of the
	// customer+order still waiting on one and moves them to active, as a
	// single set-based update. Returns how many rows transitioned.
	ActivateWithVault(ctx context.Context, customerID, orderID uint, tokenID string) (int64, error)

	SetStatus(ctx context.Context, id uint, status model.SubscriptionStatus) error
	SetArchived(ctx context.Context, id uint, archived bool) error
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

func (r *subscriptionRepoImpl) findOne(ctx context.Context, query string, args ...interface{}) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where(query, args...).
		First(&sub).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) FindByLegacyID(ctx context.Context, legacyID uint) (*model.Subscription, error) {
	return r.findOne(ctx, "legacy_subscription_id = ?", legacyID)
}

func (r *subscriptionRepoImpl) FindByProfileID(ctx context.Context, profileID string) (*model.Subscription, error) {
	return r.findOne(ctx, "profile_id = ?", profileID)
}

func (r *subscriptionRepoImpl) FindByOrderLineItem(ctx context.Context, orderID, lineItemID uint) (*model.Subscription, error) {
	return r.findOne(ctx, "order_id = ? AND orders_line_item_id = ?", orderID, lineItemID)
}

func (r *subscriptionRepoImpl) FindByID(ctx context.Context, id uint) (*model.Subscription, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *subscriptionRepoImpl) ListByOrder(ctx context.Context, orderID uint) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&subs).Error

	if err != nil {
		return nil, err
	}

	return subs, nil
}

func (r *subscriptionRepoImpl) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepoImpl) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *subscriptionRepoImpl) MarkAwaitingVault(ctx context.Context, customerID, orderID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("customer_id = ? AND order_id = ? AND status = ?",
			customerID, orderID, model.SubscriptionPending).
		Updates(map[string]interface{}{
			"status":        model.SubscriptionAwaitingVault,
			"last_modified": time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *subscriptionRepoImpl) ActivateWithVault(ctx context.Context, customerID, orderID uint, tokenID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("customer_id = ? AND order_id = ?", customerID, orderID).
		Where("status = ? OR (status = ? AND vault_token_ref = '')",
			model.SubscriptionAwaitingVault, model.SubscriptionPending).
		Updates(map[string]interface{}{
			"vault_token_ref": tokenID,
			"status":          model.SubscriptionActive,
			"last_modified":   time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *subscriptionRepoImpl) SetStatus(ctx context.Context, id uint, status model.SubscriptionStatus) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{
		"status":        status,
		"last_modified": time.Now(),
	})
}

func (r *subscriptionRepoImpl) SetArchived(ctx context.Context, id uint, archived bool) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{
		"archived": archived,
	})
}
