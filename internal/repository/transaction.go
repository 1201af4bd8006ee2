package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payvault/internal/model"
)

type TransactionRepository interface {
	// CaptureApplied is the idempotency check for capture webhooks: has the
	// order-side effect of this capture already run? A recorded row whose
	// effect never completed reads as not applied, so redelivery retries it.
	CaptureApplied(ctx context.Context, orderID uint, txnID string) (bool, error)
	// MarkApplied flags the (order_id, txn_id) row once its order-side
	// effect completed.
	MarkApplied(ctx context.Context, orderID uint, txnID string) error
	// Upsert records the transaction or refreshes status/amount on the
	// existing (order_id, txn_id) row. Redelivered events land here without
	// creating duplicates, and the applied flag is never reset by a refresh.
	Upsert(ctx context.Context, txn *model.Transaction) error
	ListByOrder(ctx context.Context, orderID uint) ([]*model.Transaction, error)
}

type transactionRepoImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepoImpl{
		db: db,
	}
}

func (r *transactionRepoImpl) CaptureApplied(ctx context.Context, orderID uint, txnID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("order_id = ? AND txn_id = ? AND txn_type = ? AND applied = ?",
			orderID, txnID, model.TxnTypeCapture, true).
		Count(&count).Error

	return count > 0, err
}

func (r *transactionRepoImpl) MarkApplied(ctx context.Context, orderID uint, txnID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("order_id = ? AND txn_id = ?", orderID, txnID).
		Update("applied", true).Error
}

func (r *transactionRepoImpl) Upsert(ctx context.Context, txn *model.Transaction) error {
	assignments := clause.AssignmentColumns([]string{
		"status",
		"amount",
		"currency_code",
		"final_capture",
		"provider_time",
	})
	assignments = append(assignments, clause.Assignments(map[string]interface{}{
		"updated_at": time.Now(),
	})...)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "txn_id"}},
		DoUpdates: assignments,
	}).Create(txn).Error
}

func (r *transactionRepoImpl) ListByOrder(ctx context.Context, orderID uint) ([]*model.Transaction, error) {
	var txns []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&txns).Error

	if err != nil {
		return nil, err
	}

	return txns, nil
}
