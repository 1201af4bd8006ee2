package order

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type gormGateway struct {
	db *gorm.DB
}

func NewGormGateway(db *gorm.DB) Gateway {
	return &gormGateway{
		db: db,
	}
}

func (g *gormGateway) FindByProcessorOrderID(ctx context.Context, processorOrderID string) (*Order, error) {
	var ord Order
	err := g.db.WithContext(ctx).
		Where("processor_order_id = ?", processorOrderID).
		First(&ord).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &ord, nil
}

func (g *gormGateway) SetStatus(ctx context.Context, orderID uint, status, comment string) (bool, error) {
	var transitioned bool

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update so a redelivered event racing another delivery
		// still applies the transition at most once.
		result := tx.Model(&Order{}).
			Where("id = ? AND status <> ?", orderID, status).
			Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		transitioned = true
		return tx.Create(&StatusHistory{
			OrderID: orderID,
			Status:  status,
			Comment: comment,
		}).Error
	})

	return transitioned, err
}

func (g *gormGateway) AppendComment(ctx context.Context, orderID uint, comment string) error {
	return g.db.WithContext(ctx).Create(&StatusHistory{
		OrderID: orderID,
		Comment: comment,
	}).Error
}
