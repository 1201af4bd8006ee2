package repository

import (
	"context"

	"gorm.io/gorm"

	"payvault/internal/model"
)

// LegacyRepository reads the deprecated recurring-billing table. Fresh
// installs never have it, so TableExists gates every migrator run.
type LegacyRepository interface {
	TableExists(ctx context.Context) bool
	List(ctx context.Context) ([]*model.LegacyRecurringOrder, error)
}

type legacyRepoImpl struct {
	db *gorm.DB
}

func NewLegacyRepository(db *gorm.DB) LegacyRepository {
	return &legacyRepoImpl{
		db: db,
	}
}

func (r *legacyRepoImpl) TableExists(_ context.Context) bool {
	return r.db.Migrator().HasTable(&model.LegacyRecurringOrder{})
}

func (r *legacyRepoImpl) List(ctx context.Context) ([]*model.LegacyRecurringOrder, error) {
	var rows []*model.LegacyRecurringOrder
	err := r.db.WithContext(ctx).
		Order("subscription_id").
		Find(&rows).Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}
