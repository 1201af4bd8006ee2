package service

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"payvault/internal/model"
	"payvault/internal/repository"
)

// openTestDB gives each test its own in-memory sqlite database. The legacy
// table is not created here; migrator tests that need it create it
// explicitly so the table-absent path stays testable.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Token{},
		&model.Subscription{},
		&model.Transaction{},
	))

	return db
}

func newTokenService(t *testing.T, db *gorm.DB) *TokenService {
	t.Helper()
	return NewTokenService(repository.NewTokenRepository(db), zerolog.Nop())
}

func newSubscriptionService(t *testing.T, db *gorm.DB) *SubscriptionService {
	t.Helper()
	return NewSubscriptionService(repository.NewSubscriptionRepository(db), zerolog.Nop())
}
