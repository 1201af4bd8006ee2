package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payvault/internal/model"
)

func TestTokenUpsertKeepsOneRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, &model.Token{
		TokenID:    "tok_abc",
		CustomerID: 7,
		OrderID:    100,
		Status:     model.TokenStatusApproved,
		Brand:      "VISA",
		LastDigits: "4242",
		Expiry:     "2027-03",
		Visible:    true,
	})
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := repo.Upsert(ctx, &model.Token{
		TokenID:    "tok_abc",
		CustomerID: 7,
		OrderID:    100,
		Status:     model.TokenStatusActive,
		Brand:      "VISA",
		LastDigits: "4242",
		Expiry:     "2029-03",
		Visible:    true,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Token{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "second save for the same token id must update, not insert")

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, model.TokenStatusActive, second.Status)
	assert.Equal(t, "2029-03", second.Expiry)
}

func TestTokenUpdateFieldsReportsMisses(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	rows, err := repo.UpdateFields(ctx, "tok_unknown", map[string]interface{}{"status": "ACTIVE"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)
}

func TestTokenDeleteChecksOwnership(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, &model.Token{TokenID: "tok_mine", CustomerID: 7, Visible: true})
	require.NoError(t, err)

	rows, err := repo.Delete(ctx, 8, "tok_mine")
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows, "another customer's delete must not touch the row")

	rows, err = repo.Delete(ctx, 7, "tok_mine")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	found, err := repo.FindByTokenID(ctx, "tok_mine")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestTokenTouchLastUsed(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, &model.Token{TokenID: "tok_used", CustomerID: 7, Visible: true})
	require.NoError(t, err)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastUsed(ctx, "tok_used", at))

	found, err := repo.FindByTokenID(ctx, "tok_used")
	require.NoError(t, err)
	require.NotNil(t, found.LastUsed)
	assert.True(t, found.LastUsed.Equal(at))
}
