package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpiryElapsed(t *testing.T) {
	tests := []struct {
		name    string
		expiry  string
		now     time.Time
		expired bool
	}{
		{"same month is still valid", "2025-06", time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC), false},
		{"first day after expiry month", "2025-06", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), true},
		{"previous year", "2024-12", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"future year", "2026-01", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{"empty expiry never expires", "", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), false},
		{"garbage expiry never expires", "06/25", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expired, ExpiryElapsed(tc.expiry, tc.now))
		})
	}
}

func TestTokenUsable(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	base := Token{
		TokenID: "tok_1",
		Status:  TokenStatusActive,
		Expiry:  "2026-01",
		Visible: true,
	}

	t.Run("active visible unexpired", func(t *testing.T) {
		tok := base
		assert.True(t, tok.Usable(now))
	})

	t.Run("invisible is unusable regardless of validity", func(t *testing.T) {
		tok := base
		tok.Visible = false
		assert.False(t, tok.Usable(now))
	})

	t.Run("expired card is unusable even while ACTIVE", func(t *testing.T) {
		tok := base
		tok.Expiry = "2025-05"
		assert.False(t, tok.Usable(now))
	})

	t.Run("unrecognized status is unusable", func(t *testing.T) {
		tok := base
		tok.Status = "SUSPENDED"
		assert.False(t, tok.Usable(now))
	})

	t.Run("vaulted and approved count as usable", func(t *testing.T) {
		for _, status := range []string{TokenStatusApproved, TokenStatusVaulted} {
			tok := base
			tok.Status = status
			assert.True(t, tok.Usable(now), status)
		}
	})
}
