package model

import (
	"encoding/json"
	"time"
)

// Statuses the processor reports on a payment token. The column is free
// text; these are the values we treat as usable for charging.
const (
	TokenStatusActive   = "ACTIVE"
	TokenStatusApproved = "APPROVED"
	TokenStatusVaulted  = "VAULTED"
)

// Token is one vaulted payment-method token. Identity is the
// processor-assigned token id; a write for an existing token id is always an
// update, never a second row.
type Token struct {
	ID         uint   `gorm:"primaryKey"`
	TokenID    string `gorm:"size:128;uniqueIndex;not null"`
	CustomerID uint   `gorm:"index;not null"`
	// OrderID is the origin order; zero for tokens added outside a purchase.
	OrderID uint `gorm:"index"`
	Status  string `gorm:"size:32"`

	Brand      string `gorm:"size:32"`
	LastDigits string `gorm:"size:4"`
	CardType   string `gorm:"size:32"`
	// Expiry is the card expiry month as YYYY-MM.
	Expiry         string          `gorm:"size:7"`
	HolderName     string          `gorm:"size:128"`
	BillingAddress Address         `gorm:"serializer:json"`
	RawPayload     json.RawMessage `gorm:"type:json"`

	// Visible controls whether the token is offered at checkout and in the
	// account UI. Distinct from validity.
	Visible bool `gorm:"not null;default:true"`

	ProviderCreateTime *time.Time
	ProviderUpdateTime *time.Time

	DateAdded    time.Time `gorm:"autoCreateTime"`
	LastModified time.Time `gorm:"autoUpdateTime"`
	LastUsed     *time.Time
}

type Address struct {
	Line1       string `json:"line1,omitempty"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// ExpiredAt reports whether the token's expiry month has fully elapsed at
// the given instant. A card expiring 2025-06 is still good through June 2025
// and expired from July 2025. Unparseable or empty expiries are not treated
// as expired; the processor status is the fallback signal for those.
func (t *Token) ExpiredAt(now time.Time) bool {
	return ExpiryElapsed(t.Expiry, now)
}

// Usable reports whether the token can be offered for a new charge.
func (t *Token) Usable(now time.Time) bool {
	if !t.Visible || t.ExpiredAt(now) {
		return false
	}
	switch t.Status {
	case TokenStatusActive, TokenStatusApproved, TokenStatusVaulted:
		return true
	}
	return false
}

// ExpiryElapsed compares a YYYY-MM expiry against now at calendar-month
// granularity, independent of any store.
func ExpiryElapsed(expiry string, now time.Time) bool {
	parsed, err := time.Parse("2006-01", expiry)
	if err != nil {
		return false
	}
	expiryMonths := parsed.Year()*12 + int(parsed.Month())
	nowMonths := now.Year()*12 + int(now.Month())
	return expiryMonths < nowMonths
}
