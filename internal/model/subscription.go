package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus is the recurring-billing state machine:
//
//	pending -> awaiting_vault -> active
//	pending -> active (token attached immediately)
//	active/awaiting_vault -> suspended
//	any -> cancelled
type SubscriptionStatus string

const (
	SubscriptionPending       SubscriptionStatus = "pending"
	SubscriptionAwaitingVault SubscriptionStatus = "awaiting_vault"
	SubscriptionActive        SubscriptionStatus = "active"
	SubscriptionSuspended     SubscriptionStatus = "suspended"
	SubscriptionCancelled     SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionPending, SubscriptionAwaitingVault, SubscriptionActive,
		SubscriptionSuspended, SubscriptionCancelled:
		return true
	}
	return false
}

// Subscription is one recurring billing agreement tied to an order line
// item. Rows are never deleted; cancellation is a status so billing history
// survives audits.
type Subscription struct {
	ID uint `gorm:"primaryKey"`

	// Provenance identifiers. Zero / empty mean "not supplied"; they drive
	// the idempotent-upsert matching in the ledger service.
	LegacySubscriptionID uint   `gorm:"index"`
	ProfileID            string `gorm:"size:64;index"`

	CustomerID uint `gorm:"index;not null"`
	OrderID    uint `gorm:"not null;uniqueIndex:idx_subscriptions_order_line"`
	// OrdersLineItemID is nullable on purpose: several subscriptions may
	// share "no line item" without tripping the unique index, which a zero
	// sentinel would not allow.
	OrdersLineItemID *uint `gorm:"uniqueIndex:idx_subscriptions_order_line"`
	ProductID        uint

	BillingPeriod      string `gorm:"size:16"`
	BillingFrequency   int
	TotalBillingCycles int

	TrialBillingPeriod    string `gorm:"size:16"`
	TrialBillingFrequency int
	TrialTotalCycles      int

	CurrencyCode  string          `gorm:"size:3"`
	CurrencyValue decimal.Decimal `gorm:"type:decimal(14,6)"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,4)"`
	SetupFee      decimal.Decimal `gorm:"type:decimal(15,4)"`

	// VaultTokenRef references Token.TokenID once a payment method is
	// attached; empty until then.
	VaultTokenRef string `gorm:"size:128;index"`

	Status SubscriptionStatus `gorm:"size:16;not null;default:'pending'"`
	// Archived hides the row from admin listings without touching the
	// billing state machine.
	Archived bool `gorm:"not null;default:false"`

	// Attributes carries plan-specific extensions that don't warrant
	// first-class columns.
	Attributes map[string]string `gorm:"serializer:json"`

	DateAdded    time.Time `gorm:"autoCreateTime"`
	LastModified time.Time `gorm:"autoUpdateTime"`
}
