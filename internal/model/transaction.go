package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TxnTypeAuthorize = "AUTHORIZE"
	TxnTypeCapture   = "CAPTURE"
	TxnTypeRefund    = "REFUND"
)

// Transaction records one processor transaction against a local order. The
// (order_id, txn_id) pair is the idempotency anchor for capture webhooks:
// a capture already recorded here must not re-apply order side effects.
type Transaction struct {
	ID      uint   `gorm:"primaryKey"`
	OrderID uint   `gorm:"not null;uniqueIndex:idx_transactions_order_txn"`
	TxnID   string `gorm:"size:64;not null;uniqueIndex:idx_transactions_order_txn"`
	TxnType string `gorm:"size:16;index;not null"`
	Status  string `gorm:"size:32"`

	Amount       decimal.Decimal `gorm:"type:decimal(15,4)"`
	CurrencyCode string          `gorm:"size:3"`
	FinalCapture bool

	// Applied marks that the order-side effect of this transaction ran to
	// completion. A redelivered event refreshes the row either way, but only
	// an unapplied one retries the effect; skipping on mere row existence
	// would strand the order if the first attempt failed after the insert.
	Applied bool `gorm:"not null;default:false"`

	ProviderTime *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
