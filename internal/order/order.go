// Package order is the boundary to the order/payment subsystem. The
// reconciliation engine only ever asks two things of it: look up the local
// order behind a processor transaction, and append a status-history note with
// an optional status transition. It never constructs or validates orders.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusPaid       = "paid"
	StatusShipped    = "shipped"
)

type Order struct {
	ID         uint `gorm:"primaryKey"`
	CustomerID uint `gorm:"index;not null"`
	// ProcessorOrderID is the processor-side id the engine receives in
	// capture events.
	ProcessorOrderID string          `gorm:"size:64;uniqueIndex;not null"`
	Status           string          `gorm:"size:32;index;not null"`
	Total            decimal.Decimal `gorm:"type:decimal(15,4)"`
	CurrencyCode     string          `gorm:"size:3"`
	CreatedAt        time.Time       `gorm:"autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime"`
}

type StatusHistory struct {
	ID      uint   `gorm:"primaryKey"`
	OrderID uint   `gorm:"index;not null"`
	Status  string `gorm:"size:32"`
	Comment string `gorm:"type:text"`
	// CustomerNotified mirrors whether the storefront mailed the customer
	// about this entry; the engine always writes false.
	CustomerNotified bool
	DateAdded        time.Time `gorm:"autoCreateTime"`
}

type Gateway interface {
	// FindByProcessorOrderID returns nil without error when no local order
	// matches; capture events for unknown orders are an expected outcome.
	FindByProcessorOrderID(ctx context.Context, processorOrderID string) (*Order, error)
	// SetStatus transitions the order and appends a history entry. Returns
	// false when the order was already in that status, in which case no
	// history entry is written either.
	SetStatus(ctx context.Context, orderID uint, status, comment string) (bool, error)
	// AppendComment adds a history note without changing the status.
	AppendComment(ctx context.Context, orderID uint, comment string) error
}
