package dto

import "github.com/shopspring/decimal"

type RecurringItem struct {
	LineItemID uint   `json:"line_item_id,omitempty"`
	ProductID  uint   `json:"product_id"`
	ProfileID  string `json:"profile_id,omitempty"`

	BillingPeriod      string `json:"billing_period"`
	BillingFrequency   int    `json:"billing_frequency"`
	TotalBillingCycles int    `json:"total_billing_cycles"`

	TrialBillingPeriod    string `json:"trial_billing_period,omitempty"`
	TrialBillingFrequency int    `json:"trial_billing_frequency,omitempty"`
	TrialTotalCycles      int    `json:"trial_total_cycles,omitempty"`

	CurrencyCode  string          `json:"currency_code"`
	CurrencyValue decimal.Decimal `json:"currency_value"`
	Amount        decimal.Decimal `json:"amount"`
	SetupFee      decimal.Decimal `json:"setup_fee"`

	Attributes map[string]string `json:"attributes,omitempty"`
}

type RecordPurchaseRequest struct {
	CustomerID     uint            `json:"customer_id"`
	OrderID        uint            `json:"order_id"`
	VaultRequested bool            `json:"vault_requested"`
	Items          []RecurringItem `json:"items"`
}

type RecordPurchaseResponse struct {
	SubscriptionIDs []uint `json:"subscription_ids"`
}

type BillingAddress struct {
	Line1       string `json:"line1,omitempty"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// CompleteVaultRequest carries the already-parsed payment source from a
// successful processor response.
type CompleteVaultRequest struct {
	CustomerID uint `json:"customer_id"`
	OrderID    uint `json:"order_id"`

	TokenID    string         `json:"token_id"`
	Status     string         `json:"status"`
	Brand      string         `json:"brand,omitempty"`
	LastDigits string         `json:"last_digits,omitempty"`
	CardType   string         `json:"card_type,omitempty"`
	Expiry     string         `json:"expiry,omitempty"`
	HolderName string         `json:"holder_name,omitempty"`
	Billing    BillingAddress `json:"billing_address,omitempty"`
}
