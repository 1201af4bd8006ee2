package model

// LegacyRecurringOrder maps the deprecated recurring-billing table as it was
// left by earlier schema versions. Column naming is inconsistent and several
// fields were stored as raw strings; the migrator normalizes everything into
// Subscription. This model is read-only: the engine never writes the legacy
// table and never creates it on fresh installs.
type LegacyRecurringOrder struct {
	SubscriptionID uint   `gorm:"column:subscription_id;primaryKey"`
	CustomersID    uint   `gorm:"column:customers_id"`
	OrdersID       uint   `gorm:"column:orders_id"`
	OrdersProducts *uint  `gorm:"column:orders_products_id"`
	ProductsID     uint   `gorm:"column:products_id"`
	ProfileID      string `gorm:"column:profile_id"`

	BillingPeriod      string `gorm:"column:billingperiod"`
	BillingFrequency   int    `gorm:"column:billingfrequency"`
	TotalBillingCycles int    `gorm:"column:totalbillingcycles"`

	TrialBillingPeriod    string `gorm:"column:trialbillingperiod"`
	TrialBillingFrequency int    `gorm:"column:trialbillingfrequency"`
	TrialTotalCycles      int    `gorm:"column:trialtotalbillingcycles"`

	// Amounts and dates were free text in old installs.
	Amount       string `gorm:"column:amount"`
	SetupFee     string `gorm:"column:setup_fee"`
	CurrencyCode string `gorm:"column:currency"`
	DateAdded    string `gorm:"column:date_added"`

	// Attributes is a JSON blob some versions wrote; others left it empty.
	Attributes string `gorm:"column:attributes"`
}

func (LegacyRecurringOrder) TableName() string {
	return "legacy_recurring_orders"
}
