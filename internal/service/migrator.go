package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"payvault/internal/apperr"
	"payvault/internal/model"
	"payvault/internal/repository"
)

// LegacyMigrator folds rows from the deprecated recurring-billing table into
// the subscription ledger. Safe to run repeatedly (cron or manual trigger)
// and concurrently with live traffic: every row goes through the ledger's
// idempotent upsert keyed on the legacy subscription id, so re-runs never
// duplicate.
type LegacyMigrator struct {
	legacy repository.LegacyRepository
	subs   *SubscriptionService
	log    zerolog.Logger
	now    func() time.Time
}

type MigrationSummary struct {
	Scanned  int `json:"scanned"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}

func NewLegacyMigrator(legacy repository.LegacyRepository, subs *SubscriptionService, log zerolog.Logger) *LegacyMigrator {
	return &LegacyMigrator{
		legacy: legacy,
		subs:   subs,
		log:    log.With().Str("component", "legacy_migrator").Logger(),
		now:    time.Now,
	}
}

// Run migrates every legacy row it can read. A malformed row is normalized
// defensively and logged, never aborts the batch. Stopping between rows is
// safe; the next run picks up where the data left off.
func (m *LegacyMigrator) Run(ctx context.Context) (MigrationSummary, error) {
	var summary MigrationSummary

	if !m.legacy.TableExists(ctx) {
		m.log.Info().Msg("legacy table absent, nothing to migrate")
		return summary, nil
	}

	rows, err := m.legacy.List(ctx)
	if err != nil {
		return summary, apperr.Transient(err)
	}

	for _, row := range rows {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		summary.Scanned++

		data, anomalies := m.normalize(row)
		for _, anomaly := range anomalies {
			m.log.Warn().
				Uint("legacy_subscription_id", row.SubscriptionID).
				Str("anomaly", anomaly).
				Msg("legacy row needs manual review")
		}

		if _, err := m.subs.LogSubscription(ctx, data); err != nil {
			summary.Skipped++
			m.log.Error().
				Err(err).
				Uint("legacy_subscription_id", row.SubscriptionID).
				Msg("legacy row not migrated")
			continue
		}
		summary.Upserted++
	}

	m.log.Info().
		Int("scanned", summary.Scanned).
		Int("upserted", summary.Upserted).
		Int("skipped", summary.Skipped).
		Msg("legacy migration pass finished")

	return summary, nil
}

// normalize maps one legacy row into the current subscription shape. Bad
// values fall back (zero amount, "now" for dates, empty strings) and are
// reported as anomalies instead of failing the row.
func (m *LegacyMigrator) normalize(row *model.LegacyRecurringOrder) (SubscriptionData, []string) {
	var anomalies []string

	amount, err := parseLegacyAmount(row.Amount)
	if err != nil {
		anomalies = append(anomalies, "unparseable amount "+strings.TrimSpace(row.Amount))
	}
	setupFee, err := parseLegacyAmount(row.SetupFee)
	if err != nil {
		anomalies = append(anomalies, "unparseable setup fee "+strings.TrimSpace(row.SetupFee))
	}

	dateAdded, ok := parseLegacyDate(row.DateAdded)
	if !ok {
		if strings.TrimSpace(row.DateAdded) != "" {
			anomalies = append(anomalies, "unparseable date_added "+row.DateAdded)
		}
		dateAdded = m.now()
	}

	frequency := row.BillingFrequency
	if frequency <= 0 {
		anomalies = append(anomalies, "missing billing frequency, assuming 1")
		frequency = 1
	}

	inferred := map[string]string{
		"source": "legacy_migration",
	}
	if cur := strings.TrimSpace(row.CurrencyCode); cur != "" {
		inferred["legacy_currency"] = cur
	}
	attributes, blobOK := mergeLegacyAttributes(row.Attributes, inferred)
	if !blobOK {
		anomalies = append(anomalies, "unparseable attributes blob")
	}

	var lineItem *uint
	if row.OrdersProducts != nil && *row.OrdersProducts != 0 {
		id := *row.OrdersProducts
		lineItem = &id
	}

	return SubscriptionData{
		LegacySubscriptionID:  row.SubscriptionID,
		ProfileID:             strings.TrimSpace(row.ProfileID),
		CustomerID:            row.CustomersID,
		OrderID:               row.OrdersID,
		OrdersLineItemID:      lineItem,
		ProductID:             row.ProductsID,
		BillingPeriod:         normalizeBillingPeriod(row.BillingPeriod),
		BillingFrequency:      frequency,
		TotalBillingCycles:    row.TotalBillingCycles,
		TrialBillingPeriod:    normalizeBillingPeriod(row.TrialBillingPeriod),
		TrialBillingFrequency: row.TrialBillingFrequency,
		TrialTotalCycles:      row.TrialTotalCycles,
		CurrencyCode:          strings.ToUpper(strings.TrimSpace(row.CurrencyCode)),
		CurrencyValue:         decimal.NewFromInt(1),
		Amount:                amount,
		SetupFee:              setupFee,
		Attributes:            attributes,
		DateAdded:             dateAdded,
	}, anomalies
}

func parseLegacyAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(trimmed)
}

var legacyDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

func parseLegacyDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range legacyDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// normalizeBillingPeriod maps the free-spelled period units old installs
// recorded onto the current canonical set. Unknown units pass through
// lowercased so nothing is silently discarded.
func normalizeBillingPeriod(raw string) string {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")) {
	case "day", "daily":
		return "day"
	case "week", "weekly":
		return "week"
	case "semimonth", "semi_month":
		return "semi_month"
	case "month", "monthly":
		return "month"
	case "year", "yearly", "annual":
		return "year"
	case "":
		return ""
	default:
		return strings.ToLower(strings.TrimSpace(raw))
	}
}

// mergeLegacyAttributes overlays the legacy JSON blob onto the inferred
// attributes. Keys already present in the blob win: explicit historical data
// is never overwritten with a guess.
func mergeLegacyAttributes(blob string, inferred map[string]string) (map[string]string, bool) {
	merged := make(map[string]string, len(inferred))
	for k, v := range inferred {
		merged[k] = v
	}

	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return merged, true
	}

	var existing map[string]string
	if err := json.Unmarshal([]byte(trimmed), &existing); err != nil {
		return merged, false
	}
	for k, v := range existing {
		merged[k] = v
	}
	return merged, true
}
