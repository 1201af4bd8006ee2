package webhook

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payvault/internal/model"
	"payvault/internal/order"
	"payvault/internal/repository"
	"payvault/internal/service"
)

// Full lifecycle: a legacy recurring order is migrated, its vault token
// arrives, and the final capture settles the order despite redeliveries.
func TestLegacyOrderReconciliation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.db.AutoMigrate(&model.LegacyRecurringOrder{}))
	require.NoError(t, env.db.Create(&model.LegacyRecurringOrder{
		SubscriptionID:   42,
		CustomersID:      7,
		OrdersID:         100,
		BillingPeriod:    "month",
		BillingFrequency: 1,
		Amount:           "19.99",
		CurrencyCode:     "USD",
		DateAdded:        "2019-04-02 10:30:00",
	}).Error)

	migrator := service.NewLegacyMigrator(repository.NewLegacyRepository(env.db), env.subs, zerolog.Nop())
	summary, err := migrator.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Upserted)

	// The customer re-vaults their card; the ledger row activates with it.
	_, err = env.tokens.Save(ctx, 7, 100, service.CardSource{
		TokenID: "tok_abc",
		Status:  model.TokenStatusActive,
		Expiry:  "2029-01",
	}, true)
	require.NoError(t, err)
	activated, err := env.subs.ActivateWithVault(ctx, 7, 100, "tok_abc")
	require.NoError(t, err)
	require.EqualValues(t, 1, activated)

	// The billing cycle's capture lands, redelivered twice on top.
	ord := env.seedOrder(t, 7, "5O190127TN364715T", order.StatusProcessing)
	evt := captureEvent("CAP-1", ord.ProcessorOrderID, "19.99", true)
	for i := 0; i < 3; i++ {
		require.NoError(t, env.router.Dispatch(ctx, evt))
	}

	var got order.Order
	require.NoError(t, env.db.First(&got, ord.ID).Error)
	assert.Equal(t, order.StatusPaid, got.Status)
	assert.EqualValues(t, 1, env.historyCount(t, ord.ID))

	var sub model.Subscription
	require.NoError(t, env.db.Where("legacy_subscription_id = ?", 42).First(&sub).Error)
	assert.Equal(t, model.SubscriptionActive, sub.Status)
	assert.Equal(t, "tok_abc", sub.VaultTokenRef)

	// A later migration pass sees nothing to change.
	summary, err = migrator.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Upserted)

	var count int64
	require.NoError(t, env.db.Model(&model.Subscription{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
