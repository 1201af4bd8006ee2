package webhook

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"payvault/internal/model"
	"payvault/internal/notify"
	"payvault/internal/order"
	"payvault/internal/repository"
	"payvault/internal/service"
)

// testEnv wires the full event-handling stack over one in-memory database,
// the way main does, so handler tests exercise real persistence semantics.
type testEnv struct {
	db       *gorm.DB
	router   *Router
	tokens   *service.TokenService
	subs     *service.SubscriptionService
	orders   order.Gateway
	txns     repository.TransactionRepository
	notified []string
}

func (e *testEnv) Notify(_ context.Context, subject, _ string, _ notify.Audience) error {
	e.notified = append(e.notified, subject)
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Token{},
		&model.Subscription{},
		&model.Transaction{},
		&order.Order{},
		&order.StatusHistory{},
	))

	log := zerolog.Nop()
	env := &testEnv{
		db:     db,
		tokens: service.NewTokenService(repository.NewTokenRepository(db), log),
		subs:   service.NewSubscriptionService(repository.NewSubscriptionRepository(db), log),
		orders: order.NewGormGateway(db),
		txns:   repository.NewTransactionRepository(db),
	}

	env.router = NewRouter(log)
	env.router.Register(EventCaptureCompleted, NewCaptureCompletedHandler(env.orders, env.txns, env, log))
	env.router.Register(EventVaultTokenUpdated, NewVaultTokenUpdatedHandler(env.tokens, env.subs, log))

	return env
}

func (e *testEnv) seedOrder(t *testing.T, customerID uint, processorOrderID, status string) *order.Order {
	t.Helper()
	ord := &order.Order{
		CustomerID:       customerID,
		ProcessorOrderID: processorOrderID,
		Status:           status,
	}
	require.NoError(t, e.db.Create(ord).Error)
	return ord
}

func (e *testEnv) historyCount(t *testing.T, orderID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&order.StatusHistory{}).Where("order_id = ?", orderID).Count(&count).Error)
	return count
}

func captureEvent(captureID, processorOrderID, value string, final bool) *Event {
	resource := fmt.Sprintf(`{
		"id": %q,
		"status": "COMPLETED",
		"amount": {"currency_code": "USD", "value": %q},
		"final_capture": %t,
		"create_time": "2026-08-28T10:00:00Z",
		"supplementary_data": {"related_ids": {"order_id": %q}}
	}`, captureID, value, final, processorOrderID)

	return &Event{
		ID:        "WH-" + captureID,
		EventType: EventCaptureCompleted,
		Resource:  []byte(resource),
	}
}
