package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payvault/internal/model"
	"payvault/internal/order"
)

// flakyGateway fails the first SetStatus calls, then delegates.
type flakyGateway struct {
	order.Gateway
	failures int
}

func (g *flakyGateway) SetStatus(ctx context.Context, orderID uint, status, comment string) (bool, error) {
	if g.failures > 0 {
		g.failures--
		return false, errors.New("connection reset by peer")
	}
	return g.Gateway.SetStatus(ctx, orderID, status, comment)
}

func TestCaptureCompletedSettlesOrderOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ord := env.seedOrder(t, 7, "5O190127TN364715T", order.StatusProcessing)

	evt := captureEvent("CAP-1", ord.ProcessorOrderID, "19.99", true)

	// The processor redelivers until acknowledged; three deliveries of the
	// same capture must converge on one transaction and one transition.
	for i := 0; i < 3; i++ {
		require.NoError(t, env.router.Dispatch(ctx, evt))
	}

	var got order.Order
	require.NoError(t, env.db.First(&got, ord.ID).Error)
	assert.Equal(t, order.StatusPaid, got.Status)

	txns, err := env.txns.ListByOrder(ctx, ord.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "CAP-1", txns[0].TxnID)
	assert.Equal(t, model.TxnTypeCapture, txns[0].TxnType)
	assert.Equal(t, "19.99", txns[0].Amount.StringFixed(2))
	assert.True(t, txns[0].FinalCapture)

	assert.EqualValues(t, 1, env.historyCount(t, ord.ID), "only the first delivery writes history")
	assert.Len(t, env.notified, 1, "merchant is notified exactly once")
}

func TestCaptureCompletedPartialLeavesStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ord := env.seedOrder(t, 7, "5O190127TN364715T", order.StatusProcessing)

	require.NoError(t, env.router.Dispatch(ctx, captureEvent("CAP-1", ord.ProcessorOrderID, "10.00", false)))

	var got order.Order
	require.NoError(t, env.db.First(&got, ord.ID).Error)
	assert.Equal(t, order.StatusProcessing, got.Status, "a partial capture never settles the order")
	assert.EqualValues(t, 1, env.historyCount(t, ord.ID), "the partial payment is noted for the admin view")
	assert.Empty(t, env.notified)

	// The final capture then settles it.
	require.NoError(t, env.router.Dispatch(ctx, captureEvent("CAP-2", ord.ProcessorOrderID, "9.99", true)))

	require.NoError(t, env.db.First(&got, ord.ID).Error)
	assert.Equal(t, order.StatusPaid, got.Status)

	txns, err := env.txns.ListByOrder(ctx, ord.ID)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestCaptureCompletedUnknownOrderDropped(t *testing.T) {
	env := newTestEnv(t)

	err := env.router.Dispatch(context.Background(), captureEvent("CAP-1", "NO-SUCH-ORDER", "19.99", true))
	assert.NoError(t, err, "a capture for an untracked order is acknowledged, not retried")

	var count int64
	require.NoError(t, env.db.Model(&model.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCaptureCompletedMalformedResourceDropped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []*Event{
		{EventType: EventCaptureCompleted, Resource: []byte(`{not json`)},
		{EventType: EventCaptureCompleted, Resource: []byte(`{"status":"COMPLETED"}`)},
		{EventType: EventCaptureCompleted, Resource: []byte(`{"id":"CAP-1","supplementary_data":{"related_ids":{}}}`)},
	}
	for _, evt := range cases {
		assert.NoError(t, env.router.Dispatch(ctx, evt))
	}
}

func TestCaptureCompletedRetriesAfterFailedTransition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ord := env.seedOrder(t, 7, "5O190127TN364715T", order.StatusProcessing)

	flaky := &flakyGateway{Gateway: env.orders, failures: 1}
	router := NewRouter(zerolog.Nop())
	router.Register(EventCaptureCompleted, NewCaptureCompletedHandler(flaky, env.txns, env, zerolog.Nop()))

	evt := captureEvent("CAP-1", ord.ProcessorOrderID, "19.99", true)

	// The first delivery records the transaction but the order update dies;
	// the error must propagate so the processor redelivers.
	require.Error(t, router.Dispatch(ctx, evt))

	var got order.Order
	require.NoError(t, env.db.First(&got, ord.ID).Error)
	require.Equal(t, order.StatusProcessing, got.Status)

	// Redelivery must retry the transition, not skip it because a row for
	// the capture already exists.
	require.NoError(t, router.Dispatch(ctx, evt))

	require.NoError(t, env.db.First(&got, ord.ID).Error)
	assert.Equal(t, order.StatusPaid, got.Status)
	assert.EqualValues(t, 1, env.historyCount(t, ord.ID))
	assert.Len(t, env.notified, 1)

	// A third delivery is now a pure duplicate.
	require.NoError(t, router.Dispatch(ctx, evt))
	require.NoError(t, env.db.First(&got, ord.ID).Error)
	assert.Equal(t, order.StatusPaid, got.Status)
	assert.EqualValues(t, 1, env.historyCount(t, ord.ID))

	txns, err := env.txns.ListByOrder(ctx, ord.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.True(t, txns[0].Applied)
}

func TestCaptureCompletedNeverRegressesShippedOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ord := env.seedOrder(t, 7, "5O190127TN364715T", order.StatusProcessing)

	require.NoError(t, env.router.Dispatch(ctx, captureEvent("CAP-1", ord.ProcessorOrderID, "19.99", true)))

	// Order moves on in the fulfilment flow, then a stale redelivery lands.
	require.NoError(t, env.db.Model(&order.Order{}).Where("id = ?", ord.ID).Update("status", order.StatusShipped).Error)

	require.NoError(t, env.router.Dispatch(ctx, captureEvent("CAP-1", ord.ProcessorOrderID, "19.99", true)))

	var got order.Order
	require.NoError(t, env.db.First(&got, ord.ID).Error)
	assert.Equal(t, order.StatusShipped, got.Status, "a redelivered capture must not drag the order back to paid")
}
