package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/apperr"
	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store/memory"
	"github.com/mwarren02/storefront-api/internal/stripe"
)

// fakeProcessor records the last CreateIntent call and returns a canned
// intent or error.
type fakeProcessor struct {
	amountMinor int64
	currency    string
	metadata    map[string]string
	calls       int

	intent *stripe.Intent
	err    error
}

func (f *fakeProcessor) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*stripe.Intent, error) {
	f.calls++
	f.amountMinor = amountMinor
	f.currency = currency
	f.metadata = metadata
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

type paymentFixture struct {
	carts     *CartService
	orders    *OrderService
	payments  *PaymentService
	processor *fakeProcessor
	store     *memory.Store
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	st := memory.New()
	processor := &fakeProcessor{
		intent: &stripe.Intent{
			ID:           "pi_test_123",
			ClientSecret: "pi_test_123_secret_abc",
			Status:       "requires_payment_method",
		},
	}
	return &paymentFixture{
		carts:     NewCartService(st, zap.NewNop()),
		orders:    NewOrderService(st, zap.NewNop()),
		payments:  NewPaymentService(st, processor, "usd", zap.NewNop()),
		processor: processor,
		store:     st,
	}
}

func (f *paymentFixture) placeOrder(t *testing.T, userID int64, price float64, qty int) *models.OrderView {
	t.Helper()
	product := f.store.SeedProduct(models.Product{Name: "Widget", Price: price, StockQty: 100, CategoryID: 1})
	_, err := f.carts.AddItem(context.Background(), userID, product.ID, qty)
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(context.Background(), userID)
	require.NoError(t, err)
	return order
}

func TestCreateIntentConvertsToMinorUnits(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.placeOrder(t, 1, 19.99, 2) // 39.98

	view, err := f.payments.CreateIntent(context.Background(), 1, order.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3998), f.processor.amountMinor)
	assert.Equal(t, "usd", f.processor.currency)
	assert.Equal(t, map[string]string{
		"orderId": strconv.FormatInt(order.ID, 10),
		"userId":  "1",
	}, f.processor.metadata)

	assert.Equal(t, "pi_test_123_secret_abc", view.ClientSecret)
	assert.Equal(t, order.ID, view.OrderID)
	assert.InDelta(t, 39.98, view.Amount, 0.001)
	assert.Equal(t, "usd", view.Currency)
	assert.Equal(t, "requires_payment_method", view.Status)
}

func TestCreateIntentForeignOrderIsNotFound(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.placeOrder(t, 1, 10.00, 1)

	_, err := f.payments.CreateIntent(context.Background(), 2, order.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Zero(t, f.processor.calls)
}

func TestCreateIntentRequiresPendingOrder(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.placeOrder(t, 1, 10.00, 1)

	_, err := f.orders.CancelOrder(context.Background(), 1, order.ID)
	require.NoError(t, err)

	_, err = f.payments.CreateIntent(context.Background(), 1, order.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Zero(t, f.processor.calls)
}

func TestCreateIntentProcessorFailureSurfacesAsExternal(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.placeOrder(t, 1, 10.00, 1)
	f.processor.err = errors.New("connection refused")

	_, err := f.payments.CreateIntent(context.Background(), 1, order.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindExternal))

	// Exactly one attempt; no retries.
	assert.Equal(t, 1, f.processor.calls)
}
