package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/service"
	"github.com/mwarren02/storefront-api/internal/store/memory"
	"github.com/mwarren02/storefront-api/internal/stripe"
)

const webhookTestSecret = "whsec_handler_test"

type webhookFixture struct {
	router *gin.Engine
	carts  *service.CartService
	orders *service.OrderService
	store  *memory.Store
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	logger := zap.NewNop()
	h := &Handlers{
		Orders:        service.NewOrderService(st, logger),
		WebhookSecret: webhookTestSecret,
		Logger:        logger,
	}

	router := gin.New()
	router.POST("/api/webhooks/stripe", h.StripeWebhook)

	return &webhookFixture{
		router: router,
		carts:  service.NewCartService(st, logger),
		orders: service.NewOrderService(st, logger),
		store:  st,
	}
}

func (f *webhookFixture) placePendingOrder(t *testing.T) (*models.OrderView, models.Product) {
	t.Helper()
	product := f.store.SeedProduct(models.Product{Name: "Keyboard", Price: 49.99, StockQty: 5, CategoryID: 1})
	_, err := f.carts.AddItem(context.Background(), 1, product.ID, 2)
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(context.Background(), 1)
	require.NoError(t, err)
	return order, product
}

func (f *webhookFixture) deliver(t *testing.T, payload []byte, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", header)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func succeededEvent(orderID int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_test", "metadata": {"orderId": "%d", "userId": "1"}}}
	}`, orderID))
}

func TestWebhookMarksOrderPaid(t *testing.T) {
	f := newWebhookFixture(t)
	order, product := f.placePendingOrder(t)

	payload := succeededEvent(order.ID)
	rec := f.deliver(t, payload, stripe.SignPayload(payload, webhookTestSecret, time.Now()))
	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := f.orders.GetOrder(context.Background(), 1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, got.Status)

	p, err := f.store.Products().GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockQty)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)
	order, _ := f.placePendingOrder(t)

	payload := succeededEvent(order.ID)
	rec := f.deliver(t, payload, stripe.SignPayload(payload, "whsec_wrong", time.Now()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing happened to the order.
	got, err := f.orders.GetOrder(context.Background(), 1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
}

func TestWebhookDuplicateDeliveryAckedWithoutSecondDecrement(t *testing.T) {
	f := newWebhookFixture(t)
	order, product := f.placePendingOrder(t)

	payload := succeededEvent(order.ID)
	header := stripe.SignPayload(payload, webhookTestSecret, time.Now())

	first := f.deliver(t, payload, header)
	assert.Equal(t, http.StatusOK, first.Code)

	// Redelivery of the same event: still 200 so the processor stops
	// retrying, and stock does not move again.
	second := f.deliver(t, payload, header)
	assert.Equal(t, http.StatusOK, second.Code)

	p, err := f.store.Products().GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockQty)
}

func TestWebhookUnknownOrderAcked(t *testing.T) {
	f := newWebhookFixture(t)

	payload := succeededEvent(999)
	rec := f.deliver(t, payload, stripe.SignPayload(payload, webhookTestSecret, time.Now()))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	f := newWebhookFixture(t)
	order, _ := f.placePendingOrder(t)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_other",
		"type": "payment_intent.created",
		"data": {"object": {"id": "pi_test", "metadata": {"orderId": "%d"}}}
	}`, order.ID))
	rec := f.deliver(t, payload, stripe.SignPayload(payload, webhookTestSecret, time.Now()))
	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := f.orders.GetOrder(context.Background(), 1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
}
