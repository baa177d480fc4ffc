package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/apperr"
	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store/memory"
)

type orderFixture struct {
	carts  *CartService
	orders *OrderService
	store  *memory.Store
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	st := memory.New()
	return &orderFixture{
		carts:  NewCartService(st, zap.NewNop()),
		orders: NewOrderService(st, zap.NewNop()),
		store:  st,
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newOrderFixture(t)

	// No cart at all.
	_, err := f.orders.PlaceOrder(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// Cart exists but holds nothing.
	_, err = f.carts.GetCart(context.Background(), 1)
	require.NoError(t, err)
	_, err = f.orders.PlaceOrder(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestPlaceOrderSnapshotsTotalAndClearsCart(t *testing.T) {
	f := newOrderFixture(t)
	keyboard := f.store.SeedProduct(models.Product{Name: "Keyboard", Price: 49.99, StockQty: 10, CategoryID: 1})
	mouse := f.store.SeedProduct(models.Product{Name: "Mouse", Price: 19.99, StockQty: 10, CategoryID: 1})

	_, err := f.carts.AddItem(context.Background(), 1, keyboard.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(context.Background(), 1, mouse.ID, 1)
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.InDelta(t, 49.99*2+19.99, order.TotalAmount, 0.001)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 3, order.TotalItems)

	// The cart is empty afterwards.
	cart, err := f.carts.GetCart(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// Stock is untouched at order time; it only moves at payment
	// confirmation.
	p, err := f.store.Products().GetByID(context.Background(), keyboard.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.StockQty)
}

func TestPlaceOrderTotalImmuneToLaterPriceChange(t *testing.T) {
	f := newOrderFixture(t)
	product := f.store.SeedProduct(models.Product{Name: "Monitor", Price: 200.00, StockQty: 5, CategoryID: 1})

	_, err := f.carts.AddItem(context.Background(), 1, product.ID, 1)
	require.NoError(t, err)

	placed, err := f.orders.PlaceOrder(context.Background(), 1)
	require.NoError(t, err)

	product.Price = 500.00
	f.store.SeedProduct(product)

	got, err := f.orders.GetOrder(context.Background(), 1, placed.ID)
	require.NoError(t, err)
	assert.InDelta(t, 200.00, got.TotalAmount, 0.001)
	assert.InDelta(t, 200.00, got.Items[0].PriceAtOrder, 0.001)
}

func TestGetOrderScopedToOwner(t *testing.T) {
	f := newOrderFixture(t)
	product := f.store.SeedProduct(models.Product{Name: "Desk", Price: 300.00, StockQty: 5, CategoryID: 1})

	_, err := f.carts.AddItem(context.Background(), 1, product.ID, 1)
	require.NoError(t, err)
	placed, err := f.orders.PlaceOrder(context.Background(), 1)
	require.NoError(t, err)

	_, err = f.orders.GetOrder(context.Background(), 2, placed.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestListOrdersNewestFirstWithPageMetadata(t *testing.T) {
	f := newOrderFixture(t)
	product := f.store.SeedProduct(models.Product{Name: "Cable", Price: 5.00, StockQty: 100, CategoryID: 1})

	var last int64
	for i := 0; i < 3; i++ {
		_, err := f.carts.AddItem(context.Background(), 1, product.ID, 1)
		require.NoError(t, err)
		placed, err := f.orders.PlaceOrder(context.Background(), 1)
		require.NoError(t, err)
		last = placed.ID
	}

	page, err := f.orders.ListOrders(context.Background(), 1, 0, 2)
	require.NoError(t, err)

	require.Len(t, page.Content, 2)
	assert.Equal(t, last, page.Content[0].ID)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.First)
	assert.False(t, page.Last)
}

func TestCancelOrderOnlyWhilePending(t *testing.T) {
	f := newOrderFixture(t)
	product := f.store.SeedProduct(models.Product{Name: "Chair", Price: 120.00, StockQty: 5, CategoryID: 1})

	_, err := f.carts.AddItem(context.Background(), 1, product.ID, 1)
	require.NoError(t, err)
	placed, err := f.orders.PlaceOrder(context.Background(), 1)
	require.NoError(t, err)

	cancelled, err := f.orders.CancelOrder(context.Background(), 1, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	// A second cancel hits the status guard.
	_, err = f.orders.CancelOrder(context.Background(), 1, placed.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCancelPaidOrderConflicts(t *testing.T) {
	f := newOrderFixture(t)
	product := f.store.SeedProduct(models.Product{Name: "Lamp", Price: 25.00, StockQty: 5, CategoryID: 1})

	_, err := f.carts.AddItem(context.Background(), 1, product.ID, 1)
	require.NoError(t, err)
	placed, err := f.orders.PlaceOrder(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, f.orders.MarkOrderAsPaid(context.Background(), placed.ID))

	_, err = f.orders.CancelOrder(context.Background(), 1, placed.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestMarkOrderAsPaidDecrementsStockExactlyOnce(t *testing.T) {
	f := newOrderFixture(t)
	product := f.store.SeedProduct(models.Product{Name: "Webcam", Price: 80.00, StockQty: 5, CategoryID: 1})

	_, err := f.carts.AddItem(context.Background(), 1, product.ID, 2)
	require.NoError(t, err)
	placed, err := f.orders.PlaceOrder(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, f.orders.MarkOrderAsPaid(context.Background(), placed.ID))

	p, err := f.store.Products().GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockQty)

	paid, err := f.orders.GetOrder(context.Background(), 1, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)

	// Duplicate confirmation: the PENDING guard rejects it and stock does
	// not move again.
	err = f.orders.MarkOrderAsPaid(context.Background(), placed.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	p, err = f.store.Products().GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockQty)
}

func TestMarkOrderAsPaidAllOrNothing(t *testing.T) {
	f := newOrderFixture(t)
	plenty := f.store.SeedProduct(models.Product{Name: "Stand", Price: 30.00, StockQty: 10, CategoryID: 1})
	scarce := f.store.SeedProduct(models.Product{Name: "Dock", Price: 150.00, StockQty: 2, CategoryID: 1})

	_, err := f.carts.AddItem(context.Background(), 1, plenty.ID, 1)
	require.NoError(t, err)
	_, err = f.carts.AddItem(context.Background(), 1, scarce.ID, 2)
	require.NoError(t, err)
	placed, err := f.orders.PlaceOrder(context.Background(), 1)
	require.NoError(t, err)

	// Someone else buys out the scarce product before the confirmation
	// arrives.
	require.NoError(t, f.store.Products().AdjustStock(context.Background(), scarce.ID, -1))

	err = f.orders.MarkOrderAsPaid(context.Background(), placed.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// Nothing moved: neither product was decremented and the order is
	// still PENDING.
	p, err := f.store.Products().GetByID(context.Background(), plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.StockQty)

	order, err := f.orders.GetOrder(context.Background(), 1, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestMarkOrderAsPaidUnknownOrder(t *testing.T) {
	f := newOrderFixture(t)

	err := f.orders.MarkOrderAsPaid(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
