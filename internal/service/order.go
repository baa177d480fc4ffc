package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/apperr"
	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store"
)

// OrderService converts carts into immutable order snapshots and drives
// the order status machine.
type OrderService struct {
	store  store.Store
	logger *zap.Logger
}

func NewOrderService(st store.Store, logger *zap.Logger) *OrderService {
	return &OrderService{store: st, logger: logger}
}

// PlaceOrder checks out the user's cart. Order creation, order-item
// creation and the cart clear happen in one transaction: either the whole
// snapshot exists and the cart is empty, or nothing changed.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64) (*models.OrderView, error) {
	var view *models.OrderView
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		cart, err := tx.Carts().GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Conflict("cannot place order with empty cart")
			}
			return apperr.Internal("failed to load cart", err)
		}

		items, err := tx.Carts().ListItems(ctx, cart.ID)
		if err != nil {
			return apperr.Internal("failed to list cart items", err)
		}
		if len(items) == 0 {
			return apperr.Conflict("cannot place order with empty cart")
		}

		// The stored total is authoritative: sum of price-at-add x qty
		// over the cart at this moment. Later product price changes must
		// never affect it.
		var total float64
		for _, item := range items {
			total += item.PriceAtAdd * float64(item.Quantity)
		}

		order := &models.Order{
			UserID:      userID,
			Status:      models.OrderStatusPending,
			TotalAmount: total,
			OrderDate:   time.Now(),
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return apperr.Internal("failed to create order", err)
		}

		for _, item := range items {
			orderItem := &models.OrderItem{
				OrderID:      order.ID,
				ProductID:    item.ProductID,
				Quantity:     item.Quantity,
				PriceAtOrder: item.PriceAtAdd, // snapshot copied from the cart item
			}
			if err := tx.Orders().CreateItem(ctx, orderItem); err != nil {
				return apperr.Internal("failed to create order item", err)
			}
		}

		if err := tx.Carts().DeleteItems(ctx, cart.ID); err != nil {
			return apperr.Internal("failed to clear cart", err)
		}

		view, err = s.orderView(ctx, tx, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.Int64("order_id", view.ID),
		zap.Int64("user_id", userID),
		zap.Float64("total", view.TotalAmount))
	return view, nil
}

// GetOrder returns one order, scoped to its owner. A foreign order id is
// NotFound, not Forbidden.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*models.OrderView, error) {
	order, err := s.store.Orders().GetByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("order not found with id: %d", orderID)
		}
		return nil, apperr.Internal("failed to load order", err)
	}
	return s.orderView(ctx, s.store, order)
}

// ListOrders returns the user's order history, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID int64, page, size int) (*models.Page[models.OrderView], error) {
	orders, total, err := s.store.Orders().ListByUser(ctx, userID, page, size)
	if err != nil {
		return nil, apperr.Internal("failed to list orders", err)
	}

	views := make([]models.OrderView, 0, len(orders))
	for i := range orders {
		view, err := s.orderView(ctx, s.store, &orders[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	p := models.NewPage(views, page, size, total)
	return &p, nil
}

// CancelOrder moves a PENDING order to CANCELLED. Any other current
// status is a conflict, including an order that is already cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID int64) (*models.OrderView, error) {
	var view *models.OrderView
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		order, err := tx.Orders().GetByIDAndUser(ctx, orderID, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("order not found with id: %d", orderID)
			}
			return apperr.Internal("failed to load order", err)
		}

		if order.Status != models.OrderStatusPending {
			return apperr.Conflict("cannot cancel order with status: %s", order.Status)
		}

		if err := tx.Orders().UpdateStatus(ctx, order.ID, models.OrderStatusCancelled); err != nil {
			return apperr.Internal("failed to update order status", err)
		}
		order.Status = models.OrderStatusCancelled

		view, err = s.orderView(ctx, tx, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// MarkOrderAsPaid is invoked by the payment confirmation handler, never by
// end users, so it is not ownership-scoped. The PENDING check doubles as
// the idempotency barrier against duplicate webhook delivery: the order
// row is locked for the transaction, so of two concurrent confirmations
// exactly one sees PENDING. Stock is verified for every item before any
// decrement; one short item fails the whole operation.
func (s *OrderService) MarkOrderAsPaid(ctx context.Context, orderID int64) error {
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		order, err := tx.Orders().GetByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("order not found with id: %d", orderID)
			}
			return apperr.Internal("failed to load order", err)
		}

		if order.Status != models.OrderStatusPending {
			return apperr.Conflict("order %d is not PENDING. current status: %s", orderID, order.Status)
		}

		items, err := tx.Orders().ListItems(ctx, order.ID)
		if err != nil {
			return apperr.Internal("failed to list order items", err)
		}

		// First pass: lock every product row and verify stock.
		for _, item := range items {
			product, err := tx.Products().GetByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return apperr.Conflict("product %d from order %d no longer exists", item.ProductID, orderID)
				}
				return apperr.Internal("failed to load product", err)
			}
			if product.StockQty < item.Quantity {
				return apperr.Conflict(
					"insufficient stock for product %q. available: %d, required: %d",
					product.Name, product.StockQty, item.Quantity)
			}
		}

		// Second pass: decrement, then flip the status. All inside the
		// same transaction.
		for _, item := range items {
			if err := tx.Products().AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
				return apperr.Internal("failed to decrement stock", err)
			}
		}

		if err := tx.Orders().UpdateStatus(ctx, order.ID, models.OrderStatusPaid); err != nil {
			return apperr.Internal("failed to update order status", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("order marked as paid", zap.Int64("order_id", orderID))
	return nil
}

func (s *OrderService) orderView(ctx context.Context, st store.Store, order *models.Order) (*models.OrderView, error) {
	items, err := st.Orders().ListItems(ctx, order.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list order items", err)
	}

	view := &models.OrderView{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		OrderDate:   order.OrderDate,
		TotalAmount: order.TotalAmount,
		Items:       []models.OrderItemView{},
	}
	for _, item := range items {
		view.Items = append(view.Items, models.OrderItemView{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			PriceAtOrder: item.PriceAtOrder,
			Quantity:     item.Quantity,
			Subtotal:     item.PriceAtOrder * float64(item.Quantity),
		})
		view.TotalItems += item.Quantity
	}
	return view, nil
}
