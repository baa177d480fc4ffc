package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/apperr"
	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store"
)

// CartService owns the single active cart per user.
type CartService struct {
	store  store.Store
	logger *zap.Logger
}

func NewCartService(st store.Store, logger *zap.Logger) *CartService {
	return &CartService{store: st, logger: logger}
}

// getOrCreateCart finds the user's cart, creating an empty one on first
// access.
func (s *CartService) getOrCreateCart(ctx context.Context, st store.Store, userID int64) (*models.Cart, error) {
	cart, err := st.Carts().GetByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal("failed to load cart", err)
	}

	cart = &models.Cart{UserID: userID}
	if err := st.Carts().Create(ctx, cart); err != nil {
		return nil, apperr.Internal("failed to create cart", err)
	}
	return cart, nil
}

// GetCart returns the user's cart view, creating the cart if absent.
func (s *CartService) GetCart(ctx context.Context, userID int64) (*models.CartView, error) {
	cart, err := s.getOrCreateCart(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	return s.cartView(ctx, s.store, cart)
}

// AddItem puts quantity units of a product into the user's cart. If the
// product is already in the cart the quantities accumulate on the one
// existing row. The stock check compares existing+requested against the
// product's current stock; it is advisory only - nothing is reserved
// until payment confirmation.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartView, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be greater than zero")
	}

	var view *models.CartView
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		cart, err := s.getOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		product, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("product not found with id: %d", productID)
			}
			return apperr.Internal("failed to load product", err)
		}

		existing, err := tx.Carts().GetItemByProduct(ctx, cart.ID, productID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return apperr.Internal("failed to load cart item", err)
		}

		existingQty := 0
		if existing != nil {
			existingQty = existing.Quantity
		}
		totalQty := existingQty + quantity
		if product.StockQty < totalQty {
			return apperr.Conflict(
				"insufficient stock. available: %d, already in cart: %d, requested: %d",
				product.StockQty, existingQty, quantity)
		}

		if existing != nil {
			if err := tx.Carts().UpdateItemQuantity(ctx, existing.ID, totalQty); err != nil {
				return apperr.Internal("failed to update cart item", err)
			}
		} else {
			item := &models.CartItem{
				CartID:     cart.ID,
				ProductID:  productID,
				Quantity:   quantity,
				PriceAtAdd: product.Price, // snapshot, never recomputed
			}
			if err := tx.Carts().CreateItem(ctx, item); err != nil {
				return apperr.Internal("failed to create cart item", err)
			}
		}

		view, err = s.cartView(ctx, tx, cart)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateItemQuantity replaces the quantity of one cart item. A foreign or
// absent item id is NotFound either way, so callers cannot probe for other
// users' items. The new quantity is deliberately not re-validated against
// current stock; the authoritative check happens at payment confirmation.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID int64, quantity int) (*models.CartView, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be greater than zero")
	}

	item, err := s.store.Carts().GetItemForUser(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("cart item not found with id: %d", itemID)
		}
		return nil, apperr.Internal("failed to load cart item", err)
	}

	if err := s.store.Carts().UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, apperr.Internal("failed to update cart item", err)
	}

	return s.refreshedView(ctx, userID)
}

// RemoveItem deletes one cart item, with the same ownership-as-NotFound
// rule as UpdateItemQuantity. The returned view is computed from a fresh
// read of the cart so the deleted row can never reappear in the response.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) (*models.CartView, error) {
	item, err := s.store.Carts().GetItemForUser(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("cart item not found with id: %d", itemID)
		}
		return nil, apperr.Internal("failed to load cart item", err)
	}

	if err := s.store.Carts().DeleteItem(ctx, item.ID); err != nil {
		return nil, apperr.Internal("failed to delete cart item", err)
	}

	return s.refreshedView(ctx, userID)
}

// ClearCart deletes every item of the user's cart. Clearing an empty or
// absent cart is a no-op.
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	cart, err := s.store.Carts().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return apperr.Internal("failed to load cart", err)
	}
	if err := s.store.Carts().DeleteItems(ctx, cart.ID); err != nil {
		return apperr.Internal("failed to clear cart", err)
	}
	return nil
}

func (s *CartService) refreshedView(ctx context.Context, userID int64) (*models.CartView, error) {
	cart, err := s.store.Carts().GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to reload cart", err)
	}
	return s.cartView(ctx, s.store, cart)
}

// cartView reads the cart's items back from the store and recomputes the
// totals: per-item subtotal = price-at-add x quantity, cart total = sum of
// subtotals, item count = sum of quantities.
func (s *CartService) cartView(ctx context.Context, st store.Store, cart *models.Cart) (*models.CartView, error) {
	items, err := st.Carts().ListItems(ctx, cart.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list cart items", err)
	}

	view := &models.CartView{
		ID:     cart.ID,
		UserID: cart.UserID,
		Items:  []models.CartItemView{},
	}
	for _, item := range items {
		subtotal := item.PriceAtAdd * float64(item.Quantity)
		view.Items = append(view.Items, models.CartItemView{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			PriceAtAdd:  item.PriceAtAdd,
			Quantity:    item.Quantity,
			Subtotal:    subtotal,
		})
		view.TotalAmount += subtotal
		view.TotalItems += item.Quantity
	}
	return view, nil
}
