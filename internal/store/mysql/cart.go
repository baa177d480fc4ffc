package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store"
)

type cartStore struct {
	q queryer
}

func (s *cartStore) Create(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO carts (user_id, created_at, updated_at) VALUES (?, ?, ?)`,
		cart.UserID, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cart.ID = id
	cart.CreatedAt = now
	cart.UpdatedAt = now
	return nil
}

func (s *cartStore) GetByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	var cart models.Cart
	err := s.q.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = ?`,
		userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

func (s *cartStore) ListItems(ctx context.Context, cartID int64) ([]models.CartItem, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.price_at_add,
			ci.created_at, ci.updated_at, p.name
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = ?
		ORDER BY ci.id ASC`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.PriceAtAdd, &item.CreatedAt, &item.UpdatedAt, &item.ProductName); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *cartStore) GetItemByProduct(ctx context.Context, cartID, productID int64) (*models.CartItem, error) {
	return s.scanItem(s.q.QueryRowContext(ctx, `
		SELECT id, cart_id, product_id, quantity, price_at_add, created_at, updated_at
		FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID))
}

// GetItemForUser joins through carts so that "absent" and "owned by someone
// else" are a single NOT FOUND outcome decided by one query predicate.
func (s *cartStore) GetItemForUser(ctx context.Context, itemID, userID int64) (*models.CartItem, error) {
	return s.scanItem(s.q.QueryRowContext(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.price_at_add,
			ci.created_at, ci.updated_at
		FROM cart_items ci
		JOIN carts c ON ci.cart_id = c.id
		WHERE ci.id = ? AND c.user_id = ?`, itemID, userID))
}

func (s *cartStore) scanItem(row *sql.Row) (*models.CartItem, error) {
	var item models.CartItem
	err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
		&item.PriceAtAdd, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *cartStore) CreateItem(ctx context.Context, item *models.CartItem) error {
	now := time.Now()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, price_at_add, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.CartID, item.ProductID, item.Quantity, item.PriceAtAdd, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (s *cartStore) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ?`,
		quantity, time.Now(), itemID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *cartStore) DeleteItem(ctx context.Context, itemID int64) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM cart_items WHERE id = ?", itemID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteItems clears a cart. Deleting an already-empty cart is a no-op.
func (s *cartStore) DeleteItems(ctx context.Context, cartID int64) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = ?", cartID)
	return err
}
