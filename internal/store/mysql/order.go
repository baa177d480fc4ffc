package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store"
)

type orderStore struct {
	q    queryer
	inTx bool
}

const orderColumns = "id, user_id, status, total_amount, order_date, updated_at"

func (s *orderStore) Create(ctx context.Context, order *models.Order) error {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO orders (user_id, status, total_amount, order_date, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		order.UserID, order.Status, order.TotalAmount, order.OrderDate, order.OrderDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = id
	return nil
}

func (s *orderStore) CreateItem(ctx context.Context, item *models.OrderItem) error {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_order)
		VALUES (?, ?, ?, ?)`,
		item.OrderID, item.ProductID, item.Quantity, item.PriceAtOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

func (s *orderStore) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	return s.scanOne(s.q.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = ?", id))
}

// GetByIDForUpdate locks the order row so concurrent webhook deliveries
// for the same order serialize on the PENDING check.
func (s *orderStore) GetByIDForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE id = ?"
	if s.inTx {
		query += " FOR UPDATE"
	}
	return s.scanOne(s.q.QueryRowContext(ctx, query, id))
}

func (s *orderStore) GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Order, error) {
	return s.scanOne(s.q.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = ? AND user_id = ?", id, userID))
}

func (s *orderStore) scanOne(row *sql.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount, &o.OrderDate, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *orderStore) ListByUser(ctx context.Context, userID int64, page, size int) ([]models.Order, int64, error) {
	var total int64
	if err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE user_id = ?", userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = ?
		ORDER BY order_date DESC, id DESC
		LIMIT ? OFFSET ?`, userID, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount,
			&o.OrderDate, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func (s *orderStore) ListItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_at_order, p.name
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?
		ORDER BY oi.id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.PriceAtOrder, &item.ProductName); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *orderStore) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
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
