package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store"
)

type productStore struct {
	q    queryer
	inTx bool
}

const productColumns = `
	p.id, p.name, p.description, p.price, p.stock_quantity, p.category_id,
	p.image_url, p.video_url, p.created_at, p.updated_at, c.name`

func (s *productStore) Create(ctx context.Context, p *models.Product) error {
	now := time.Now()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO products (name, description, price, stock_quantity, category_id,
			image_url, video_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Price, p.StockQty, p.CategoryID,
		p.ImageURL, p.VideoURL, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (s *productStore) Delete(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
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

func (s *productStore) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.getByID(ctx, id, false)
}

func (s *productStore) GetByIDForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	return s.getByID(ctx, id, s.inTx)
}

func (s *productStore) getByID(ctx context.Context, id int64, lock bool) (*models.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products p
		JOIN categories c ON p.category_id = c.id
		WHERE p.id = ?`
	if lock {
		query += " FOR UPDATE"
	}

	var p models.Product
	err := s.q.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQty, &p.CategoryID,
		&p.ImageURL, &p.VideoURL, &p.CreatedAt, &p.UpdatedAt, &p.CategoryName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// sortColumn whitelists sortable fields so the ORDER BY clause is never
// built from raw client input.
func sortColumn(field string) string {
	switch field {
	case "name":
		return "p.name"
	case "price":
		return "p.price"
	default:
		return "p.created_at"
	}
}

func (s *productStore) List(ctx context.Context, params models.ListProductsParams) ([]models.Product, int64, error) {
	where := ""
	args := []any{}
	if params.CategoryID > 0 {
		where = " WHERE p.category_id = ?"
		args = append(args, params.CategoryID)
	}

	var total int64
	if err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products p"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if params.SortDesc {
		dir = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT`+productColumns+`
		FROM products p
		JOIN categories c ON p.category_id = c.id
		%s
		ORDER BY %s %s
		LIMIT ? OFFSET ?`, where, sortColumn(params.SortField), dir)
	args = append(args, params.Size, params.Page*params.Size)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQty,
			&p.CategoryID, &p.ImageURL, &p.VideoURL, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (s *productStore) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE category_id = ?", categoryID).Scan(&n)
	return n, err
}

func (s *productStore) AdjustStock(ctx context.Context, id int64, delta int) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + ?, updated_at = ?
		WHERE id = ?`, delta, time.Now(), id)
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

func (s *productStore) IsReferenced(ctx context.Context, id int64) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM cart_items WHERE product_id = ?) +
			(SELECT COUNT(*) FROM order_items WHERE product_id = ?)`,
		id, id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
