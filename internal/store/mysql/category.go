package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store"
)

type categoryStore struct {
	q queryer
}

func (s *categoryStore) Create(ctx context.Context, cat *models.Category) error {
	now := time.Now()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO categories (name, slug, description, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		cat.Name, cat.Slug, cat.Description, cat.ImageURL, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cat.ID = id
	cat.CreatedAt = now
	cat.UpdatedAt = now
	return nil
}

func (s *categoryStore) Update(ctx context.Context, cat *models.Category) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, slug = ?, description = ?, image_url = ?, updated_at = ?
		WHERE id = ?`,
		cat.Name, cat.Slug, cat.Description, cat.ImageURL, time.Now(), cat.ID)
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

func (s *categoryStore) Delete(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
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

func (s *categoryStore) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var cat models.Category
	err := s.q.QueryRowContext(ctx, `
		SELECT id, name, slug, description, image_url, created_at, updated_at
		FROM categories WHERE id = ?`, id).Scan(
		&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.ImageURL,
		&cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

func (s *categoryStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE name = ?", name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *categoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, slug, description, image_url, created_at, updated_at
		FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description,
			&cat.ImageURL, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}
