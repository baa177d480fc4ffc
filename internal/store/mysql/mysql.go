// Package mysql implements the store interfaces over database/sql with
// the MySQL driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mwarren02/storefront-api/internal/store"
)

// queryer is satisfied by both *sql.DB and *sql.Tx so every store method
// works inside and outside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB // nil when this Store is a transactional view
	q  queryer
}

func New(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) Users() store.UserStore         { return &userStore{q: s.q} }
func (s *Store) Categories() store.CategoryStore { return &categoryStore{q: s.q} }
func (s *Store) Products() store.ProductStore   { return &productStore{q: s.q, inTx: s.db == nil} }
func (s *Store) Carts() store.CartStore         { return &cartStore{q: s.q} }
func (s *Store) Orders() store.OrderStore       { return &orderStore{q: s.q, inTx: s.db == nil} }

// WithinTx runs fn against a transactional view of the store. A nested
// call joins the enclosing transaction instead of opening a new one.
func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // Safety net; no-op after commit

	if err := fn(&Store{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
