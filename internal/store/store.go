// Package store defines the persistence boundary. Two implementations
// exist: store/mysql for production and store/memory for tests.
package store

import (
	"context"
	"errors"

	"github.com/mwarren02/storefront-api/internal/models"
)

// ErrNotFound is returned by lookups when no row matches. Ownership-scoped
// lookups (id AND owner in one predicate) also return it when the row
// exists but belongs to someone else.
var ErrNotFound = errors.New("store: not found")

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type CategoryStore interface {
	Create(ctx context.Context, cat *models.Category) error
	Update(ctx context.Context, cat *models.Category) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]models.Category, error)
}

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// GetByIDForUpdate locks the product row for the duration of the
	// surrounding transaction. Outside a transaction it behaves like
	// GetByID.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, params models.ListProductsParams) ([]models.Product, int64, error)
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
	// AdjustStock applies a delta (negative to decrement) to the stock
	// quantity of the product.
	AdjustStock(ctx context.Context, id int64, delta int) error
	// IsReferenced reports whether any cart item or order item still
	// points at the product.
	IsReferenced(ctx context.Context, id int64) (bool, error)
}

type CartStore interface {
	Create(ctx context.Context, cart *models.Cart) error
	GetByUserID(ctx context.Context, userID int64) (*models.Cart, error)
	ListItems(ctx context.Context, cartID int64) ([]models.CartItem, error)
	GetItemByProduct(ctx context.Context, cartID, productID int64) (*models.CartItem, error)
	// GetItemForUser resolves a cart item by id scoped to its owner in a
	// single predicate; a foreign or absent item is ErrNotFound either way.
	GetItemForUser(ctx context.Context, itemID, userID int64) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
	DeleteItems(ctx context.Context, cartID int64) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	CreateItem(ctx context.Context, item *models.OrderItem) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	// GetByIDForUpdate locks the order row for the duration of the
	// surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Order, error)
	GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64, page, size int) ([]models.Order, int64, error)
	ListItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error
}

// Store aggregates the per-entity stores and provides transactional
// composition. WithinTx runs fn against a Store whose operations all join
// one atomic unit: if fn returns an error every change is rolled back.
type Store interface {
	Users() UserStore
	Categories() CategoryStore
	Products() ProductStore
	Carts() CartStore
	Orders() OrderStore
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
