package models

import "time"

// Cart defines the struct for the 'carts' table. One cart per user,
// created lazily on first access.
type Cart struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItem defines the struct for the 'cart_items' table. At most one row
// per (cart, product) pair; quantities accumulate on repeated adds.
// PriceAtAdd is frozen when the row is created and never recomputed from
// the live product price.
type CartItem struct {
	ID         int64     `json:"id" db:"id"`
	CartID     int64     `json:"cartId" db:"cart_id"`
	ProductID  int64     `json:"productId" db:"product_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	PriceAtAdd float64   `json:"priceAtAdd" db:"price_at_add"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`

	// Joined field (populated by queries)
	ProductName string `json:"productName,omitempty" db:"-"`
}

// --- API Input Structs ---

type AddToCartInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// --- API Output Structs ---

// CartItemView is a single line of the cart as returned to the client.
type CartItemView struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	PriceAtAdd  float64 `json:"priceAtAdd"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// CartView is the full cart response: items plus the recomputed totals.
type CartView struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"userId"`
	Items       []CartItemView `json:"items"`
	TotalAmount float64        `json:"totalAmount"`
	TotalItems  int            `json:"totalItems"`
}
