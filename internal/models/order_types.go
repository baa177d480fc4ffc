package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// CanTransitionTo reports whether moving from s to next is a legal edge.
// The forward chain is PENDING -> PAID -> PROCESSING -> SHIPPED -> DELIVERED;
// the only other edge is PENDING -> CANCELLED.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPaid || next == OrderStatusCancelled
	case OrderStatusPaid:
		return next == OrderStatusProcessing
	case OrderStatusProcessing:
		return next == OrderStatusShipped
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	default:
		return false
	}
}

// Order is the model for the 'orders' table. Immutable after creation
// except for Status. TotalAmount is stored at order time, never derived
// on read.
type Order struct {
	ID          int64       `json:"id" db:"id"`
	UserID      int64       `json:"userId" db:"user_id"`
	Status      OrderStatus `json:"status" db:"status"`
	TotalAmount float64     `json:"totalAmount" db:"total_amount"`
	OrderDate   time.Time   `json:"orderDate" db:"order_date"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem is the model for the 'order_items' table. PriceAtOrder is the
// snapshot copied from the originating cart item.
type OrderItem struct {
	ID           int64   `json:"id" db:"id"`
	OrderID      int64   `json:"orderId" db:"order_id"`
	ProductID    int64   `json:"productId" db:"product_id"`
	Quantity     int     `json:"quantity" db:"quantity"`
	PriceAtOrder float64 `json:"priceAtOrder" db:"price_at_order"`

	// Joined field (populated by queries)
	ProductName string `json:"productName,omitempty" db:"-"`
}

// --- API Output Structs ---

type OrderItemView struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"productId"`
	ProductName  string  `json:"productName"`
	PriceAtOrder float64 `json:"priceAtOrder"`
	Quantity     int     `json:"quantity"`
	Subtotal     float64 `json:"subtotal"`
}

type OrderView struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Status      OrderStatus     `json:"status"`
	OrderDate   time.Time       `json:"orderDate"`
	Items       []OrderItemView `json:"items"`
	TotalAmount float64         `json:"totalAmount"`
	TotalItems  int             `json:"totalItems"`
}
