package models

import "time"

// Product is the model for the 'products' table.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
	StockQty    int     `json:"stockQuantity" db:"stock_quantity"`
	CategoryID  int64   `json:"categoryId" db:"category_id"`
	ImageURL    *string `json:"imageUrl,omitempty" db:"image_url"`
	VideoURL    *string `json:"videoUrl,omitempty" db:"video_url"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joined field (not in DB table, populated by queries)
	CategoryName string `json:"categoryName,omitempty" db:"-"`
}

// --- API Input Structs ---

type ProductInput struct {
	Name        string  `json:"name" binding:"required,min=2,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	StockQty    int     `json:"stockQuantity" binding:"gte=0"`
	CategoryID  int64   `json:"categoryId" binding:"required"`
	ImageURL    *string `json:"imageUrl" binding:"omitempty,url"`
	VideoURL    *string `json:"videoUrl" binding:"omitempty,url"`
}

// ListProductsParams carries the query options for paginated product listings.
type ListProductsParams struct {
	Page       int
	Size       int
	SortField  string // "name", "price" or "created_at"
	SortDesc   bool
	CategoryID int64 // 0 means "all categories"
}
