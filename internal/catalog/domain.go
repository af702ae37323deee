package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/atelier-store/atelier/internal/inventory"
)

// Product is a storefront product. Stock is the aggregate counter; per-size
// counters live on SizeVariant. Catalog rows are managed elsewhere; this
// package only reads them.
type Product struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Brand         string    `json:"brand"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"original_price,omitempty"`
	Stock         int       `json:"stock"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SizeVariant is one size of a product with its own stock counter.
type SizeVariant struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Stock     int       `json:"stock"`
}

// ListFilters narrows the inventory dashboard listing.
type ListFilters struct {
	Status    inventory.StockStatus
	Search    string
	Page      int
	PerPage   int
	Threshold int
}

// ProductSummary decorates a product for the inventory dashboard.
type ProductSummary struct {
	Product
	StockStatus inventory.StockStatus `json:"stock_status"`
	HasVariants bool                  `json:"has_variants"`
	Sizes       []SizeVariant         `json:"sizes,omitempty"`
}
