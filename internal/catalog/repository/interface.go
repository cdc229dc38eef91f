package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog product.
type Product struct {
	ID          uuid.UUID       `db:"id"`
	ItemName    string          `db:"item_name"`
	Description *string         `db:"product_description"`
	Origin      *string         `db:"origin"`
	Unit        string          `db:"unit"`
	BasePrice   decimal.Decimal `db:"base_price"`
	CostPrice   decimal.Decimal `db:"cost_price"`
	ImageURL    *string         `db:"image_url"`
}

// ListProductsParams defines filters for listing products.
type ListProductsParams struct {
	Search string
	Offset int
	Limit  int
}

// Repository defines the read access the quotation builder needs on the catalog.
type Repository interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]Product, int, error)
}
