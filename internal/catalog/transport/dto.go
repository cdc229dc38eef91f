package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListProductsRequest defines query params for the product picker.
type ListProductsRequest struct {
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ProductResponse is a catalog product as shown to sales users.
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	ItemName    string          `json:"itemName"`
	Description string          `json:"description"`
	Origin      string          `json:"origin"`
	Unit        string          `json:"unit"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	CostPrice   decimal.Decimal `json:"costPrice"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
}

// ProductListResponse is a page of products.
type ProductListResponse struct {
	Items      []ProductResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// ProductSnapshot is the frozen line-item copy of a product.
type ProductSnapshot struct {
	ProductID           uuid.UUID       `json:"productId"`
	ItemName            string          `json:"itemName"`
	Description         string          `json:"description"`
	Origin              string          `json:"origin"`
	Unit                string          `json:"unit"`
	OriginalUnitPrice   decimal.Decimal `json:"originalUnitPrice"`
	DiscountedUnitPrice decimal.Decimal `json:"discountedUnitPrice"`
	CostPrice           decimal.Decimal `json:"costPrice"`
	ImageURL            *string         `json:"imageUrl,omitempty"`
}
