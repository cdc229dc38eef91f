package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"sirkap_backend/internal/catalog/repository"
	"sirkap_backend/internal/catalog/transport"
	"sirkap_backend/platform/logger"
	"sirkap_backend/platform/sanitize"
)

// Service provides business logic for catalog.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetProductByID retrieves a product by ID.
func (s *Service) GetProductByID(ctx context.Context, id uuid.UUID) (transport.ProductResponse, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return transport.ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

// ListProducts retrieves products with search and pagination.
func (s *Service) ListProducts(ctx context.Context, req transport.ListProductsRequest) (transport.ProductListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.repo.ListProducts(ctx, repository.ListProductsParams{
		Search: strings.TrimSpace(req.Search),
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return transport.ProductListResponse{}, err
	}

	responses := make([]transport.ProductResponse, 0, len(items))
	for _, p := range items {
		responses = append(responses, toProductResponse(p))
	}

	return transport.ProductListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// ResolveSnapshot copies the current product data into a line-item snapshot.
// The base price becomes both the original and the initial selling price.
func (s *Service) ResolveSnapshot(ctx context.Context, productID uuid.UUID) (transport.ProductSnapshot, error) {
	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return transport.ProductSnapshot{}, err
	}
	return toSnapshot(product), nil
}

func toSnapshot(p repository.Product) transport.ProductSnapshot {
	return transport.ProductSnapshot{
		ProductID:           p.ID,
		ItemName:            p.ItemName,
		Description:         sanitize.RichText(deref(p.Description)),
		Origin:              deref(p.Origin),
		Unit:                p.Unit,
		OriginalUnitPrice:   p.BasePrice,
		DiscountedUnitPrice: p.BasePrice,
		CostPrice:           p.CostPrice,
		ImageURL:            p.ImageURL,
	}
}

func toProductResponse(p repository.Product) transport.ProductResponse {
	return transport.ProductResponse{
		ID:          p.ID,
		ItemName:    p.ItemName,
		Description: sanitize.RichText(deref(p.Description)),
		Origin:      deref(p.Origin),
		Unit:        p.Unit,
		BasePrice:   p.BasePrice,
		CostPrice:   p.CostPrice,
		ImageURL:    p.ImageURL,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
