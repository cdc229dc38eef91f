package adapters

import (
	"context"

	catalogsvc "sirkap_backend/internal/catalog/service"
	"sirkap_backend/internal/quotes/domain"
	quotesvc "sirkap_backend/internal/quotes/service"

	"github.com/google/uuid"
)

// CatalogSnapshotResolver adapts the catalog service for the quotes domain,
// satisfying quotes/service.SnapshotResolver.
type CatalogSnapshotResolver struct {
	svc *catalogsvc.Service
}

// NewCatalogSnapshotResolver creates a new resolver adapter.
func NewCatalogSnapshotResolver(svc *catalogsvc.Service) *CatalogSnapshotResolver {
	return &CatalogSnapshotResolver{svc: svc}
}

var _ quotesvc.SnapshotResolver = (*CatalogSnapshotResolver)(nil)

// ResolveSnapshot copies a product into a line-item snapshot. A missing
// product surfaces as the catalog's NotFound error.
func (a *CatalogSnapshotResolver) ResolveSnapshot(ctx context.Context, productID uuid.UUID) (domain.ItemSnapshot, error) {
	snap, err := a.svc.ResolveSnapshot(ctx, productID)
	if err != nil {
		return domain.ItemSnapshot{}, err
	}
	return domain.ItemSnapshot{
		ItemName:            snap.ItemName,
		Description:         snap.Description,
		Origin:              snap.Origin,
		Unit:                snap.Unit,
		OriginalUnitPrice:   snap.OriginalUnitPrice,
		DiscountedUnitPrice: snap.DiscountedUnitPrice,
		CostPrice:           snap.CostPrice,
		ImageURL:            snap.ImageURL,
	}, nil
}
