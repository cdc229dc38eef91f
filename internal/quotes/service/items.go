package service

import (
	"context"
	"fmt"

	"sirkap_backend/internal/quotes/domain"
	"sirkap_backend/internal/quotes/transport"
	"sirkap_backend/platform/apperr"
	"sirkap_backend/platform/sanitize"

	"github.com/google/uuid"
)

// resolveItems turns item payloads into line items. Catalog lines that omit
// their snapshot are filled from the catalog; fields the client did send win,
// so a draft line keeps the price it was added at. Row totals are left to the
// calculator.
func (s *Service) resolveItems(ctx context.Context, reqs []transport.QuoteItemRequest) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, len(reqs))
	var violations []apperr.FieldError

	for i, r := range reqs {
		field := fmt.Sprintf("items[%d].", i)
		item := domain.LineItem{
			ID:       uuid.New(),
			Source:   domain.BespokeSource(),
			Quantity: r.Quantity,
		}
		items[i] = item

		var snap domain.ItemSnapshot
		if r.ProductID != nil && *r.ProductID != uuid.Nil {
			item.Source = domain.CatalogSource(*r.ProductID)
			if needsSnapshot(r) {
				resolved, err := s.resolveSnapshot(ctx, *r.ProductID)
				if apperr.Is(err, apperr.KindNotFound) {
					violations = append(violations, apperr.FieldError{Field: field + "productId", Message: "product does not exist"})
					continue
				}
				if err != nil {
					return nil, err
				}
				snap = resolved
			}
		}

		overlay(&snap, r)
		if snap.ItemName == "" {
			violations = append(violations, apperr.FieldError{Field: field + "itemName", Message: "is required"})
		}
		item.ItemSnapshot = snap
		items[i] = item
	}

	if len(violations) > 0 {
		return items, apperr.ValidationFields(violations)
	}
	return items, nil
}

func (s *Service) resolveSnapshot(ctx context.Context, productID uuid.UUID) (domain.ItemSnapshot, error) {
	if s.catalog == nil {
		return domain.ItemSnapshot{}, apperr.Internal("catalog lookup is not configured")
	}
	return s.catalog.ResolveSnapshot(ctx, productID)
}

func needsSnapshot(r transport.QuoteItemRequest) bool {
	return r.ItemName == "" || r.OriginalUnitPrice == nil
}

// overlay applies client-supplied fields on top of snap. The discounted price
// defaults to the original price.
func overlay(snap *domain.ItemSnapshot, r transport.QuoteItemRequest) {
	if name := sanitize.Text(r.ItemName); name != "" {
		snap.ItemName = name
	}
	if desc := sanitize.RichText(r.Description); desc != "" {
		snap.Description = desc
	}
	if origin := sanitize.Text(r.Origin); origin != "" {
		snap.Origin = origin
	}
	if unit := sanitize.Text(r.Unit); unit != "" {
		snap.Unit = unit
	}
	if r.ImageURL != nil && *r.ImageURL != "" {
		img := *r.ImageURL
		snap.ImageURL = &img
	}

	if r.OriginalUnitPrice != nil {
		snap.OriginalUnitPrice = *r.OriginalUnitPrice
	}
	switch {
	case r.DiscountedUnitPrice != nil:
		snap.DiscountedUnitPrice = *r.DiscountedUnitPrice
	case r.OriginalUnitPrice != nil:
		snap.DiscountedUnitPrice = *r.OriginalUnitPrice
	}
	if r.CostPrice != nil {
		snap.CostPrice = *r.CostPrice
	}
}
