// Package domain provides core business rules for the quotes bounded context.
package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceKind tells whether a line item was priced from the catalog or entered by hand.
type SourceKind string

const (
	SourceCatalog SourceKind = "catalog"
	SourceBespoke SourceKind = "bespoke"
)

// ItemSource identifies where a line item came from. A catalog source always
// carries a product id; a bespoke source never does.
type ItemSource struct {
	Kind      SourceKind
	ProductID uuid.UUID
}

// CatalogSource tags a line as snapshotted from productID.
func CatalogSource(productID uuid.UUID) ItemSource {
	return ItemSource{Kind: SourceCatalog, ProductID: productID}
}

// BespokeSource tags a line as manually entered.
func BespokeSource() ItemSource {
	return ItemSource{Kind: SourceBespoke}
}

// SourceFromProductRef maps a nullable storage column back to a source.
func SourceFromProductRef(ref *uuid.UUID) ItemSource {
	if ref == nil || *ref == uuid.Nil {
		return BespokeSource()
	}
	return CatalogSource(*ref)
}

// IsCatalog reports whether the line is catalog-backed.
func (s ItemSource) IsCatalog() bool {
	return s.Kind == SourceCatalog && s.ProductID != uuid.Nil
}

// ProductRef returns the nullable product reference persisted with the line.
func (s ItemSource) ProductRef() *uuid.UUID {
	if !s.IsCatalog() {
		return nil
	}
	id := s.ProductID
	return &id
}

// ItemSnapshot is the frozen copy of product data stored on a line item.
type ItemSnapshot struct {
	ItemName            string
	Description         string
	Origin              string
	Unit                string
	OriginalUnitPrice   decimal.Decimal
	DiscountedUnitPrice decimal.Decimal
	CostPrice           decimal.Decimal
	ImageURL            *string
}

// LineItem is one priced row of a quotation.
type LineItem struct {
	ID     uuid.UUID
	Source ItemSource
	ItemSnapshot
	Quantity decimal.Decimal
	RowTotal decimal.Decimal
}

// Clone returns a copy of the line under a new identity.
func (l LineItem) Clone() LineItem {
	out := l
	out.ID = uuid.New()
	if l.ImageURL != nil {
		img := *l.ImageURL
		out.ImageURL = &img
	}
	return out
}
