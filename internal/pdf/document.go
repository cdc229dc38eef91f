// Package pdf renders quotation documents. Gotenberg converts an HTML
// rendition when configured; gofpdf renders in-process otherwise.
package pdf

import (
	"github.com/shopspring/decimal"
)

// QuoteDocument holds everything printed on a quotation. It carries no
// cost prices.
type QuoteDocument struct {
	OrgName       string
	QuoteNumber   string
	VersionNumber int
	DateIssued    string
	Status        string
	IsDraft       bool
	ProjectName   string
	PreparedBy    string

	Client DocumentClient
	Items  []DocumentItem

	VATApplicable      bool
	DeliveryApplicable bool
	Subtotal           decimal.Decimal
	VAT                decimal.Decimal
	Delivery           decimal.Decimal
	GrandTotal         decimal.Decimal

	// TermsHTML is sanitized rich text.
	TermsHTML string
}

// DocumentClient is the addressee block.
type DocumentClient struct {
	CompanyName   string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	VATNumber     string
}

// DocumentItem is one printed line.
type DocumentItem struct {
	Name string
	// DescriptionHTML is sanitized rich text.
	DescriptionHTML     string
	Origin              string
	Unit                string
	Quantity            decimal.Decimal
	OriginalUnitPrice   decimal.Decimal
	DiscountedUnitPrice decimal.Decimal
	RowTotal            decimal.Decimal
}

// IsDiscounted reports whether the original price is shown struck through.
func (i DocumentItem) IsDiscounted() bool {
	return i.DiscountedUnitPrice.LessThan(i.OriginalUnitPrice)
}
