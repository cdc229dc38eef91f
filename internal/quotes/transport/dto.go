package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of issue dates.
const DateLayout = "2006-01-02"

// ── Requests ──────────────────────────────────────────────────────────────────

// QuoteItemRequest is the input for a single line item. A catalog line may
// carry only productId and quantity; the remaining snapshot is resolved
// server-side. Row totals sent by clients are ignored.
type QuoteItemRequest struct {
	ProductID           *uuid.UUID       `json:"productId"`
	ItemName            string           `json:"itemName" validate:"max=255"`
	Description         string           `json:"description"`
	Origin              string           `json:"origin" validate:"max=100"`
	Unit                string           `json:"unit" validate:"max=50"`
	Quantity            decimal.Decimal  `json:"quantity"`
	OriginalUnitPrice   *decimal.Decimal `json:"originalUnitPrice"`
	DiscountedUnitPrice *decimal.Decimal `json:"discountedUnitPrice"`
	CostPrice           *decimal.Decimal `json:"costPrice"`
	ImageURL            *string          `json:"imageUrl" validate:"omitempty,max=2000"`
}

// UnmarshalJSON accepts the legacy snake_case names older builders still send.
func (r *QuoteItemRequest) UnmarshalJSON(data []byte) error {
	type plain QuoteItemRequest
	var aux struct {
		plain
		ProductIDLegacy     *uuid.UUID       `json:"product_id"`
		ItemNameLegacy      *string          `json:"item_name"`
		DescriptionOverride *string          `json:"description_override"`
		OriginSnapshot      *string          `json:"origin_snapshot"`
		UnitOfMeasure       *string          `json:"unit_of_measure"`
		BasePrice           *decimal.Decimal `json:"basePrice"`
		BasePriceLegacy     *decimal.Decimal `json:"base_price"`
		OriginalLegacy      *decimal.Decimal `json:"original_unit_price"`
		DiscountedLegacy    *decimal.Decimal `json:"discounted_unit_price"`
		CostLegacy          *decimal.Decimal `json:"cost_price_snapshot"`
		ImageLegacy         *string          `json:"image_url"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = QuoteItemRequest(aux.plain)
	if r.ProductID == nil {
		r.ProductID = aux.ProductIDLegacy
	}
	fillString(&r.ItemName, aux.ItemNameLegacy)
	fillString(&r.Description, aux.DescriptionOverride)
	fillString(&r.Origin, aux.OriginSnapshot)
	fillString(&r.Unit, aux.UnitOfMeasure)
	r.OriginalUnitPrice = firstDecimal(r.OriginalUnitPrice, aux.OriginalLegacy, aux.BasePrice, aux.BasePriceLegacy)
	r.DiscountedUnitPrice = firstDecimal(r.DiscountedUnitPrice, aux.DiscountedLegacy)
	r.CostPrice = firstDecimal(r.CostPrice, aux.CostLegacy)
	if r.ImageURL == nil {
		r.ImageURL = aux.ImageLegacy
	}
	return nil
}

func fillString(dst *string, legacy *string) {
	if *dst == "" && legacy != nil {
		*dst = *legacy
	}
}

func firstDecimal(values ...*decimal.Decimal) *decimal.Decimal {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// QuoteRequest is the request body for creating or updating a draft quote.
// Quote number, version, status, totals and creator are server-assigned.
type QuoteRequest struct {
	ClientID           uuid.UUID          `json:"clientId"`
	ProjectName        string             `json:"projectName" validate:"max=255"`
	DateIssued         string             `json:"dateIssued"`
	VATApplicable      *bool              `json:"vatApplicable"`
	DeliveryApplicable bool               `json:"deliveryApplicable"`
	DeliveryCharge     decimal.Decimal    `json:"deliveryCharge"`
	TermsID            *uuid.UUID         `json:"termsId"`
	TermsContent       string             `json:"termsContent"`
	Items              []QuoteItemRequest `json:"items" validate:"dive"`
}

// IsVATApplicable defaults to true when the flag is omitted.
func (r QuoteRequest) IsVATApplicable() bool {
	return r.VATApplicable == nil || *r.VATApplicable
}

// CalculateRequest previews totals without persisting anything.
type CalculateRequest struct {
	VATApplicable      *bool              `json:"vatApplicable"`
	DeliveryApplicable bool               `json:"deliveryApplicable"`
	DeliveryCharge     decimal.Decimal    `json:"deliveryCharge"`
	Items              []QuoteItemRequest `json:"items" validate:"dive"`
}

// IsVATApplicable defaults to true when the flag is omitted.
func (r CalculateRequest) IsVATApplicable() bool {
	return r.VATApplicable == nil || *r.VATApplicable
}

// UpdateStatusRequest moves a quote through its workflow. TermsConfirmed is
// only consulted when finalizing a draft and is never stored.
type UpdateStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TermsConfirmed bool   `json:"termsConfirmed"`
}

// SendQuoteRequest finalizes a draft.
type SendQuoteRequest struct {
	TermsConfirmed bool `json:"termsConfirmed"`
}

// ListQuotesRequest contains query parameters for listing quotes
type ListQuotesRequest struct {
	Status   string `form:"status"`
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// Money is a decimal amount serialized as a JSON number with two decimals.
type Money decimal.Decimal

// MarshalJSON renders the amount with exactly two fraction digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

// UnmarshalJSON accepts a number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

// Decimal returns the underlying value.
func (m Money) Decimal() decimal.Decimal { return decimal.Decimal(m) }

// QuoteItemResponse is a line item as returned by the API.
type QuoteItemResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Source              string     `json:"source"`
	ProductID           *uuid.UUID `json:"productId"`
	ItemName            string     `json:"itemName"`
	Description         string     `json:"description"`
	Origin              string     `json:"origin"`
	Unit                string     `json:"unit"`
	Quantity            Money      `json:"quantity"`
	OriginalUnitPrice   Money      `json:"originalUnitPrice"`
	DiscountedUnitPrice Money      `json:"discountedUnitPrice"`
	CostPrice           Money      `json:"costPrice"`
	RowTotal            Money      `json:"rowTotal"`
	ImageURL            *string    `json:"imageUrl,omitempty"`
}

// TotalsResponse is the derived money summary of a quote.
type TotalsResponse struct {
	Subtotal      Money `json:"subtotal"`
	VAT           Money `json:"vat"`
	Delivery      Money `json:"delivery"`
	GrandTotal    Money `json:"grandTotal"`
	TotalCost     Money `json:"totalCost"`
	Profit        Money `json:"profit"`
	MarginPercent Money `json:"marginPercent"`
}

// QuoteResponse is one quote version with items and totals.
type QuoteResponse struct {
	ID                 uuid.UUID           `json:"id"`
	ParentQuoteID      *uuid.UUID          `json:"parentQuoteId"`
	QuoteNumber        string              `json:"quoteNumber"`
	VersionNumber      int                 `json:"versionNumber"`
	ClientID           uuid.UUID           `json:"clientId"`
	ProjectName        string              `json:"projectName"`
	DateIssued         string              `json:"dateIssued"`
	Status             string              `json:"status"`
	VATApplicable      bool                `json:"vatApplicable"`
	DeliveryApplicable bool                `json:"deliveryApplicable"`
	DeliveryCharge     Money               `json:"deliveryCharge"`
	TermsID            *uuid.UUID          `json:"termsId"`
	TermsContent       string              `json:"termsContent"`
	CreatedBy          uuid.UUID           `json:"createdBy"`
	HasRevision        bool                `json:"hasRevision"`
	Items              []QuoteItemResponse `json:"items"`
	Totals             TotalsResponse      `json:"totals"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// QuoteSummaryResponse is a list row.
type QuoteSummaryResponse struct {
	ID            uuid.UUID  `json:"id"`
	ParentQuoteID *uuid.UUID `json:"parentQuoteId"`
	QuoteNumber   string     `json:"quoteNumber"`
	VersionNumber int        `json:"versionNumber"`
	ClientID      uuid.UUID  `json:"clientId"`
	CompanyName   string     `json:"companyName"`
	ContactPerson *string    `json:"contactPerson"`
	ProjectName   string     `json:"projectName"`
	DateIssued    string     `json:"dateIssued"`
	Status        string     `json:"status"`
	GrandTotal    Money      `json:"grandTotal"`
	CreatedBy     uuid.UUID  `json:"createdBy"`
	CreatorName   string     `json:"creatorName"`
	HasRevision   bool       `json:"hasRevision"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// QuoteListResponse is a page of quotes.
type QuoteListResponse struct {
	Items    []QuoteSummaryResponse `json:"items"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}

// CreatedQuoteResponse identifies a newly stored quote version.
type CreatedQuoteResponse struct {
	ID            uuid.UUID  `json:"id"`
	ParentQuoteID *uuid.UUID `json:"parentQuoteId,omitempty"`
	QuoteNumber   string     `json:"quoteNumber"`
	VersionNumber int        `json:"versionNumber"`
	Status        string     `json:"status"`
}

// NextNumberResponse is a non-binding preview of the next quote number.
type NextNumberResponse struct {
	QuoteNumber string `json:"quoteNumber"`
}

// CalculationResponse mirrors what would be persisted for the same input.
type CalculationResponse struct {
	Items  []QuoteItemResponse `json:"items"`
	Totals TotalsResponse      `json:"totals"`
}

// MonthlyAmountResponse is one point of the pipeline chart.
type MonthlyAmountResponse struct {
	Month  string `json:"month"`
	Amount Money  `json:"amount"`
}

// StatsResponse summarizes the quote pipeline for the dashboard.
type StatsResponse struct {
	TotalQuotes    int                     `json:"totalQuotes"`
	ActiveQuotes   int                     `json:"activeQuotes"`
	ApprovedQuotes int                     `json:"approvedQuotes"`
	RejectedQuotes int                     `json:"rejectedQuotes"`
	DraftQuotes    int                     `json:"draftQuotes"`
	Pipeline       Money                   `json:"pipeline"`
	Revenue        Money                   `json:"revenue"`
	ConversionRate int                     `json:"conversionRate"`
	TotalClients   int                     `json:"totalClients"`
	PipelineData   []MonthlyAmountResponse `json:"pipelineData"`
	RecentQuotes   []QuoteSummaryResponse  `json:"recentQuotes"`
}
