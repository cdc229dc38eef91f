package adapters

import (
	"context"

	"sirkap_backend/internal/pdf"
	"sirkap_backend/internal/quotes/domain"
	quotesvc "sirkap_backend/internal/quotes/service"
	"sirkap_backend/internal/quotes/transport"
)

// QuotePDFRenderer maps quotes onto the pdf package's document model,
// satisfying quotes/service.PDFRenderer. Cost prices never reach the document.
type QuotePDFRenderer struct {
	renderer *pdf.Renderer
}

// NewQuotePDFRenderer creates a new renderer adapter.
func NewQuotePDFRenderer(renderer *pdf.Renderer) *QuotePDFRenderer {
	return &QuotePDFRenderer{renderer: renderer}
}

var _ quotesvc.PDFRenderer = (*QuotePDFRenderer)(nil)

// RenderQuote renders one quote version.
func (a *QuotePDFRenderer) RenderQuote(ctx context.Context, doc quotesvc.PDFDocument) ([]byte, error) {
	return a.renderer.Render(ctx, toQuoteDocument(doc))
}

func toQuoteDocument(doc quotesvc.PDFDocument) pdf.QuoteDocument {
	q := doc.Quote
	items := make([]pdf.DocumentItem, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, pdf.DocumentItem{
			Name:                it.ItemName,
			DescriptionHTML:     it.Description,
			Origin:              it.Origin,
			Unit:                it.Unit,
			Quantity:            it.Quantity,
			OriginalUnitPrice:   it.OriginalUnitPrice,
			DiscountedUnitPrice: it.DiscountedUnitPrice,
			RowTotal:            it.RowTotal,
		})
	}

	return pdf.QuoteDocument{
		OrgName:       doc.OrgName,
		QuoteNumber:   q.QuoteNumber,
		VersionNumber: q.VersionNumber,
		DateIssued:    q.DateIssued.Format(transport.DateLayout),
		Status:        string(q.Status),
		IsDraft:       q.Status == domain.StatusDraft,
		ProjectName:   q.ProjectName,
		PreparedBy:    doc.PreparedBy,
		Client: pdf.DocumentClient{
			CompanyName:   doc.Client.CompanyName,
			ContactPerson: deref(doc.Client.ContactPerson),
			Email:         deref(doc.Client.Email),
			Phone:         deref(doc.Client.Phone),
			Address:       deref(doc.Client.Address),
			VATNumber:     deref(doc.Client.VATNumber),
		},
		Items:              items,
		VATApplicable:      q.VATApplicable,
		DeliveryApplicable: q.DeliveryApplicable,
		Subtotal:           doc.Totals.Subtotal,
		VAT:                doc.Totals.VAT,
		Delivery:           doc.Totals.Delivery,
		GrandTotal:         doc.Totals.GrandTotal,
		TermsHTML:          q.TermsContent,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
