package service

import (
	"sirkap_backend/internal/quotes/domain"
	"sirkap_backend/internal/quotes/repository"
	"sirkap_backend/internal/quotes/transport"

	"github.com/shopspring/decimal"
)

func toQuoteResponse(q *domain.Quote, hasRevision bool) transport.QuoteResponse {
	items := make([]transport.QuoteItemResponse, 0, len(q.Items))
	for _, item := range q.Items {
		items = append(items, toItemResponse(item))
	}

	return transport.QuoteResponse{
		ID:                 q.ID,
		ParentQuoteID:      q.ParentQuoteID,
		QuoteNumber:        q.QuoteNumber,
		VersionNumber:      q.VersionNumber,
		ClientID:           q.ClientID,
		ProjectName:        q.ProjectName,
		DateIssued:         q.DateIssued.Format(transport.DateLayout),
		Status:             string(q.Status),
		VATApplicable:      q.VATApplicable,
		DeliveryApplicable: q.DeliveryApplicable,
		DeliveryCharge:     transport.Money(q.DeliveryCharge),
		TermsID:            q.TermsID,
		TermsContent:       q.TermsContent,
		CreatedBy:          q.CreatedBy,
		HasRevision:        hasRevision,
		Items:              items,
		Totals:             toTotalsResponse(storedTotals(q)),
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
	}
}

// storedTotals returns the persisted header totals together with the cost
// figures derived from the item snapshots.
func storedTotals(q *domain.Quote) domain.Totals {
	totals, err := ComputeTotals(q.Items, q.VATApplicable, q.DeliveryApplicable, q.DeliveryCharge)
	if err != nil {
		totals = domain.Totals{}
	}
	totals.Subtotal = q.Subtotal
	totals.VAT = q.VATAmount
	totals.GrandTotal = q.GrandTotal
	totals.Delivery = q.GrandTotal.Sub(q.Subtotal).Sub(q.VATAmount)
	totals.Profit = q.Subtotal.Sub(totals.TotalCost)
	totals.MarginPercent = domain.Percent(totals.Profit, q.Subtotal)
	return totals
}

func toItemResponse(item domain.LineItem) transport.QuoteItemResponse {
	return transport.QuoteItemResponse{
		ID:                  item.ID,
		Source:              string(item.Source.Kind),
		ProductID:           item.Source.ProductRef(),
		ItemName:            item.ItemName,
		Description:         item.Description,
		Origin:              item.Origin,
		Unit:                item.Unit,
		Quantity:            transport.Money(item.Quantity),
		OriginalUnitPrice:   transport.Money(item.OriginalUnitPrice),
		DiscountedUnitPrice: transport.Money(item.DiscountedUnitPrice),
		CostPrice:           transport.Money(item.CostPrice),
		RowTotal:            transport.Money(item.RowTotal),
		ImageURL:            item.ImageURL,
	}
}

func toTotalsResponse(t domain.Totals) transport.TotalsResponse {
	return transport.TotalsResponse{
		Subtotal:      transport.Money(t.Subtotal),
		VAT:           transport.Money(t.VAT),
		Delivery:      transport.Money(t.Delivery),
		GrandTotal:    transport.Money(t.GrandTotal),
		TotalCost:     transport.Money(t.TotalCost),
		Profit:        transport.Money(t.Profit),
		MarginPercent: transport.Money(t.MarginPercent),
	}
}

func toSummaryResponse(s repository.QuoteSummary) transport.QuoteSummaryResponse {
	return transport.QuoteSummaryResponse{
		ID:            s.ID,
		ParentQuoteID: s.ParentQuoteID,
		QuoteNumber:   s.QuoteNumber,
		VersionNumber: s.VersionNumber,
		ClientID:      s.ClientID,
		CompanyName:   s.CompanyName,
		ContactPerson: s.ContactPerson,
		ProjectName:   s.ProjectName,
		DateIssued:    s.DateIssued.Format(transport.DateLayout),
		Status:        string(s.Status),
		GrandTotal:    transport.Money(s.GrandTotal),
		CreatedBy:     s.CreatedBy,
		CreatorName:   s.CreatorName,
		HasRevision:   s.HasRevision,
		CreatedAt:     s.CreatedAt,
	}
}

func toStatsResponse(st *repository.Stats) transport.StatsResponse {
	closed := st.ApprovedQuotes + st.RejectedQuotes
	conversion := domain.Percent(decimal.NewFromInt(int64(st.ApprovedQuotes)), decimal.NewFromInt(int64(closed)))

	monthly := make([]transport.MonthlyAmountResponse, 0, len(st.Monthly))
	for _, m := range st.Monthly {
		monthly = append(monthly, transport.MonthlyAmountResponse{Month: m.Month, Amount: transport.Money(m.Amount)})
	}
	recent := make([]transport.QuoteSummaryResponse, 0, len(st.Recent))
	for _, r := range st.Recent {
		recent = append(recent, toSummaryResponse(r))
	}

	return transport.StatsResponse{
		TotalQuotes:    st.TotalQuotes,
		ActiveQuotes:   st.ActiveQuotes,
		ApprovedQuotes: st.ApprovedQuotes,
		RejectedQuotes: st.RejectedQuotes,
		DraftQuotes:    st.DraftQuotes,
		Pipeline:       transport.Money(st.PipelineValue),
		Revenue:        transport.Money(st.Revenue),
		ConversionRate: int(conversion.Round(0).IntPart()),
		TotalClients:   st.ClientCount,
		PipelineData:   monthly,
		RecentQuotes:   recent,
	}
}
