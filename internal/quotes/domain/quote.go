package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote is one version of a quotation with its line items.
type Quote struct {
	ID                 uuid.UUID
	ParentQuoteID      *uuid.UUID
	QuoteNumber        string
	VersionNumber      int
	ClientID           uuid.UUID
	ProjectName        string
	DateIssued         time.Time
	Status             Status
	VATApplicable      bool
	DeliveryApplicable bool
	DeliveryCharge     decimal.Decimal
	TermsID            *uuid.UUID
	TermsContent       string
	CreatedBy          uuid.UUID
	Subtotal           decimal.Decimal
	VATAmount          decimal.Decimal
	GrandTotal         decimal.Decimal
	Items              []LineItem
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsRevision reports whether this version was spawned from an earlier one.
func (q Quote) IsRevision() bool {
	return q.ParentQuoteID != nil
}

// ApplyTotals copies the persisted money summary onto the header.
func (q *Quote) ApplyTotals(t Totals) {
	q.Subtotal = t.Subtotal
	q.VATAmount = t.VAT
	q.GrandTotal = t.GrandTotal
}

// NewRevision builds the next editable version of q. The caller persists it.
// Items are cloned into new rows; q itself is not modified.
func (q Quote) NewRevision(actorID uuid.UUID, issued time.Time) Quote {
	parentID := q.ID
	createdBy := actorID
	if createdBy == uuid.Nil {
		createdBy = q.CreatedBy
	}

	rev := q
	rev.ID = uuid.New()
	rev.ParentQuoteID = &parentID
	rev.VersionNumber = q.VersionNumber + 1
	rev.Status = StatusDraft
	rev.DateIssued = DateOnly(issued)
	rev.CreatedBy = createdBy
	rev.CreatedAt = time.Time{}
	rev.UpdatedAt = time.Time{}
	if q.TermsID != nil {
		termsID := *q.TermsID
		rev.TermsID = &termsID
	}

	rev.Items = make([]LineItem, len(q.Items))
	for i, item := range q.Items {
		rev.Items[i] = item.Clone()
	}
	return rev
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
