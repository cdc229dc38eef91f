package adapters

import (
	"context"
	"testing"
	"time"

	"sirkap_backend/internal/quotes/domain"
	"sirkap_backend/internal/quotes/repository"
	quotesvc "sirkap_backend/internal/quotes/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const testBucket = "quote-pdfs"

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
}

func (m *memoryStore) EnsureBucketExists(context.Context, string) error { return nil }

func (m *memoryStore) PutObject(_ context.Context, bucket, key, contentType string, data []byte) error {
	m.objects[bucket+"/"+key] = data
	m.types[bucket+"/"+key] = contentType
	return nil
}

func (m *memoryStore) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	return m.objects[bucket+"/"+key], nil
}

func TestQuotePDFCacheUsesBucketAndPDFContentType(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
	cache := NewQuotePDFCache(store, testBucket)

	if err := cache.Put(context.Background(), "quotes/SQ-2405-001/v1.pdf", []byte("%PDF")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.types[testBucket+"/quotes/SQ-2405-001/v1.pdf"] != "application/pdf" {
		t.Fatal("expected pdf content type")
	}
	data, err := cache.Get(context.Background(), "quotes/SQ-2405-001/v1.pdf")
	if err != nil || string(data) != "%PDF" {
		t.Fatalf("unexpected cache read: %q, %v", data, err)
	}
}

func TestToQuoteDocumentMapsClientAndDraft(t *testing.T) {
	contact := "Omar"
	vat := "100200300"
	doc := toQuoteDocument(quotesvc.PDFDocument{
		OrgName: "Sirkap",
		Quote: domain.Quote{
			QuoteNumber:   "SQ-2405-001",
			VersionNumber: 2,
			DateIssued:    time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC),
			Status:        domain.StatusDraft,
			Items: []domain.LineItem{{
				ID:     uuid.New(),
				Source: domain.BespokeSource(),
				ItemSnapshot: domain.ItemSnapshot{
					ItemName:            "Oak chair",
					OriginalUnitPrice:   decimal.NewFromInt(150),
					DiscountedUnitPrice: decimal.NewFromInt(125),
					CostPrice:           decimal.NewFromInt(90),
				},
				Quantity: decimal.NewFromInt(2),
				RowTotal: decimal.NewFromInt(250),
			}},
		},
		Client: repository.Client{CompanyName: "Acme", ContactPerson: &contact, VATNumber: &vat},
	})

	if !doc.IsDraft {
		t.Fatal("expected draft flag")
	}
	if doc.DateIssued != "2024-05-14" {
		t.Fatalf("unexpected date %s", doc.DateIssued)
	}
	if doc.Client.ContactPerson != "Omar" || doc.Client.VATNumber != "100200300" || doc.Client.Email != "" {
		t.Fatalf("unexpected client block: %+v", doc.Client)
	}
	if len(doc.Items) != 1 || !doc.Items[0].IsDiscounted() {
		t.Fatalf("expected one discounted item, got %+v", doc.Items)
	}
}
