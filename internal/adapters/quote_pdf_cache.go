package adapters

import (
	"context"

	"sirkap_backend/internal/adapters/storage"
	quotesvc "sirkap_backend/internal/quotes/service"
)

const pdfContentType = "application/pdf"

// QuotePDFCache keeps rendered quote documents in one object storage bucket,
// satisfying quotes/service.PDFCache.
type QuotePDFCache struct {
	store  storage.ObjectStore
	bucket string
}

// NewQuotePDFCache creates a cache over bucket.
func NewQuotePDFCache(store storage.ObjectStore, bucket string) *QuotePDFCache {
	return &QuotePDFCache{store: store, bucket: bucket}
}

var _ quotesvc.PDFCache = (*QuotePDFCache)(nil)

// Get reads a cached document.
func (c *QuotePDFCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.store.GetObject(ctx, c.bucket, key)
}

// Put stores a rendered document.
func (c *QuotePDFCache) Put(ctx context.Context, key string, data []byte) error {
	return c.store.PutObject(ctx, c.bucket, key, pdfContentType, data)
}
