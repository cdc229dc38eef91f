package service

import (
	"context"
	"fmt"
	"time"

	"sirkap_backend/internal/quotes/domain"
	"sirkap_backend/internal/quotes/repository"
	"sirkap_backend/platform/apperr"

	"github.com/google/uuid"
)

// renderTimeout bounds one shared render, independent of any single caller.
const renderTimeout = 90 * time.Second

// PDFDocument is everything a renderer needs to print one quote version.
type PDFDocument struct {
	OrgName    string
	Quote      domain.Quote
	Client     repository.Client
	PreparedBy string
	Totals     domain.Totals
}

// PDFRenderer turns a quote version into PDF bytes.
// Implemented by an adapter in internal/adapters that wraps internal/pdf.
type PDFRenderer interface {
	RenderQuote(ctx context.Context, doc PDFDocument) ([]byte, error)
}

// PDFCache stores rendered documents of issued versions. Get returns a
// NotFound error on a miss.
type PDFCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// PDFFile is a rendered quote ready for download.
type PDFFile struct {
	FileName string
	Data     []byte
}

// DownloadPDF renders a quote version. Issued versions are served from the
// cache when possible; drafts are always rendered fresh. Rendering never
// changes the quote.
func (s *Service) DownloadPDF(ctx context.Context, id uuid.UUID) (*PDFFile, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storageError("get quote", err)
	}

	data, err := s.renderCached(ctx, q)
	if err != nil {
		return nil, err
	}
	return &PDFFile{
		FileName: pdfFileName(s.settings.OrgPrefix, q.QuoteNumber, q.VersionNumber),
		Data:     data,
	}, nil
}

// WarmPDF renders an issued version into the cache ahead of the first download.
func (s *Service) WarmPDF(ctx context.Context, id uuid.UUID) error {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.storageError("get quote", err)
	}
	if q.Status.IsEditable() || s.pdfCache == nil {
		return nil
	}
	_, err = s.renderCached(ctx, q)
	return err
}

// renderCached collapses concurrent renders of the same version and state.
func (s *Service) renderCached(ctx context.Context, q *domain.Quote) ([]byte, error) {
	key := pdfCacheKey(q)
	cacheable := !q.Status.IsEditable() && s.pdfCache != nil

	if cacheable {
		data, err := s.pdfCache.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			s.log.Warn("quote pdf cache read failed", "key", key, "error", err)
		}
	}

	// The shared render is detached from the caller that started it.
	v, err, _ := s.renders.Do(key+"@"+q.UpdatedAt.String(), func() (interface{}, error) {
		renderCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), renderTimeout)
		defer cancel()
		return s.renderPDF(renderCtx, q)
	})
	if err != nil {
		return nil, err
	}
	data := v.([]byte)

	if cacheable {
		if err := s.pdfCache.Put(ctx, key, data); err != nil {
			s.log.Warn("quote pdf cache write failed", "key", key, "error", err)
		}
	}
	return data, nil
}

func (s *Service) renderPDF(ctx context.Context, q *domain.Quote) ([]byte, error) {
	if s.renderer == nil {
		return nil, apperr.Rendering("pdf rendering is not configured", nil)
	}

	client, err := s.repo.GetClient(ctx, q.ClientID)
	if err != nil {
		return nil, s.storageError("get client", err)
	}
	preparedBy, err := s.repo.GetUserName(ctx, q.CreatedBy)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, s.storageError("get user", err)
	}

	data, err := s.renderer.RenderQuote(ctx, PDFDocument{
		OrgName:    s.settings.OrgPrefix,
		Quote:      *q,
		Client:     *client,
		PreparedBy: preparedBy,
		Totals:     storedTotals(q),
	})
	if err != nil {
		if apperr.Is(err, apperr.KindRendering) {
			return nil, err
		}
		return nil, apperr.Rendering("failed to render quote pdf", err)
	}
	return data, nil
}

func pdfCacheKey(q *domain.Quote) string {
	return fmt.Sprintf("quotes/%s/v%d-%s-%s.pdf", q.QuoteNumber, q.VersionNumber, q.Status, q.ID)
}
