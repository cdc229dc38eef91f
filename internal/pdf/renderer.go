package pdf

import (
	"context"
	"fmt"

	"sirkap_backend/platform/logger"
)

// Renderer produces quote PDFs. It prefers Gotenberg and falls back to the
// in-process generator when Gotenberg is not configured or fails.
type Renderer struct {
	gotenberg *GotenbergClient
	log       *logger.Logger
}

// NewRenderer creates a renderer. gotenberg may be nil.
func NewRenderer(gotenberg *GotenbergClient, log *logger.Logger) *Renderer {
	return &Renderer{gotenberg: gotenberg, log: log}
}

// Render returns the PDF bytes of doc.
func (r *Renderer) Render(ctx context.Context, doc QuoteDocument) ([]byte, error) {
	if r.gotenberg != nil {
		out, err := r.renderRemote(ctx, doc)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.log.Warn("gotenberg render failed, using fallback renderer",
			"quoteNumber", doc.QuoteNumber,
			"version", doc.VersionNumber,
			"error", err,
		)
	}
	return GeneratePDF(doc)
}

func (r *Renderer) renderRemote(ctx context.Context, doc QuoteDocument) ([]byte, error) {
	out, err := r.gotenberg.ConvertQuote(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("convert quote html: %w", err)
	}
	return out, nil
}
