package repository

import (
	"context"
	"errors"
	"fmt"

	"sirkap_backend/internal/quotes/domain"
	"sirkap_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type txRepo struct {
	tx pgx.Tx
}

// LockNumberPrefix serializes number allocation for one month until the
// transaction ends.
func (t *txRepo) LockNumberPrefix(ctx context.Context, prefix string) error {
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, "quote_number:"+prefix); err != nil {
		return fmt.Errorf("failed to lock quote number sequence: %w", err)
	}
	return nil
}

func (t *txRepo) ListNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	return listNumbers(ctx, t.tx, prefix)
}

// GetForUpdate loads a quote and locks its header row.
func (t *txRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	return getQuote(ctx, t.tx, id, true)
}

func (t *txRepo) HasRevision(ctx context.Context, id uuid.UUID) (bool, error) {
	return hasRevision(ctx, t.tx, id)
}

// InsertQuote inserts a header row. Timestamps are set by the database.
func (t *txRepo) InsertQuote(ctx context.Context, q *domain.Quote) error {
	query := `
		INSERT INTO quotations (
			id, parent_quote_id, quote_number, version_number, client_id, project_name,
			date_issued, status, is_vat_applicable, is_delivery_applicable, delivery_charges_aed,
			terms_id, terms_content, created_by, subtotal_aed, vat_amount_aed, grand_total_aed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at`

	err := t.tx.QueryRow(ctx, query,
		q.ID, q.ParentQuoteID, q.QuoteNumber, q.VersionNumber, q.ClientID, q.ProjectName,
		q.DateIssued, string(q.Status), q.VATApplicable, q.DeliveryApplicable, q.DeliveryCharge,
		q.TermsID, q.TermsContent, q.CreatedBy, q.Subtotal, q.VATAmount, q.GrandTotal,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return mapWriteError(fmt.Errorf("failed to insert quote: %w", err))
	}
	return nil
}

// UpdateHeader rewrites the editable header fields of a draft.
func (t *txRepo) UpdateHeader(ctx context.Context, q *domain.Quote) error {
	query := `
		UPDATE quotations SET
			client_id = $2, project_name = $3, date_issued = $4,
			is_vat_applicable = $5, is_delivery_applicable = $6, delivery_charges_aed = $7,
			terms_id = $8, terms_content = $9,
			subtotal_aed = $10, vat_amount_aed = $11, grand_total_aed = $12,
			updated_at = now()
		WHERE id = $1 AND status = 'Draft'
		RETURNING updated_at`

	err := t.tx.QueryRow(ctx, query,
		q.ID, q.ClientID, q.ProjectName, q.DateIssued,
		q.VATApplicable, q.DeliveryApplicable, q.DeliveryCharge,
		q.TermsID, q.TermsContent,
		q.Subtotal, q.VATAmount, q.GrandTotal,
	).Scan(&q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.Locked("quote is no longer a draft")
		}
		return mapWriteError(fmt.Errorf("failed to update quote: %w", err))
	}
	return nil
}

// ReplaceItems deletes every line of the quote and inserts items in order.
func (t *txRepo) ReplaceItems(ctx context.Context, quoteID uuid.UUID, items []domain.LineItem) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM quotation_items WHERE quote_id = $1`, quoteID); err != nil {
		return fmt.Errorf("failed to delete old quote items: %w", err)
	}
	return t.InsertItems(ctx, quoteID, items)
}

// InsertItems batches the item inserts of one quote.
func (t *txRepo) InsertItems(ctx context.Context, quoteID uuid.UUID, items []domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO quotation_items (
			id, quote_id, position, product_id, item_name, description_override,
			origin_snapshot, unit_of_measure, quantity, original_unit_price,
			discounted_unit_price, cost_price_snapshot, row_total, image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(query,
			it.ID, quoteID, i, it.Source.ProductRef(), it.ItemName, it.Description,
			it.Origin, it.Unit, it.Quantity, it.OriginalUnitPrice,
			it.DiscountedUnitPrice, it.CostPrice, it.RowTotal, it.ImageURL,
		)
	}

	br := t.tx.SendBatch(ctx, batch)
	for range items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapWriteError(fmt.Errorf("failed to insert quote item: %w", err))
		}
	}
	if err := br.Close(); err != nil {
		return mapWriteError(fmt.Errorf("failed to insert quote items: %w", err))
	}
	return nil
}

// UpdateStatus moves a quote from one status to another. It fails with
// Conflict when the stored status is no longer from.
func (t *txRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE quotations SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("quote status changed concurrently")
	}
	return nil
}
