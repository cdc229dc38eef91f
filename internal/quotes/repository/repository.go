package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sirkap_backend/internal/quotes/domain"
	"sirkap_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Read Models ──────────────────────────────────────────────────────────────

// QuoteSummary is a list row joined with client and creator display names.
type QuoteSummary struct {
	ID            uuid.UUID
	ParentQuoteID *uuid.UUID
	QuoteNumber   string
	VersionNumber int
	ClientID      uuid.UUID
	CompanyName   string
	ContactPerson *string
	ProjectName   string
	DateIssued    time.Time
	Status        domain.Status
	GrandTotal    decimal.Decimal
	CreatedBy     uuid.UUID
	CreatorName   string
	HasRevision   bool
	CreatedAt     time.Time
}

// Client is the read-only view of a client record used on documents.
type Client struct {
	ID            uuid.UUID
	CompanyName   string
	ContactPerson *string
	Email         *string
	Phone         *string
	Address       *string
	VATNumber     *string
}

// TermsProfile is a reusable terms and conditions template.
type TermsProfile struct {
	ID          uuid.UUID
	ProfileName string
	Content     string
}

// ListParams contains parameters for listing quotes
type ListParams struct {
	Status *domain.Status
	Search string
	Limit  int
	Offset int
}

// Stats summarizes the quote pipeline.
type Stats struct {
	TotalQuotes    int
	ActiveQuotes   int
	ApprovedQuotes int
	RejectedQuotes int
	DraftQuotes    int
	PipelineValue  decimal.Decimal
	Revenue        decimal.Decimal
	ClientCount    int
	Monthly        []MonthlyAmount
	Recent         []QuoteSummary
}

// MonthlyAmount is the issued grand total of one calendar month.
type MonthlyAmount struct {
	Month  string // YYYY-MM
	Amount decimal.Decimal
}

// ── Interfaces ───────────────────────────────────────────────────────────────

// Repository is the pool-level access used by the quotes service.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error)
	HasRevision(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, params ListParams) ([]QuoteSummary, error)
	ListVersions(ctx context.Context, quoteNumber string) ([]QuoteSummary, error)
	ListNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
	Stats(ctx context.Context) (*Stats, error)

	ClientExists(ctx context.Context, id uuid.UUID) (bool, error)
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
	GetTermsProfile(ctx context.Context, id uuid.UUID) (*TermsProfile, error)
	GetUserName(ctx context.Context, id uuid.UUID) (string, error)
}

// TxRepository exposes the writes that must share one transaction.
type TxRepository interface {
	LockNumberPrefix(ctx context.Context, prefix string) error
	ListNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Quote, error)
	HasRevision(ctx context.Context, id uuid.UUID) (bool, error)
	InsertQuote(ctx context.Context, q *domain.Quote) error
	UpdateHeader(ctx context.Context, q *domain.Quote) error
	ReplaceItems(ctx context.Context, quoteID uuid.UUID, items []domain.LineItem) error
	InsertItems(ctx context.Context, quoteID uuid.UUID, items []domain.LineItem) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) error
}

// ── Repository ────────────────────────────────────────────────────────────────

const (
	quoteNotFoundMsg       = "quote not found"
	numberVersionIndex     = "quotations_number_version_key"
	onePerParentIndex      = "quotations_one_revision_per_parent"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo provides database operations for quotes
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// WithTx runs fn in a read-committed transaction. Row locks and the
// advisory lock taken inside fn serialize the conflicting writers.
func (r *Repo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapWriteError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

const quoteColumns = `
	id, parent_quote_id, quote_number, version_number, client_id, project_name,
	date_issued, status, is_vat_applicable, is_delivery_applicable, delivery_charges_aed,
	terms_id, terms_content, created_by, subtotal_aed, vat_amount_aed, grand_total_aed,
	created_at, updated_at`

const itemColumns = `
	id, product_id, item_name, description_override, origin_snapshot, unit_of_measure,
	quantity, original_unit_price, discounted_unit_price, cost_price_snapshot,
	row_total, image_url`

// GetByID retrieves a quote with its items
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	return getQuote(ctx, r.pool, id, false)
}

// HasRevision reports whether a child version references id.
func (r *Repo) HasRevision(ctx context.Context, id uuid.UUID) (bool, error) {
	return hasRevision(ctx, r.pool, id)
}

// ListNumbersWithPrefix returns every quote number sharing a month prefix.
func (r *Repo) ListNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	return listNumbers(ctx, r.pool, prefix)
}

func getQuote(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotations WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var quote domain.Quote
	var status string
	err := q.QueryRow(ctx, query, id).Scan(
		&quote.ID, &quote.ParentQuoteID, &quote.QuoteNumber, &quote.VersionNumber, &quote.ClientID, &quote.ProjectName,
		&quote.DateIssued, &status, &quote.VATApplicable, &quote.DeliveryApplicable, &quote.DeliveryCharge,
		&quote.TermsID, &quote.TermsContent, &quote.CreatedBy, &quote.Subtotal, &quote.VATAmount, &quote.GrandTotal,
		&quote.CreatedAt, &quote.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	quote.Status = domain.Status(status)

	items, err := getItems(ctx, q, id)
	if err != nil {
		return nil, err
	}
	quote.Items = items
	return &quote, nil
}

func getItems(ctx context.Context, q querier, quoteID uuid.UUID) ([]domain.LineItem, error) {
	rows, err := q.Query(ctx, `SELECT `+itemColumns+` FROM quotation_items WHERE quote_id = $1 ORDER BY position ASC`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var it domain.LineItem
		var productID *uuid.UUID
		if err := rows.Scan(
			&it.ID, &productID, &it.ItemName, &it.Description, &it.Origin, &it.Unit,
			&it.Quantity, &it.OriginalUnitPrice, &it.DiscountedUnitPrice, &it.CostPrice,
			&it.RowTotal, &it.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote item: %w", err)
		}
		it.Source = domain.SourceFromProductRef(productID)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote items: %w", err)
	}
	return items, nil
}

func hasRevision(ctx context.Context, q querier, id uuid.UUID) (bool, error) {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quotations WHERE parent_quote_id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check revisions: %w", err)
	}
	return exists, nil
}

func listNumbers(ctx context.Context, q querier, prefix string) ([]string, error) {
	rows, err := q.Query(ctx, `SELECT DISTINCT quote_number FROM quotations WHERE quote_number LIKE $1::text || '%'`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote numbers: %w", err)
	}
	defer rows.Close()

	numbers := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan quote number: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote numbers: %w", err)
	}
	return numbers, nil
}

const summarySelect = `
	SELECT q.id, q.parent_quote_id, q.quote_number, q.version_number, q.client_id,
		c.company_name, c.contact_person, q.project_name, q.date_issued, q.status,
		q.grand_total_aed, q.created_by, COALESCE(u.full_name, ''),
		EXISTS (SELECT 1 FROM quotations child WHERE child.parent_quote_id = q.id),
		q.created_at
	FROM quotations q
	JOIN clients c ON c.id = q.client_id
	LEFT JOIN users u ON u.id = q.created_by`

// List retrieves quotes newest first with client and creator names.
func (r *Repo) List(ctx context.Context, params ListParams) ([]QuoteSummary, error) {
	var statusParam interface{}
	if params.Status != nil {
		statusParam = string(*params.Status)
	}
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}

	query := summarySelect + `
		WHERE ($1::text IS NULL OR q.status = $1)
			AND ($2::text IS NULL OR q.quote_number ILIKE $2 OR q.project_name ILIKE $2 OR c.company_name ILIKE $2)
		ORDER BY q.date_issued DESC, q.created_at DESC, q.version_number DESC
		LIMIT $3 OFFSET $4`

	return r.querySummaries(ctx, query, statusParam, searchParam, limit, params.Offset)
}

// ListVersions returns the lineage of a quote number, oldest version first.
func (r *Repo) ListVersions(ctx context.Context, quoteNumber string) ([]QuoteSummary, error) {
	return r.querySummaries(ctx, summarySelect+` WHERE q.quote_number = $1 ORDER BY q.version_number ASC`, quoteNumber)
}

func (r *Repo) querySummaries(ctx context.Context, query string, args ...interface{}) ([]QuoteSummary, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	out := make([]QuoteSummary, 0)
	for rows.Next() {
		var s QuoteSummary
		var status string
		if err := rows.Scan(
			&s.ID, &s.ParentQuoteID, &s.QuoteNumber, &s.VersionNumber, &s.ClientID,
			&s.CompanyName, &s.ContactPerson, &s.ProjectName, &s.DateIssued, &status,
			&s.GrandTotal, &s.CreatedBy, &s.CreatorName, &s.HasRevision, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		s.Status = domain.Status(status)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}
	return out, nil
}

// Stats aggregates dashboard figures over all quote versions.
func (r *Repo) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status NOT IN ('Approved', 'Rejected')),
			COUNT(*) FILTER (WHERE status = 'Approved'),
			COUNT(*) FILTER (WHERE status = 'Rejected'),
			COUNT(*) FILTER (WHERE status = 'Draft'),
			COALESCE(SUM(grand_total_aed) FILTER (WHERE status IN ('Sent', 'Revised', 'Approved')), 0),
			COALESCE(SUM(grand_total_aed) FILTER (WHERE status = 'Approved'), 0)
		FROM quotations`
	if err := r.pool.QueryRow(ctx, query).Scan(
		&st.TotalQuotes, &st.ActiveQuotes, &st.ApprovedQuotes, &st.RejectedQuotes, &st.DraftQuotes,
		&st.PipelineValue, &st.Revenue,
	); err != nil {
		return nil, fmt.Errorf("failed to aggregate quotes: %w", err)
	}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&st.ClientCount); err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	monthly, err := r.monthlyTotals(ctx)
	if err != nil {
		return nil, err
	}
	st.Monthly = monthly

	recent, err := r.querySummaries(ctx, summarySelect+` ORDER BY q.created_at DESC LIMIT 5`)
	if err != nil {
		return nil, err
	}
	st.Recent = recent
	return &st, nil
}

func (r *Repo) monthlyTotals(ctx context.Context) ([]MonthlyAmount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_issued, 'YYYY-MM') AS month, SUM(grand_total_aed)
		FROM quotations
		WHERE date_issued >= (CURRENT_DATE - INTERVAL '6 months')
		GROUP BY month
		ORDER BY month ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly totals: %w", err)
	}
	defer rows.Close()

	out := make([]MonthlyAmount, 0, 6)
	for rows.Next() {
		var m MonthlyAmount
		if err := rows.Scan(&m.Month, &m.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly totals: %w", err)
	}
	return out, nil
}

// ClientExists checks referential existence of a client.
func (r *Repo) ClientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check client: %w", err)
	}
	return exists, nil
}

// GetClient retrieves the client shown on quote documents.
func (r *Repo) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_name, contact_person, email, phone, address, vat_number
		FROM clients WHERE id = $1`, id,
	).Scan(&c.ID, &c.CompanyName, &c.ContactPerson, &c.Email, &c.Phone, &c.Address, &c.VATNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("client not found")
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &c, nil
}

// GetTermsProfile retrieves a terms profile by id.
func (r *Repo) GetTermsProfile(ctx context.Context, id uuid.UUID) (*TermsProfile, error) {
	var t TermsProfile
	err := r.pool.QueryRow(ctx, `SELECT id, profile_name, content FROM terms_profiles WHERE id = $1`, id).
		Scan(&t.ID, &t.ProfileName, &t.Content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("terms profile not found")
		}
		return nil, fmt.Errorf("failed to get terms profile: %w", err)
	}
	return &t, nil
}

// GetUserName returns a user's display name.
func (r *Repo) GetUserName(ctx context.Context, id uuid.UUID) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT full_name FROM users WHERE id = $1`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("user not found")
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	return name, nil
}

// mapWriteError turns constraint violations into domain errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == onePerParentIndex {
			return apperr.Wrap(apperr.KindConflict, "revision already created", err)
		}
		if pgErr.ConstraintName == numberVersionIndex {
			return apperr.Wrap(apperr.KindConflict, "quote number already taken", err)
		}
		return apperr.Wrap(apperr.KindConflict, "duplicate record", err)
	case pgForeignKeyViolation:
		return apperr.Wrap(apperr.KindValidation, "referenced record does not exist", err).
			WithDetails([]apperr.FieldError{{Field: foreignKeyField(pgErr.ConstraintName), Message: "does not exist"}})
	case pgSerializationFailure:
		return apperr.Wrap(apperr.KindConflict, "concurrent update, retry", err)
	}
	return err
}

func foreignKeyField(constraint string) string {
	switch constraint {
	case "quotations_client_id_fkey":
		return "clientId"
	case "quotations_terms_id_fkey":
		return "termsId"
	case "quotations_created_by_fkey":
		return "createdBy"
	case "quotation_items_product_id_fkey":
		return "items.productId"
	}
	return constraint
}
