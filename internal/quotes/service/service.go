package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sirkap_backend/internal/events"
	"sirkap_backend/internal/quotes/domain"
	"sirkap_backend/internal/quotes/repository"
	"sirkap_backend/internal/quotes/transport"
	"sirkap_backend/platform/apperr"
	"sirkap_backend/platform/logger"
	"sirkap_backend/platform/sanitize"
	"sirkap_backend/platform/validator"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// SnapshotResolver is the narrow catalog port the quotes service needs to
// snapshot product data onto a line item.
// Implemented by an adapter in internal/adapters that wraps the catalog service.
type SnapshotResolver interface {
	ResolveSnapshot(ctx context.Context, productID uuid.UUID) (domain.ItemSnapshot, error)
}

// Settings holds the quotes module configuration.
type Settings struct {
	OrgPrefix     string
	Location      *time.Location
	NumberRetries int
}

// Service provides business logic for quotes
type Service struct {
	repo     repository.Repository
	bus      events.Bus
	val      *validator.Validator
	log      *logger.Logger
	settings Settings
	now      func() time.Time

	catalog  SnapshotResolver // optional: nil means catalog lines must carry a full snapshot
	renderer PDFRenderer      // optional: nil means PDF download is unavailable
	pdfCache PDFCache         // optional: nil disables caching of locked versions
	renders  singleflight.Group
}

// New creates a new quotes service
func New(repo repository.Repository, bus events.Bus, val *validator.Validator, log *logger.Logger, settings Settings) *Service {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.NumberRetries < 1 {
		settings.NumberRetries = 1
	}
	return &Service{
		repo:     repo,
		bus:      bus,
		val:      val,
		log:      log,
		settings: settings,
		now:      time.Now,
	}
}

// SetSnapshotResolver injects the catalog resolver (set after construction to break circular deps).
func (s *Service) SetSnapshotResolver(r SnapshotResolver) {
	s.catalog = r
}

// SetPDFRenderer injects the document renderer.
func (s *Service) SetPDFRenderer(r PDFRenderer) {
	s.renderer = r
}

// SetPDFCache injects the rendered-document cache.
func (s *Service) SetPDFCache(c PDFCache) {
	s.pdfCache = c
}

// Create stores version 1 of a new quote under a freshly allocated number.
// Totals are computed server-side.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req transport.QuoteRequest) (*transport.CreatedQuoteResponse, error) {
	draft, err := s.buildDraft(ctx, req)
	if err != nil {
		return nil, err
	}
	draft.VersionNumber = 1
	draft.Status = domain.StatusDraft
	draft.CreatedBy = actor.ID

	var created domain.Quote
	err = s.withNumberRetry("create quote", func() error {
		q := draft
		q.ID = uuid.New()
		return s.repo.WithTx(ctx, func(ctx context.Context, tx repository.TxRepository) error {
			number, err := s.allocateNumber(ctx, tx)
			if err != nil {
				return err
			}
			q.QuoteNumber = number
			if err := tx.InsertQuote(ctx, &q); err != nil {
				return err
			}
			if err := tx.InsertItems(ctx, q.ID, q.Items); err != nil {
				return err
			}
			created = q
			return nil
		})
	})
	if err != nil {
		return nil, s.storageError("create quote", err)
	}

	s.log.Info("quote created",
		"quoteId", created.ID,
		"quoteNumber", created.QuoteNumber,
		"actorId", actor.ID,
	)
	s.bus.Publish(ctx, events.QuoteCreated{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     created.ID,
		QuoteNumber: created.QuoteNumber,
		ActorID:     actor.ID,
	})

	return &transport.CreatedQuoteResponse{
		ID:            created.ID,
		QuoteNumber:   created.QuoteNumber,
		VersionNumber: created.VersionNumber,
		Status:        string(created.Status),
	}, nil
}

// allocateNumber picks the next number of the current month while holding
// the month's advisory lock.
func (s *Service) allocateNumber(ctx context.Context, tx repository.TxRepository) (string, error) {
	now := s.now().In(s.settings.Location)
	prefix := domain.NumberPrefix(now)
	if err := tx.LockNumberPrefix(ctx, prefix); err != nil {
		return "", err
	}
	existing, err := tx.ListNumbersWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return domain.NextNumber(now, existing), nil
}

// withNumberRetry reruns fn while it fails with a uniqueness conflict.
func (s *Service) withNumberRetry(op string, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !apperr.Is(err, apperr.KindConflict) || attempt >= s.settings.NumberRetries {
			return err
		}
		s.log.Retry(op, attempt, err)
	}
}

// Update replaces the header and items of a draft.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.QuoteRequest) (*transport.QuoteResponse, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storageError("get quote", err)
	}
	if err := domain.EnsureEditable(current.Status); err != nil {
		return nil, err
	}

	draft, err := s.buildDraft(ctx, req)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx repository.TxRepository) error {
		locked, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.EnsureEditable(locked.Status); err != nil {
			return err
		}

		q := *locked
		applyHeader(&q, draft)
		q.Items = draft.Items
		if err := tx.UpdateHeader(ctx, &q); err != nil {
			return err
		}
		return tx.ReplaceItems(ctx, q.ID, q.Items)
	})
	if err != nil {
		return nil, s.storageError("update quote", err)
	}

	return s.GetByID(ctx, id)
}

func applyHeader(dst *domain.Quote, src domain.Quote) {
	dst.ClientID = src.ClientID
	dst.ProjectName = src.ProjectName
	dst.DateIssued = src.DateIssued
	dst.VATApplicable = src.VATApplicable
	dst.DeliveryApplicable = src.DeliveryApplicable
	dst.DeliveryCharge = src.DeliveryCharge
	dst.TermsID = src.TermsID
	dst.TermsContent = src.TermsContent
	dst.Subtotal = src.Subtotal
	dst.VATAmount = src.VATAmount
	dst.GrandTotal = src.GrandTotal
}

// GetByID retrieves a quote with its items, totals and revision flag.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.QuoteResponse, error) {
	var (
		quote       *domain.Quote
		hasRevision bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.repo.GetByID(gctx, id)
		quote = q
		return err
	})
	g.Go(func() error {
		exists, err := s.repo.HasRevision(gctx, id)
		hasRevision = exists
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.storageError("get quote", err)
	}

	resp := toQuoteResponse(quote, hasRevision)
	return &resp, nil
}

// List retrieves quotes newest first, optionally filtered by status or search text.
func (s *Service) List(ctx context.Context, req transport.ListQuotesRequest) (*transport.QuoteListResponse, error) {
	params := repository.ListParams{Search: strings.TrimSpace(req.Search)}
	if strings.TrimSpace(req.Status) != "" {
		status, ok := domain.ParseStatus(req.Status)
		if !ok {
			return nil, apperr.ValidationFields([]apperr.FieldError{{Field: "status", Message: "unknown status"}})
		}
		params.Status = &status
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 100 {
		pageSize = 100
	}
	params.Limit = pageSize
	params.Offset = (page - 1) * pageSize

	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, s.storageError("list quotes", err)
	}

	items := make([]transport.QuoteSummaryResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toSummaryResponse(row))
	}
	return &transport.QuoteListResponse{Items: items, Page: page, PageSize: pageSize}, nil
}

// NextNumber previews the number the next create would get. The preview is
// not reserved; a concurrent create may take it first.
func (s *Service) NextNumber(ctx context.Context) (*transport.NextNumberResponse, error) {
	now := s.now().In(s.settings.Location)
	existing, err := s.repo.ListNumbersWithPrefix(ctx, domain.NumberPrefix(now))
	if err != nil {
		return nil, s.storageError("preview quote number", err)
	}
	return &transport.NextNumberResponse{QuoteNumber: domain.NextNumber(now, existing)}, nil
}

// UpdateStatus moves a quote through the workflow on behalf of actor.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.UpdateStatusRequest) (*transport.QuoteResponse, error) {
	var (
		before domain.Quote
		after  domain.Status
	)

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx repository.TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		target, err := domain.Transition(domain.TransitionInput{
			Current:        current.Status,
			CreatedBy:      current.CreatedBy,
			IsRevision:     current.IsRevision(),
			ItemCount:      len(current.Items),
			TermsConfirmed: req.TermsConfirmed,
		}, req.Status, actor)
		if err != nil {
			return err
		}
		if err := tx.UpdateStatus(ctx, id, current.Status, target); err != nil {
			return err
		}
		before, after = *current, target
		return nil
	})
	if err != nil {
		return nil, s.storageError("update quote status", err)
	}

	s.log.Info("quote status changed",
		"quoteId", id,
		"quoteNumber", before.QuoteNumber,
		"from", before.Status,
		"to", after,
		"actorId", actor.ID,
	)
	s.bus.Publish(ctx, events.QuoteStatusChanged{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     id,
		QuoteNumber: before.QuoteNumber,
		OldStatus:   string(before.Status),
		NewStatus:   string(after),
		ActorID:     actor.ID,
	})
	if before.Status == domain.StatusDraft {
		s.bus.Publish(ctx, events.QuoteFinalized{
			BaseEvent:     events.NewBaseEvent(),
			QuoteID:       id,
			QuoteNumber:   before.QuoteNumber,
			VersionNumber: before.VersionNumber,
			Status:        string(after),
			ActorID:       actor.ID,
		})
	}

	return s.GetByID(ctx, id)
}

// Finalize locks a draft and issues it. A revision is issued as Revised.
func (s *Service) Finalize(ctx context.Context, actor domain.Actor, id uuid.UUID, termsConfirmed bool) (*transport.QuoteResponse, error) {
	return s.UpdateStatus(ctx, actor, id, transport.UpdateStatusRequest{
		Status:         string(domain.StatusSent),
		TermsConfirmed: termsConfirmed,
	})
}

// Calculate prices items exactly as a create or update would, without storing anything.
func (s *Service) Calculate(ctx context.Context, req transport.CalculateRequest) (*transport.CalculationResponse, error) {
	items, resolveErr := s.resolveItems(ctx, req.Items)
	if resolveErr != nil && !apperr.Is(resolveErr, apperr.KindValidation) {
		return nil, resolveErr
	}
	priced, totals, priceErr := PriceQuote(items, req.IsVATApplicable(), req.DeliveryApplicable, req.DeliveryCharge)
	if err := mergeValidation(s.validate(req), resolveErr, priceErr); err != nil {
		return nil, err
	}

	resp := &transport.CalculationResponse{
		Items:  make([]transport.QuoteItemResponse, 0, len(priced)),
		Totals: toTotalsResponse(totals),
	}
	for _, item := range priced {
		resp.Items = append(resp.Items, toItemResponse(item))
	}
	return resp, nil
}

// Versions lists every version sharing the quote's number, oldest first.
func (s *Service) Versions(ctx context.Context, id uuid.UUID) ([]transport.QuoteSummaryResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storageError("get quote", err)
	}
	rows, err := s.repo.ListVersions(ctx, q.QuoteNumber)
	if err != nil {
		return nil, s.storageError("list quote versions", err)
	}
	out := make([]transport.QuoteSummaryResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSummaryResponse(row))
	}
	return out, nil
}

// Stats aggregates dashboard figures.
func (s *Service) Stats(ctx context.Context) (*transport.StatsResponse, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, s.storageError("quote stats", err)
	}
	resp := toStatsResponse(st)
	return &resp, nil
}

// buildDraft validates and prices a create/update payload. Every violation
// across header, items and references is reported together.
func (s *Service) buildDraft(ctx context.Context, req transport.QuoteRequest) (domain.Quote, error) {
	var violations []apperr.FieldError

	issued := s.today()
	if req.DateIssued != "" {
		parsed, err := time.Parse(transport.DateLayout, req.DateIssued)
		if err != nil {
			violations = append(violations, apperr.FieldError{Field: "dateIssued", Message: "must match format " + transport.DateLayout})
		} else {
			issued = parsed
		}
	}

	items, resolveErr := s.resolveItems(ctx, req.Items)
	if resolveErr != nil && !apperr.Is(resolveErr, apperr.KindValidation) {
		return domain.Quote{}, resolveErr
	}
	priced, totals, priceErr := PriceQuote(items, req.IsVATApplicable(), req.DeliveryApplicable, req.DeliveryCharge)

	termsContent := sanitize.RichText(req.TermsContent)
	refViolations, profileContent, err := s.checkReferences(ctx, req)
	if err != nil {
		return domain.Quote{}, err
	}
	violations = append(violations, refViolations...)
	if termsContent == "" {
		termsContent = profileContent
	}

	var headerErr error
	if len(violations) > 0 {
		headerErr = apperr.ValidationFields(violations)
	}
	if err := mergeValidation(s.validate(req), headerErr, resolveErr, priceErr); err != nil {
		return domain.Quote{}, err
	}

	q := domain.Quote{
		ClientID:           req.ClientID,
		ProjectName:        sanitize.Text(req.ProjectName),
		DateIssued:         issued,
		VATApplicable:      req.IsVATApplicable(),
		DeliveryApplicable: req.DeliveryApplicable,
		DeliveryCharge:     domain.Round2(req.DeliveryCharge),
		TermsID:            req.TermsID,
		TermsContent:       termsContent,
		Items:              priced,
	}
	q.ApplyTotals(totals)
	return q, nil
}

// checkReferences verifies the client and terms profile exist. It returns the
// profile content so an empty terms body can default to it.
func (s *Service) checkReferences(ctx context.Context, req transport.QuoteRequest) ([]apperr.FieldError, string, error) {
	var violations []apperr.FieldError

	if req.ClientID == uuid.Nil {
		violations = append(violations, apperr.FieldError{Field: "clientId", Message: "is required"})
	} else {
		exists, err := s.repo.ClientExists(ctx, req.ClientID)
		if err != nil {
			return nil, "", s.storageError("check client", err)
		}
		if !exists {
			violations = append(violations, apperr.FieldError{Field: "clientId", Message: "does not exist"})
		}
	}

	var content string
	if req.TermsID != nil && *req.TermsID != uuid.Nil {
		profile, err := s.repo.GetTermsProfile(ctx, *req.TermsID)
		switch {
		case apperr.Is(err, apperr.KindNotFound):
			violations = append(violations, apperr.FieldError{Field: "termsId", Message: "does not exist"})
		case err != nil:
			return nil, "", s.storageError("get terms profile", err)
		default:
			content = sanitize.RichText(profile.Content)
		}
	}

	return violations, content, nil
}

// validate runs the payload's tag rules so their violations join the
// business-rule violations in one list.
func (s *Service) validate(req interface{}) error {
	if s.val == nil {
		return nil
	}
	return s.val.Validate(req)
}

// today is the current date in the quoting timezone, as a UTC calendar date.
func (s *Service) today() time.Time {
	y, m, d := s.now().In(s.settings.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// storageError keeps domain errors as they are and hides anything else
// behind a storage error.
func (s *Service) storageError(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.log.DatabaseError(op, err)
	return apperr.Storage(op, fmt.Errorf("%s: %w", op, err))
}
