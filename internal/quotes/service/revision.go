package service

import (
	"context"

	"sirkap_backend/internal/events"
	"sirkap_backend/internal/quotes/domain"
	"sirkap_backend/internal/quotes/repository"
	"sirkap_backend/internal/quotes/transport"
	"sirkap_backend/platform/apperr"

	"github.com/google/uuid"
)

const msgRevisionExists = "revision already created"

// CreateRevision spawns the next editable version of an issued quote. The
// source version is left untouched and may only be revised once.
func (s *Service) CreateRevision(ctx context.Context, actor domain.Actor, id uuid.UUID) (*transport.CreatedQuoteResponse, error) {
	var rev domain.Quote

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx repository.TxRepository) error {
		source, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.EnsureRevisable(source.Status); err != nil {
			return err
		}
		exists, err := tx.HasRevision(ctx, source.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict(msgRevisionExists)
		}

		rev = source.NewRevision(actor.ID, s.today())
		if err := tx.InsertQuote(ctx, &rev); err != nil {
			return err
		}
		return tx.InsertItems(ctx, rev.ID, rev.Items)
	})
	if err != nil {
		return nil, s.storageError("create revision", err)
	}

	s.log.Info("quote revised",
		"quoteId", rev.ID,
		"parentQuoteId", id,
		"quoteNumber", rev.QuoteNumber,
		"version", rev.VersionNumber,
		"actorId", actor.ID,
	)
	s.bus.Publish(ctx, events.QuoteRevised{
		BaseEvent:     events.NewBaseEvent(),
		QuoteID:       rev.ID,
		ParentQuoteID: id,
		QuoteNumber:   rev.QuoteNumber,
		VersionNumber: rev.VersionNumber,
		ActorID:       actor.ID,
	})

	return &transport.CreatedQuoteResponse{
		ID:            rev.ID,
		ParentQuoteID: rev.ParentQuoteID,
		QuoteNumber:   rev.QuoteNumber,
		VersionNumber: rev.VersionNumber,
		Status:        string(rev.Status),
	}, nil
}
