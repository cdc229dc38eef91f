package scheduler

import (
	"context"

	"sirkap_backend/internal/events"
	"sirkap_backend/platform/logger"
)

// SubscribePDFWarmup queues a document render whenever a draft is issued,
// so the first download of a locked version is served from the cache.
func SubscribePDFWarmup(bus events.Bus, scheduler PDFWarmupScheduler, log *logger.Logger) {
	bus.Subscribe(events.QuoteFinalized{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		finalized, ok := e.(events.QuoteFinalized)
		if !ok {
			return nil
		}
		if err := scheduler.ScheduleQuotePDFWarmup(ctx, finalized.QuoteID); err != nil {
			log.Warn("failed to schedule quote pdf warmup", "quoteId", finalized.QuoteID, "error", err)
			return err
		}
		return nil
	}))
}
