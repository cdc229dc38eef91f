package scheduler

import (
	"context"
	"fmt"

	"sirkap_backend/platform/config"
	"sirkap_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// PDFWarmer renders an issued quote version into the document cache.
type PDFWarmer interface {
	WarmPDF(ctx context.Context, quoteID uuid.UUID) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	warmer PDFWarmer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, warmer PDFWarmer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 4
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	return newWorker(server, warmer, log), nil
}

func newWorker(server *asynq.Server, warmer PDFWarmer, log *logger.Logger) *Worker {
	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		warmer: warmer,
		log:    log,
	}
	w.mux.HandleFunc(TaskWarmQuotePDF, w.handleWarmQuotePDF)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleWarmQuotePDF(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseWarmQuotePDFPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	quoteID, err := uuid.Parse(payload.QuoteID)
	if err != nil {
		return fmt.Errorf("invalid quote id %q: %w", payload.QuoteID, asynq.SkipRetry)
	}

	if err := w.warmer.WarmPDF(ctx, quoteID); err != nil {
		w.log.Warn("quote pdf warmup failed", "quoteId", quoteID, "error", err)
		return err
	}
	w.log.Debug("quote pdf warmed", "quoteId", quoteID)
	return nil
}
