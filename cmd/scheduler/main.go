package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sirkap_backend/internal/adapters"
	"sirkap_backend/internal/adapters/storage"
	"sirkap_backend/internal/events"
	"sirkap_backend/internal/pdf"
	"sirkap_backend/internal/quotes"
	quotesvc "sirkap_backend/internal/quotes/service"
	"sirkap_backend/internal/scheduler"
	"sirkap_backend/platform/config"
	"sirkap_backend/platform/db"
	"sirkap_backend/platform/logger"
	"sirkap_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// Worker-side quote rendering wiring (no HTTP handlers required).
	quotesModule := quotes.NewModule(pool, events.NewInMemoryBus(log), validator.New(), log, quotesvc.Settings{
		OrgPrefix:     cfg.GetQuoteOrgPrefix(),
		Location:      cfg.GetQuoteLocation(),
		NumberRetries: cfg.GetQuoteNumberRetries(),
	})

	var gotenberg *pdf.GotenbergClient
	if cfg.IsGotenbergEnabled() {
		gotenberg = pdf.NewGotenbergClient(cfg.GetGotenbergURL(), cfg.GetGotenbergUsername(), cfg.GetGotenbergPassword())
	}
	quotesModule.Service().SetPDFRenderer(adapters.NewQuotePDFRenderer(pdf.NewRenderer(gotenberg, log)))

	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; nothing to warm, worker exits")
		return
	}
	store, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure quote pdf bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx, cfg.GetMinioBucketQuotePDFs())
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	quotesModule.Service().SetPDFCache(adapters.NewQuotePDFCache(store, cfg.GetMinioBucketQuotePDFs()))

	worker, err := scheduler.NewWorker(cfg, quotesModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
