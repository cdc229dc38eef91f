package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sirkap_backend/internal/adapters"
	"sirkap_backend/internal/adapters/storage"
	"sirkap_backend/internal/catalog"
	"sirkap_backend/internal/events"
	apphttp "sirkap_backend/internal/http"
	"sirkap_backend/internal/http/router"
	"sirkap_backend/internal/pdf"
	"sirkap_backend/internal/quotes"
	quotesvc "sirkap_backend/internal/quotes/service"
	"sirkap_backend/internal/scheduler"
	"sirkap_backend/migrations"
	"sirkap_backend/platform/config"
	"sirkap_backend/platform/db"
	"sirkap_backend/platform/logger"
	"sirkap_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, store storage.ObjectStore, bucket string) {
	if err := withRetry(ctx, log, "ensure quote pdf bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if cfg.MigrateOnStart {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool, val, log)
	quotesModule := quotes.NewModule(pool, eventBus, val, log, quoteSettings(cfg))

	// Wire snapshot resolver: quotes → catalog (for lines that only carry a product id)
	quotesModule.Service().SetSnapshotResolver(adapters.NewCatalogSnapshotResolver(catalogModule.Service()))

	// Wire document rendering: Gotenberg when configured, in-process otherwise
	var gotenberg *pdf.GotenbergClient
	if cfg.IsGotenbergEnabled() {
		gotenberg = pdf.NewGotenbergClient(cfg.GetGotenbergURL(), cfg.GetGotenbergUsername(), cfg.GetGotenbergPassword())
		log.Info("gotenberg PDF renderer initialized", "url", cfg.GetGotenbergURL())
	}
	quotesModule.Service().SetPDFRenderer(adapters.NewQuotePDFRenderer(pdf.NewRenderer(gotenberg, log)))

	// Rendered documents of issued versions are cached in MinIO when configured
	if cfg.IsMinIOEnabled() {
		store, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, store, cfg.GetMinioBucketQuotePDFs())
		quotesModule.Service().SetPDFCache(adapters.NewQuotePDFCache(store, cfg.GetMinioBucketQuotePDFs()))
		log.Info("storage service initialized", "quotePDFsBucket", cfg.GetMinioBucketQuotePDFs())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; quote pdf caching disabled")
	}

	// Issued versions are pre-rendered by the scheduler worker
	if closeScheduler := initPDFWarmup(cfg, eventBus, log); closeScheduler != nil {
		defer closeScheduler()
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			catalogModule,
			quotesModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func quoteSettings(cfg config.QuotesConfig) quotesvc.Settings {
	return quotesvc.Settings{
		OrgPrefix:     cfg.GetQuoteOrgPrefix(),
		Location:      cfg.GetQuoteLocation(),
		NumberRetries: cfg.GetQuoteNumberRetries(),
	}
}

func initPDFWarmup(cfg config.SchedulerConfig, bus events.Bus, log *logger.Logger) func() {
	if !cfg.IsSchedulerEnabled() {
		log.Warn("REDIS_URL not configured; quote pdf warmup disabled")
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil
	}
	scheduler.SubscribePDFWarmup(bus, client, log)

	return func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
			log.Retry(name, attempt, err)
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
