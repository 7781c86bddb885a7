package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-coach/internal/api"
	"github.com/dvloznov/finance-coach/internal/config"
	"github.com/dvloznov/finance-coach/internal/infra"
	"github.com/dvloznov/finance-coach/internal/insights"
	"github.com/dvloznov/finance-coach/internal/jobs"
	"github.com/dvloznov/finance-coach/internal/jobs/inmemory"
	"github.com/dvloznov/finance-coach/internal/ledger"
	"github.com/dvloznov/finance-coach/internal/logger"
	"github.com/dvloznov/finance-coach/internal/scoring"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
	flag.Parse()

	log, err := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid logger configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := logger.WithContext(context.Background(), log)

	source, closeSource, err := infra.OpenSource(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.LedgerSource).Msg("Failed to open ledger source")
	}
	defer closeSource()

	store := ledger.NewStore()
	refresher := ledger.NewRefresher(store, source)

	cache, err := insights.NewCache(cfg.CacheMaxCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create insights cache")
	}
	defer cache.Close()
	svc := insights.NewService(store, scoring.NewEngine(scoring.DefaultConfig()), cache)

	// Initialize job infrastructure. A single worker keeps snapshot swaps in
	// publish order.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 1, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := jobs.NewRefreshHandler(refresher, func(version uint64) {
		svc.Invalidate()
		log.Info().Uint64("version", version).Msg("Insights cache invalidated")
	})

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	publishRefresh(workerCtx, log, jobQueue, source.Name(), "startup")
	if cfg.RefreshInterval > 0 {
		go scheduleRefresh(workerCtx, log, jobQueue, source.Name(), cfg.RefreshInterval)
	}

	router := api.NewRouter(api.Deps{
		Store:       store,
		Insights:    svc,
		Publisher:   jobQueue,
		Refresher:   refresher,
		JobStore:    jobStore,
		SourceName:  source.Name(),
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Str("source", source.Name()).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}

func publishRefresh(ctx context.Context, log zerolog.Logger, publisher jobs.Publisher, source, trigger string) {
	job := &jobs.RefreshLedgerJob{
		Trigger: trigger,
		Source:  source,
	}
	if err := publisher.PublishRefresh(ctx, job); err != nil {
		log.Error().Err(err).Str("trigger", trigger).Msg("Failed to publish ledger refresh")
	}
}

// scheduleRefresh queues a refresh every interval until ctx is done.
func scheduleRefresh(ctx context.Context, log zerolog.Logger, publisher jobs.Publisher, source string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("Scheduled ledger refresh enabled")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			publishRefresh(ctx, log, publisher, source, "schedule")
		}
	}
}
