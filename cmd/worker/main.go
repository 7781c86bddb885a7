package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

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

// The worker refreshes the ledger on a schedule without serving HTTP and logs
// subscriptions that appear, disappear or turn into gray charges.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	interval := flag.Duration("interval", cfg.RefreshInterval, "Refresh interval (or set REFRESH_INTERVAL env)")
	flag.Parse()

	log, err := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid logger configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if *interval <= 0 {
		log.Fatal().Msg("Error: -interval or REFRESH_INTERVAL must be positive")
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	source, closeSource, err := infra.OpenSource(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger source")
	}
	defer closeSource()

	store := ledger.NewStore()
	svc := insights.NewService(store, scoring.NewEngine(scoring.DefaultConfig()), nil)
	watcher := insights.NewWatcher()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(10, 1, jobStore)

	handler := jobs.NewRefreshHandler(ledger.NewRefresher(store, source), func(version uint64) {
		reportChange(log, watcher.Observe(svc.Subscriptions(ctx)))
	})

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Str("source", source.Name()).Dur("interval", *interval).Msg("Worker service started")

	publish := func(trigger string) {
		job := &jobs.RefreshLedgerJob{Trigger: trigger, Source: source.Name()}
		if err := jobQueue.PublishRefresh(ctx, job); err != nil {
			log.Error().Err(err).Str("trigger", trigger).Msg("Failed to publish ledger refresh")
		}
	}
	publish("startup")

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

loop:
	for {
		select {
		case <-ticker.C:
			publish("schedule")
		case <-quit:
			break loop
		}
	}

	log.Info().Msg("Shutting down worker service...")

	// Cancel context to stop workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}

func reportChange(log zerolog.Logger, change insights.Change) {
	if change.Empty() {
		log.Info().Uint64("version", change.Version).Msg("No subscription changes")
		return
	}
	for _, s := range change.Added {
		ev := log.Info()
		if s.IsGrayCharge {
			ev = log.Warn()
		}
		ev.Str("merchant", s.Merchant).
			Float64("amount", s.Amount).
			Str("frequency", string(s.Frequency)).
			Bool("gray_charge", s.IsGrayCharge).
			Msg("New subscription detected")
	}
	for _, s := range change.BecameGray {
		log.Warn().Str("merchant", s.Merchant).Float64("amount", s.Amount).Msg("Subscription flagged as gray charge")
	}
	for _, name := range change.Removed {
		log.Info().Str("merchant", name).Msg("Subscription no longer detected")
	}
}
