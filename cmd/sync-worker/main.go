package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dvthanh/garahub-backend/internal/sync"
	"github.com/dvthanh/garahub-backend/pkg/config"
	"github.com/dvthanh/garahub-backend/pkg/db"
	"github.com/dvthanh/garahub-backend/pkg/logger"
	"github.com/dvthanh/garahub-backend/pkg/metrics"
	"github.com/dvthanh/garahub-backend/pkg/outbox"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	mirrorClient, err := db.NewMirror(context.Background(), cfg.Mirror, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap mirror database", err)
		os.Exit(1)
	}
	defer func() {
		if err := mirrorClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing mirror database", err)
		}
	}()

	publisher, err := sync.NewMirrorPublisher(mirrorClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to build mirror publisher", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewSyncMetrics(registry)

	worker, err := sync.NewWorker(outbox.NewRepository(dbClient.DB()), publisher, syncMetrics, logg, cfg.Sync)
	if err != nil {
		logg.Error(context.Background(), "failed to build sync worker", err)
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Sync.MetricsPort,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(context.Background(), "metrics server stopped unexpectedly", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"batch_size": cfg.Sync.BatchSize,
	})
	logg.Info(runCtx, "starting sync worker")

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "sync worker stopped unexpectedly", err)
		os.Exit(1)
	}

	if err := metricsServer.Shutdown(context.Background()); err != nil {
		logg.Error(runCtx, "metrics server shutdown failed", err)
	}

	logg.Info(runCtx, "sync worker stopped")
}
