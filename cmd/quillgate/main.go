// cmd/quillgate/main.go
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

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/inkforge/quillgate/internal/adjust"
	"github.com/inkforge/quillgate/internal/boundary"
	"github.com/inkforge/quillgate/internal/config"
	"github.com/inkforge/quillgate/internal/database"
	"github.com/inkforge/quillgate/internal/intelligence"
	"github.com/inkforge/quillgate/internal/notify"
	"github.com/inkforge/quillgate/internal/telemetry"
)

func main() {
	configPath := os.Getenv("QUILLGATE_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Server.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgres(cfg.DatabaseConn())
	if err != nil {
		logger.Fatal("opening database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	err = db.Ping(pingCtx)
	pingCancel()
	if err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}

	reader := telemetry.NewPostgresReader(db.DB())
	boundaries := boundary.NewPostgresStore(db.DB())
	proposals := adjust.NewPostgresProposalStore(db.DB())

	for _, init := range []func(context.Context) error{
		reader.InitSchema,
		boundaries.InitSchema,
		proposals.InitSchema,
	} {
		if err := init(ctx); err != nil {
			logger.Fatal("initializing schema", zap.Error(err))
		}
	}

	sender := notify.NewLogSender(logger)
	dispatcher := notify.NewDispatcherWithLimit(sender, logger,
		cfg.Notifications.RatePerSecond, cfg.Notifications.Burst)

	svc := intelligence.NewService(reader, boundaries, proposals, dispatcher, intelligence.Options{
		Analytics: cfg.AnalyticsThresholds(),
		Adjust:    cfg.AdjustThresholds(),
		CacheTTL:  cfg.CacheTTL(),
	}, logger)

	if cfg.Monitor.Schedule != "" {
		monitor, err := intelligence.NewMonitor(svc, cfg.Monitor.Schedule, logger)
		if err != nil {
			logger.Fatal("configuring monitor", zap.Error(err))
		}
		go monitor.Run(ctx)
		logger.Info("monitor running", zap.String("schedule", cfg.Monitor.Schedule))
	} else {
		logger.Info("monitor disabled (no schedule configured)")
	}

	if configPath != "" {
		err := config.Watch(ctx, configPath, logger, func(next *config.Config) {
			svc.Reconfigure(intelligence.Options{
				Analytics: next.AnalyticsThresholds(),
				Adjust:    next.AdjustThresholds(),
				CacheTTL:  next.CacheTTL(),
			})
		})
		if err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: mux,
	}
	go func() {
		logger.Info("metrics listening", zap.Int("port", cfg.Server.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	if level == "debug" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
