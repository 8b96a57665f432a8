package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Juanpi2024/yeca-app-agendas/internal/amqp"
	"github.com/Juanpi2024/yeca-app-agendas/internal/backend"
	"github.com/Juanpi2024/yeca-app-agendas/internal/config"
	apphttp "github.com/Juanpi2024/yeca-app-agendas/internal/http"
	"github.com/Juanpi2024/yeca-app-agendas/internal/insights"
	applog "github.com/Juanpi2024/yeca-app-agendas/internal/log"
	"github.com/Juanpi2024/yeca-app-agendas/internal/storage"
	"github.com/Juanpi2024/yeca-app-agendas/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting yeca server")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	remote, err := backend.New(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize spreadsheet backend", "error", err, "backend", cfg.RemoteBackend)
		os.Exit(1)
	}
	logger.Info("Spreadsheet backend initialized", "backend", cfg.RemoteBackend)

	snapshots, err := storage.NewSnapshotStore(cfg.SnapshotDBPath)
	if err != nil {
		logger.Error("Failed to open snapshot store", "error", err, "path", cfg.SnapshotDBPath)
		os.Exit(1)
	}
	defer snapshots.Close()

	// Mutations mirror straight to the backend, or through the queue when
	// a broker is configured so the worker replays them out of process.
	var mirror store.Mirror = remote
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		mirror = amqpClient
		logger.Info("Mutations queued via AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	st := store.New(remote, mirror, snapshots, store.Options{
		SnapshotKey:   cfg.SnapshotKey,
		LoadTimeout:   cfg.LoadTimeout,
		MirrorTimeout: cfg.MirrorTimeout,
	})

	ai := insights.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	srv := apphttp.NewServer(st, ai, apphttp.Options{
		Addr:             ":" + cfg.Port,
		ReportRecipient:  cfg.ReportRecipient,
		ReportSubject:    cfg.ReportSubject,
		InsightCacheSize: cfg.InsightCacheSize,
		InsightCacheTTL:  cfg.InsightCacheTTL,
		Logger:           logger,
	})
	st.SetMirrorErrorHook(srv.MirrorFailureHook())

	// The initial load races the listener on purpose: /readyz reports 503
	// until the state settles.
	go st.Load(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting HTTP listener", "port", cfg.Port, "backend", cfg.RemoteBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
