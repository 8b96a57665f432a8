package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Juanpi2024/yeca-app-agendas/internal/amqp"
	"github.com/Juanpi2024/yeca-app-agendas/internal/backend"
	"github.com/Juanpi2024/yeca-app-agendas/internal/config"
	applog "github.com/Juanpi2024/yeca-app-agendas/internal/log"
	"github.com/Juanpi2024/yeca-app-agendas/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent("worker")
	applog.SetDefault(logger)

	logger.Info("Starting yeca-worker")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	remote, err := backend.New(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize spreadsheet backend", "error", err, "backend", cfg.RemoteBackend)
		os.Exit(1)
	}
	logger.Info("Spreadsheet backend initialized", "backend", cfg.RemoteBackend)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(remote, remote)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := amqpClient.ConsumeMutations(ctx, func(msg *amqp.MutationMessage) error {
			return mirrorWorker.HandleMutation(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give the in-flight delivery a moment to ack before exiting.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
