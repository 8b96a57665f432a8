// yeca-report prints the AI business report (or insight) for the current
// state, plus a mailto link ready to paste into a browser.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Juanpi2024/yeca-app-agendas/internal/backend"
	"github.com/Juanpi2024/yeca-app-agendas/internal/config"
	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
	"github.com/Juanpi2024/yeca-app-agendas/internal/insights"
	applog "github.com/Juanpi2024/yeca-app-agendas/internal/log"
	"github.com/Juanpi2024/yeca-app-agendas/internal/storage"
	"github.com/Juanpi2024/yeca-app-agendas/internal/store"
)

func main() {
	mode := flag.String("mode", "report", "what to generate: report or insights")
	recipient := flag.String("to", "", "override the report recipient address")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent("report")
	applog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	remote, err := backend.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize spreadsheet backend", "error", err, "backend", cfg.RemoteBackend)
		os.Exit(1)
	}

	snapshots, err := storage.NewSnapshotStore(cfg.SnapshotDBPath)
	if err != nil {
		logger.Error("Failed to open snapshot store", "error", err, "path", cfg.SnapshotDBPath)
		os.Exit(1)
	}
	defer snapshots.Close()

	// Read-only run: remote reads with snapshot fallback, no mirroring.
	st := store.New(remote, nil, snapshots, store.Options{
		SnapshotKey: cfg.SnapshotKey,
		LoadTimeout: cfg.LoadTimeout,
	})
	st.Load(ctx)
	state := st.State()

	ai := insights.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	switch *mode {
	case "insights":
		fmt.Println(ai.BusinessInsights(ctx, state.Transactions, core.CountInProgress(state.Orders)))

	case "report":
		text := ai.EmailReport(ctx, state.Transactions)
		to := cfg.ReportRecipient
		if *recipient != "" {
			to = *recipient
		}
		fmt.Println(text)
		if to != "" {
			fmt.Println()
			fmt.Println(insights.MailtoURL(to, cfg.ReportSubject, text))
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q (want report or insights)\n", *mode)
		os.Exit(2)
	}
}
