// Package backend selects the remote spreadsheet implementation.
package backend

import (
	"context"
	"fmt"

	"github.com/Juanpi2024/yeca-app-agendas/internal/config"
	"github.com/Juanpi2024/yeca-app-agendas/internal/sheet"
	"github.com/Juanpi2024/yeca-app-agendas/internal/sheet/appsscript"
	"github.com/Juanpi2024/yeca-app-agendas/internal/sheet/google"
	"github.com/Juanpi2024/yeca-app-agendas/internal/sheet/memory"
)

// Backend is the full read/write surface of a remote spreadsheet store.
type Backend interface {
	sheet.TransactionSource
	sheet.TransactionSink
	sheet.OrderSource
	sheet.OrderSink
}

// New builds the backend named by cfg.RemoteBackend:
//
//	appsscript — the deployed Apps Script web app (default)
//	sheets     — the Sheets API directly, with a service account
//	memory     — in-process, for development and tests
func New(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.RemoteBackend {
	case "", config.BackendAppsScript:
		if cfg.SheetEndpoint == "" {
			return nil, fmt.Errorf("backend %q requires SHEET_ENDPOINT", config.BackendAppsScript)
		}
		return appsscript.New(cfg.SheetEndpoint)

	case config.BackendSheets:
		return google.New(ctx, google.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			TransactionsSheet:  cfg.GoogleTransactionsSheet,
			OrdersSheet:        cfg.GoogleOrdersSheet,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})

	case config.BackendMemory:
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.RemoteBackend)
	}
}
