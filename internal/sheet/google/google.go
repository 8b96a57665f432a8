// Package google is the direct Sheets API v4 backend: it reads and writes
// the same Transacciones/Pedidos tabs the Apps Script endpoint fronts,
// authenticated with a service account. Useful when the script deployment
// is unavailable or when running server-side with full credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
	"github.com/Juanpi2024/yeca-app-agendas/internal/sheet"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Column layouts mirror the spreadsheet:
// Transacciones: A id, B date, C amount, D type, E category, F description.
// Pedidos: A id, B clientname, C producttype, D value, E details,
// F deliverydate, G status, H createdat.
const (
	transactionRange = "A2:F"
	orderRange       = "A2:H"
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	ordersSheet       string
}

// Ensure interface conformance
var (
	_ sheet.TransactionSource = (*Client)(nil)
	_ sheet.TransactionSink   = (*Client)(nil)
	_ sheet.OrderSource       = (*Client)(nil)
	_ sheet.OrderSink         = (*Client)(nil)
)

type Config struct {
	SpreadsheetID      string
	TransactionsSheet  string
	OrdersSheet        string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// New creates a Sheets client from explicit configuration.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.TransactionsSheet == "" {
		cfg.TransactionsSheet = "Transacciones"
	}
	if cfg.OrdersSheet == "" {
		cfg.OrdersSheet = "Pedidos"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		transactionsSheet: cfg.TransactionsSheet,
		ordersSheet:       cfg.OrdersSheet,
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(cfg.ServiceAccountJSON))
	if len(credentialsJSON) == 0 {
		file := strings.TrimSpace(cfg.ServiceAccountFile)
		if file == "" {
			file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		}
		if file == "" {
			return nil, errors.New("missing service account credentials")
		}
		var err error
		credentialsJSON, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	}

	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func (c *Client) GetTransactions(ctx context.Context) ([]core.Transaction, error) {
	rng := fmt.Sprintf("%s!%s", c.transactionsSheet, transactionRange)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return []core.Transaction{}, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]core.Transaction, 0, len(resp.Values))
	for _, row := range resp.Values {
		t, ok := parseTransactionRow(row)
		if !ok {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Client) GetOrders(ctx context.Context) ([]core.Order, error) {
	rng := fmt.Sprintf("%s!%s", c.ordersSheet, orderRange)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return []core.Order{}, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]core.Order, 0, len(resp.Values))
	for _, row := range resp.Values {
		o, ok := parseOrderRow(row)
		if !ok {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (c *Client) AddTransaction(ctx context.Context, t core.Transaction) error {
	row := transactionRow(t)
	return c.appendRow(ctx, c.transactionsSheet, row)
}

func (c *Client) AddOrder(ctx context.Context, o core.Order) error {
	return c.appendRow(ctx, c.ordersSheet, orderRow(o))
}

// UpdateOrder rewrites the full row whose id column matches.
func (c *Client) UpdateOrder(ctx context.Context, o core.Order) error {
	rowNum, err := c.findRowByID(ctx, c.ordersSheet, o.ID)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!A%d:H%d", c.ordersSheet, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{orderRow(o)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Order row updated", "sheet", c.ordersSheet, "row", rowNum, "order_id", o.ID)
	return nil
}

// DeleteOrder blanks the matching row. Blanking instead of removing the
// dimension keeps later row references stable for concurrent writers.
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	rowNum, err := c.findRowByID(ctx, c.ordersSheet, id)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!A%d:H%d", c.ordersSheet, rowNum, rowNum)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Order row cleared", "sheet", c.ordersSheet, "row", rowNum, "order_id", id)
	return nil
}

func (c *Client) appendRow(ctx context.Context, sheetName string, row []any) error {
	rng := fmt.Sprintf("%s!A:A", sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheetName, err)
	}
	return nil
}

// findRowByID scans column A for the record id and returns the 1-based
// sheet row number (data starts at row 2, after the header).
func (c *Client) findRowByID(ctx context.Context, sheetName, id string) (int, error) {
	rng := fmt.Sprintf("%s!A2:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if len(row) > 0 && cellString(row[0]) == id {
			return i + 2, nil
		}
	}
	return 0, fmt.Errorf("id %s not found in %s", id, sheetName)
}
