// Package appsscript talks to the Apps Script web app that fronts the
// business spreadsheet. Reads are GETs with an action query parameter,
// writes are POSTs with a {action, data} JSON body. The body is sent as
// text/plain because Apps Script deployments reject preflighted requests.
package appsscript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
	"github.com/Juanpi2024/yeca-app-agendas/internal/sheet"
)

const (
	actionGetTransactions = "getTransactions"
	actionAddTransaction  = "addTransaction"
	actionGetOrders       = "getOrders"
	actionAddOrder        = "addOrder"
	actionUpdateOrder     = "updateOrder"
	actionDeleteOrder     = "deleteOrder"
)

type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Ensure interface conformance
var (
	_ sheet.TransactionSource = (*Client)(nil)
	_ sheet.TransactionSink   = (*Client)(nil)
	_ sheet.OrderSource       = (*Client)(nil)
	_ sheet.OrderSink         = (*Client)(nil)
)

// New creates a client for the given Apps Script exec URL.
func New(endpoint string) (*Client, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// NewWithHTTPClient is used by tests to inject an httptest client.
func NewWithHTTPClient(endpoint string, hc *http.Client) *Client {
	return &Client{endpoint: endpoint, httpClient: hc}
}

// Wire shapes: the spreadsheet script emits lowercase flat keys and is
// loose about numeric types. core.Money and core.Date tolerate both, so
// the mapping stays symmetric for every field.
type (
	wireTransaction struct {
		ID          string               `json:"id"`
		Date        core.Date            `json:"date"`
		Amount      core.Money           `json:"amount"`
		Type        core.TransactionType `json:"type"`
		Category    string               `json:"category"`
		Description string               `json:"description"`
	}

	wireOrder struct {
		ID           string           `json:"id"`
		ClientName   string           `json:"clientname"`
		ProductType  string           `json:"producttype"`
		Value        core.Money       `json:"value"`
		Details      string           `json:"details"`
		DeliveryDate core.Date        `json:"deliverydate"`
		Status       core.OrderStatus `json:"status"`
		CreatedAt    wireTime         `json:"createdat"`
	}

	envelope struct {
		Action string `json:"action"`
		Data   any    `json:"data"`
	}
)

// wireTime is an RFC 3339 timestamp that tolerates sloppy remote values.
type wireTime struct {
	time.Time
}

func (t wireTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}

func (t *wireTime) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", time.DateOnly} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

func encodeTransaction(t core.Transaction) wireTransaction {
	return wireTransaction{
		ID:          t.ID,
		Date:        t.Date,
		Amount:      t.Amount,
		Type:        t.Type,
		Category:    t.Category,
		Description: t.Description,
	}
}

func (w wireTransaction) decode() core.Transaction {
	return core.Transaction{
		ID:          w.ID,
		Type:        w.Type,
		Amount:      w.Amount,
		Description: w.Description,
		Category:    w.Category,
		Date:        w.Date,
	}
}

func encodeOrder(o core.Order) wireOrder {
	return wireOrder{
		ID:           o.ID,
		ClientName:   o.ClientName,
		ProductType:  o.ProductType,
		Value:        o.Value,
		Details:      o.Details,
		DeliveryDate: o.DeliveryDate,
		Status:       o.Status,
		CreatedAt:    wireTime{o.CreatedAt},
	}
}

func (w wireOrder) decode() core.Order {
	return core.Order{
		ID:           w.ID,
		ClientName:   w.ClientName,
		ProductType:  w.ProductType,
		Value:        w.Value,
		Details:      w.Details,
		DeliveryDate: w.DeliveryDate,
		Status:       w.Status,
		CreatedAt:    w.CreatedAt.Time,
	}
}

// GetTransactions fetches and normalizes the transaction rows. The empty
// slice accompanies any error so callers can render it directly.
func (c *Client) GetTransactions(ctx context.Context) ([]core.Transaction, error) {
	body, err := c.get(ctx, actionGetTransactions)
	if err != nil {
		return []core.Transaction{}, err
	}
	var rows []wireTransaction
	if err := json.Unmarshal(body, &rows); err != nil {
		return []core.Transaction{}, fmt.Errorf("decode %s response: %w", actionGetTransactions, err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.decode())
	}
	return out, nil
}

// GetOrders fetches and normalizes the order rows.
func (c *Client) GetOrders(ctx context.Context) ([]core.Order, error) {
	body, err := c.get(ctx, actionGetOrders)
	if err != nil {
		return []core.Order{}, err
	}
	var rows []wireOrder
	if err := json.Unmarshal(body, &rows); err != nil {
		return []core.Order{}, fmt.Errorf("decode %s response: %w", actionGetOrders, err)
	}
	out := make([]core.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.decode())
	}
	return out, nil
}

func (c *Client) AddTransaction(ctx context.Context, t core.Transaction) error {
	return c.post(ctx, actionAddTransaction, encodeTransaction(t))
}

func (c *Client) AddOrder(ctx context.Context, o core.Order) error {
	return c.post(ctx, actionAddOrder, encodeOrder(o))
}

func (c *Client) UpdateOrder(ctx context.Context, o core.Order) error {
	return c.post(ctx, actionUpdateOrder, encodeOrder(o))
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.post(ctx, actionDeleteOrder, map[string]string{"id": id})
}

func (c *Client) get(ctx context.Context, action string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?action="+url.QueryEscape(action), nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", action, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: unexpected status %d", action, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", action, err)
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, action string, data any) error {
	payload, err := json.Marshal(envelope{Action: action, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", action, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", action, err)
	}
	// Apps Script: text/plain keeps the request "simple" (no CORS preflight).
	req.Header.Set("Content-Type", "text/plain")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status %d", action, resp.StatusCode)
	}
	return nil
}
