package google

import (
	"strconv"
	"strings"
	"time"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
)

// Cell parsing is deliberately forgiving: the sheet is edited by hand and
// the API returns heterogeneous value types depending on cell formatting.

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

func cellMoney(v any) core.Money {
	switch x := v.(type) {
	case float64:
		return core.MoneyFromUnits(x)
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Second chance without the thousands-separator guess.
			f, err = strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(x), "$"), 64)
			if err != nil {
				return core.Money{}
			}
		}
		return core.MoneyFromUnits(f)
	default:
		return core.Money{}
	}
}

func cellDate(v any) core.Date {
	s := cellString(v)
	if s == "" {
		return core.Date{}
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, "02/01/2006", "2/1/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day())
		}
	}
	return core.Date{}
}

func cellTimestamp(v any) time.Time {
	s := cellString(v)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func cellAt(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

// parseTransactionRow maps one sheet row to a Transaction. Rows with an
// empty id cell (cleared rows, stray edits) are skipped.
func parseTransactionRow(row []any) (core.Transaction, bool) {
	id := cellString(cellAt(row, 0))
	if id == "" {
		return core.Transaction{}, false
	}
	return core.Transaction{
		ID:          id,
		Date:        cellDate(cellAt(row, 1)),
		Amount:      cellMoney(cellAt(row, 2)),
		Type:        core.TransactionType(cellString(cellAt(row, 3))),
		Category:    cellString(cellAt(row, 4)),
		Description: cellString(cellAt(row, 5)),
	}, true
}

func parseOrderRow(row []any) (core.Order, bool) {
	id := cellString(cellAt(row, 0))
	if id == "" {
		return core.Order{}, false
	}
	return core.Order{
		ID:           id,
		ClientName:   cellString(cellAt(row, 1)),
		ProductType:  cellString(cellAt(row, 2)),
		Value:        cellMoney(cellAt(row, 3)),
		Details:      cellString(cellAt(row, 4)),
		DeliveryDate: cellDate(cellAt(row, 5)),
		Status:       core.OrderStatus(cellString(cellAt(row, 6))),
		CreatedAt:    cellTimestamp(cellAt(row, 7)),
	}, true
}

func transactionRow(t core.Transaction) []any {
	return []any{t.ID, t.Date.String(), t.Amount.Units(), string(t.Type), t.Category, t.Description}
}

func orderRow(o core.Order) []any {
	return []any{
		o.ID,
		o.ClientName,
		o.ProductType,
		o.Value.Units(),
		o.Details,
		o.DeliveryDate.String(),
		string(o.Status),
		o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
