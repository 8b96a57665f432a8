package sheet

import (
	"context"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
)

// Ports for the remote spreadsheet-backed store. Adapters return an empty
// collection alongside the error on read failure; callers decide whether
// the error matters (the state store uses it to fall back to the local
// snapshot, HTTP handlers just render the empty result).
type (
	TransactionSource interface {
		GetTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionSink interface {
		AddTransaction(ctx context.Context, t core.Transaction) error
	}

	OrderSource interface {
		GetOrders(ctx context.Context) ([]core.Order, error)
	}

	OrderSink interface {
		AddOrder(ctx context.Context, o core.Order) error
		UpdateOrder(ctx context.Context, o core.Order) error
		DeleteOrder(ctx context.Context, id string) error
	}
)
