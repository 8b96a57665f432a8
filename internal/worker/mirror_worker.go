// Package worker replays queued mutations against the spreadsheet backend.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Juanpi2024/yeca-app-agendas/internal/amqp"
	"github.com/Juanpi2024/yeca-app-agendas/internal/sheet"
)

// MirrorWorker applies mutation messages to the remote spreadsheet. Errors
// bubble up so the consumer can nack and requeue the delivery.
type MirrorWorker struct {
	transactions sheet.TransactionSink
	orders       sheet.OrderSink
}

func NewMirrorWorker(transactions sheet.TransactionSink, orders sheet.OrderSink) *MirrorWorker {
	return &MirrorWorker{
		transactions: transactions,
		orders:       orders,
	}
}

// HandleMutation dispatches one queued mutation to the backend.
func (w *MirrorWorker) HandleMutation(ctx context.Context, msg *amqp.MutationMessage) error {
	slog.InfoContext(ctx, "Processing mutation message", "op", msg.Op)

	switch msg.Op {
	case amqp.OpAddTransaction:
		if msg.Transaction == nil {
			return fmt.Errorf("%s message without transaction payload", msg.Op)
		}
		if err := w.transactions.AddTransaction(ctx, *msg.Transaction); err != nil {
			return fmt.Errorf("add transaction %s: %w", msg.Transaction.ID, err)
		}

	case amqp.OpAddOrder:
		if msg.Order == nil {
			return fmt.Errorf("%s message without order payload", msg.Op)
		}
		if err := w.orders.AddOrder(ctx, *msg.Order); err != nil {
			return fmt.Errorf("add order %s: %w", msg.Order.ID, err)
		}

	case amqp.OpUpdateOrder:
		if msg.Order == nil {
			return fmt.Errorf("%s message without order payload", msg.Op)
		}
		if err := w.orders.UpdateOrder(ctx, *msg.Order); err != nil {
			return fmt.Errorf("update order %s: %w", msg.Order.ID, err)
		}

	case amqp.OpDeleteOrder:
		if msg.OrderID == "" {
			return fmt.Errorf("%s message without order id", msg.Op)
		}
		if err := w.orders.DeleteOrder(ctx, msg.OrderID); err != nil {
			return fmt.Errorf("delete order %s: %w", msg.OrderID, err)
		}

	default:
		// Acked, not requeued: a retry cannot make the op known.
		slog.WarnContext(ctx, "Dropping unknown mutation op", "op", msg.Op)
	}

	return nil
}
