package amqp

import (
	"encoding/json"
	"time"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
)

// Mutation operations carried on the queue. The worker replays each one
// against the spreadsheet backend.
const (
	OpAddTransaction = "addTransaction"
	OpAddOrder       = "addOrder"
	OpUpdateOrder    = "updateOrder"
	OpDeleteOrder    = "deleteOrder"
)

// MutationMessage carries one local mutation to the sync worker. The full
// record travels in the message: the worker has no database of its own,
// only the spreadsheet backend to replay against.
type MutationMessage struct {
	Op          string            `json:"op"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Order       *core.Order       `json:"order,omitempty"`
	OrderID     string            `json:"orderId,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

func NewAddTransactionMessage(t core.Transaction) *MutationMessage {
	return &MutationMessage{Op: OpAddTransaction, Transaction: &t, Timestamp: time.Now()}
}

func NewAddOrderMessage(o core.Order) *MutationMessage {
	return &MutationMessage{Op: OpAddOrder, Order: &o, Timestamp: time.Now()}
}

func NewUpdateOrderMessage(o core.Order) *MutationMessage {
	return &MutationMessage{Op: OpUpdateOrder, Order: &o, Timestamp: time.Now()}
}

func NewDeleteOrderMessage(id string) *MutationMessage {
	return &MutationMessage{Op: OpDeleteOrder, OrderID: id, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes
func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MutationMessageFromJSON creates a message from JSON bytes
func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
