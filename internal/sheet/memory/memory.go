// Package memory is an in-process backend used for tests and offline
// development. It honors the same contracts as the remote adapters.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
	"github.com/Juanpi2024/yeca-app-agendas/internal/sheet"
)

type Store struct {
	mu     sync.Mutex
	txns   []core.Transaction
	orders []core.Order
}

// Ensure interface conformance
var (
	_ sheet.TransactionSource = (*Store)(nil)
	_ sheet.TransactionSink   = (*Store)(nil)
	_ sheet.OrderSource       = (*Store)(nil)
	_ sheet.OrderSink         = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Seed replaces the stored collections; handy for test fixtures.
func (s *Store) Seed(txns []core.Transaction, orders []core.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append([]core.Transaction(nil), txns...)
	s.orders = append([]core.Order(nil), orders...)
}

func (s *Store) GetTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txns...), nil
}

func (s *Store) GetOrders(_ context.Context) ([]core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Order(nil), s.orders...), nil
}

func (s *Store) AddTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, t)
	return nil
}

func (s *Store) AddOrder(_ context.Context, o core.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o)
	return nil
}

func (s *Store) UpdateOrder(_ context.Context, o core.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			s.orders[i] = o
			return nil
		}
	}
	return fmt.Errorf("order %s not found", o.ID)
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("order %s not found", id)
}
