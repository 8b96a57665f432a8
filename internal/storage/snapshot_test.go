package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	s, err := NewSnapshotStore(filepath.Join(t.TempDir(), "yeca.db"))
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	state := core.BusinessState{
		Transactions: []core.Transaction{
			{
				ID:          "t1",
				Type:        core.TypeSale,
				Amount:      core.Money{Cents: 1800000},
				Description: "agenda floral",
				Category:    "Agenda Personalizada",
				Date:        core.NewDate(2025, 1, 10),
			},
		},
		Orders: []core.Order{
			{
				ID:           "o1",
				ClientName:   "Camila",
				ProductType:  "Libreta",
				Value:        core.Money{Cents: 950000},
				DeliveryDate: core.NewDate(2025, 2, 1),
				Status:       core.StatusPending,
			},
		},
	}

	if err := s.Save(ctx, "agenda_pro_data_v2", state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.Load(ctx, "agenda_pro_data_v2")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("snapshot should exist")
	}
	if len(got.Transactions) != 1 || got.Transactions[0].ID != "t1" {
		t.Fatalf("transactions = %+v", got.Transactions)
	}
	if got.Transactions[0].Amount.Cents != 1800000 {
		t.Fatalf("amount = %d", got.Transactions[0].Amount.Cents)
	}
	if len(got.Orders) != 1 || got.Orders[0].DeliveryDate.String() != "2025-02-01" {
		t.Fatalf("orders = %+v", got.Orders)
	}
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := core.BusinessState{Transactions: []core.Transaction{{ID: "a"}}}
	second := core.BusinessState{Transactions: []core.Transaction{{ID: "b"}, {ID: "c"}}}

	if err := s.Save(ctx, "k", first); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "k", second); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Load(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Load: %v, %v", ok, err)
	}
	if len(got.Transactions) != 2 || got.Transactions[0].ID != "b" {
		t.Fatalf("latest snapshot should win, got %+v", got.Transactions)
	}
}

func TestLoadMissingKey(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Load(context.Background(), "never_written")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("missing key must report ok=false")
	}
}
