package core

import "testing"

func sale(amount int64, category string) Transaction {
	return Transaction{Type: TypeSale, Amount: Money{Cents: amount}, Category: category}
}

func expense(amount int64, category string) Transaction {
	return Transaction{Type: TypeExpense, Amount: Money{Cents: amount}, Category: category}
}

func TestTotalsAndNetProfit(t *testing.T) {
	cases := []struct {
		name   string
		txns   []Transaction
		sales  int64
		spent  int64
		profit int64
	}{
		{"empty", nil, 0, 0, 0},
		{"only sales", []Transaction{sale(1000, "Libreta"), sale(500, "Otro")}, 1500, 0, 1500},
		{"only expenses", []Transaction{expense(700, "Envío")}, 0, 700, -700},
		{"mixed", []Transaction{sale(1800000, "Agenda Personalizada"), expense(350000, "Papelería/Insumos"), expense(50000, "Envío")}, 1800000, 400000, 1400000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TotalSales(tc.txns).Cents; got != tc.sales {
				t.Fatalf("TotalSales = %d, want %d", got, tc.sales)
			}
			if got := TotalExpenses(tc.txns).Cents; got != tc.spent {
				t.Fatalf("TotalExpenses = %d, want %d", got, tc.spent)
			}
			if got := NetProfit(tc.txns).Cents; got != tc.profit {
				t.Fatalf("NetProfit = %d, want %d", got, tc.profit)
			}
			// Identity: netProfit == totalSales - totalExpenses.
			if NetProfit(tc.txns) != TotalSales(tc.txns).Sub(TotalExpenses(tc.txns)) {
				t.Fatal("net profit identity broken")
			}
		})
	}
}

func TestExpensesByCategory(t *testing.T) {
	txns := []Transaction{
		expense(100, "Envío"),
		sale(9999, "Libreta"), // ignored
		expense(200, "Marketing"),
		expense(50, "Envío"),
	}
	got := ExpensesByCategory(txns)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	// First-seen order, not alphabetical.
	if got[0].Name != "Envío" || got[0].Amount.Cents != 150 {
		t.Fatalf("got[0] = %+v", got[0])
	}
	if got[1].Name != "Marketing" || got[1].Amount.Cents != 200 {
		t.Fatalf("got[1] = %+v", got[1])
	}

	// Category sums always add up to the expense total.
	var sum int64
	for _, c := range got {
		sum += c.Amount.Cents
	}
	if sum != TotalExpenses(txns).Cents {
		t.Fatalf("category sum %d != total expenses %d", sum, TotalExpenses(txns).Cents)
	}
}

func TestClassify(t *testing.T) {
	today := NewDate(2025, 1, 10)
	cases := []struct {
		delivery Date
		status   OrderStatus
		want     Urgency
	}{
		{NewDate(2025, 1, 9), StatusPending, UrgencyOverdue},
		{NewDate(2025, 1, 10), StatusPending, UrgencyUrgent}, // due today
		{NewDate(2025, 1, 12), StatusPending, UrgencyUrgent}, // 2 days
		{NewDate(2025, 1, 13), StatusPending, UrgencyUrgent}, // boundary: 3 days
		{NewDate(2025, 1, 14), StatusPending, UrgencySoon},   // boundary: 4 days
		{NewDate(2025, 1, 16), StatusPending, UrgencySoon},   // 6 days
		{NewDate(2025, 1, 17), StatusPending, UrgencySoon},   // boundary: 7 days
		{NewDate(2025, 1, 18), StatusPending, UrgencyOnTrack},
		{NewDate(2025, 1, 20), StatusPending, UrgencyOnTrack}, // 10 days
		{NewDate(2025, 1, 9), StatusDelivered, UrgencyFinalized},
		{NewDate(2030, 1, 1), StatusDelivered, UrgencyFinalized},
		{NewDate(2025, 1, 9), StatusCancelled, UrgencyFinalized},
	}
	for i, tc := range cases {
		o := Order{DeliveryDate: tc.delivery, Status: tc.status}
		if got := Classify(o, today); got != tc.want {
			t.Fatalf("case %d (%s, %s): got %s, want %s", i, tc.delivery, tc.status, got, tc.want)
		}
	}
}

func TestSortByDelivery(t *testing.T) {
	orders := []Order{
		{ID: "c", DeliveryDate: NewDate(2025, 3, 1)},
		{ID: "a", DeliveryDate: NewDate(2025, 1, 1)},
		{ID: "b1", DeliveryDate: NewDate(2025, 2, 1)},
		{ID: "b2", DeliveryDate: NewDate(2025, 2, 1)},
	}
	got := SortByDelivery(orders)
	want := []string{"a", "b1", "b2", "c"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
	// Input must be left untouched.
	if orders[0].ID != "c" {
		t.Fatal("input slice was reordered")
	}
}

func TestCountInProgress(t *testing.T) {
	orders := []Order{
		{Status: StatusPending},
		{Status: StatusDelivered},
		{Status: StatusPending},
		{Status: StatusCancelled},
	}
	if got := CountInProgress(orders); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}
