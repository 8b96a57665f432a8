package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		ID:          "t1",
		Type:        TypeSale,
		Amount:      Money{Cents: 1500000},
		Description: "Agenda floral",
		Category:    "Agenda Personalizada",
		Date:        NewDate(2025, 1, 10),
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"bad type", func(tx *Transaction) { tx.Type = "TRUEQUE" }, ErrInvalidType},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"blank description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"category from wrong type", func(tx *Transaction) { tx.Category = "Marketing" }, ErrInvalidCategory},
		{"unknown category", func(tx *Transaction) { tx.Category = "Sueldos" }, ErrInvalidCategory},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := valid
			tc.mutate(&tx)
			if err := tx.Validate(); err != tc.want {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestOrderValidate(t *testing.T) {
	valid := Order{
		ID:           "o1",
		ClientName:   "Camila",
		ProductType:  "Agenda Personalizada",
		Value:        Money{Cents: 1800000},
		Details:      "tapa rosada",
		DeliveryDate: NewDate(2025, 2, 1),
		Status:       StatusPending,
		CreatedAt:    time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid order rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Order)
		want   error
	}{
		{"blank client", func(o *Order) { o.ClientName = "" }, ErrEmptyClientName},
		{"blank product", func(o *Order) { o.ProductType = " " }, ErrEmptyProductType},
		{"zero value", func(o *Order) { o.Value = Money{} }, ErrInvalidAmount},
		{"zero delivery", func(o *Order) { o.DeliveryDate = Date{} }, ErrInvalidDate},
		{"bad status", func(o *Order) { o.Status = "PERDIDO" }, ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := valid
			tc.mutate(&o)
			if err := o.Validate(); err != tc.want {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidCategory(t *testing.T) {
	if !ValidCategory(TypeSale, "Libreta") {
		t.Fatal("Libreta should be a sale category")
	}
	if ValidCategory(TypeSale, "Envío") {
		t.Fatal("Envío is an expense category, not a sale one")
	}
	if ValidCategory(TypeExpense, "") {
		t.Fatal("empty category should never validate")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-10")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2025-01-10" {
		t.Fatalf("got %s", d)
	}
	if _, err := ParseDate("10/01/2025"); err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDateJSONTolerance(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`"2025-01-10"`, "2025-01-10"},
		{`"2025-01-10T14:30:00Z"`, "2025-01-10"},  // timestamp truncated to date
		{`"not-a-date"`, "0001-01-01"},            // tolerated, zero date
		{`""`, "0001-01-01"},
	}
	for i, tc := range cases {
		var d Date
		if err := json.Unmarshal([]byte(tc.in), &d); err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if d.String() != tc.want {
			t.Fatalf("case %d: got %s, want %s", i, d, tc.want)
		}
	}

	d := NewDate(2025, 3, 7)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2025-03-07"` {
		t.Fatalf("marshal: got %s", b)
	}
}

func TestBusinessStateClone(t *testing.T) {
	s := BusinessState{
		Transactions: []Transaction{{ID: "a"}, {ID: "b"}},
		Orders:       []Order{{ID: "o"}},
	}
	c := s.Clone()
	c.Transactions[0].ID = "mutated"
	c.Orders[0].ID = "mutated"
	if s.Transactions[0].ID != "a" || s.Orders[0].ID != "o" {
		t.Fatal("Clone must not alias the original slices")
	}
}
