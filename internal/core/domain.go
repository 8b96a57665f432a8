package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TypeSale    TransactionType = "VENTA"
	TypeExpense TransactionType = "GASTO"
)

const (
	StatusPending   OrderStatus = "PENDIENTE"
	StatusDelivered OrderStatus = "ENTREGADO"
	StatusCancelled OrderStatus = "CANCELADO"
)

type (
	TransactionType string

	OrderStatus string

	// Date is a civil date. Time-of-day is always midnight UTC so that
	// date arithmetic yields whole days.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
	}

	Order struct {
		ID           string      `json:"id"`
		ClientName   string      `json:"clientName"`
		ProductType  string      `json:"productType"`
		Value        Money       `json:"value"`
		Details      string      `json:"details"`
		DeliveryDate Date        `json:"deliveryDate"`
		Status       OrderStatus `json:"status"`
		CreatedAt    time.Time   `json:"createdAt"`
	}

	// BusinessState is the aggregate root: most-recent-first transactions
	// plus orders in insertion order. Serialized as-is for the local snapshot.
	BusinessState struct {
		Transactions []Transaction `json:"transactions"`
		Orders       []Order       `json:"orders"`
	}
)

// Category taxonomy is fixed per transaction type.
var Categories = map[TransactionType][]string{
	TypeSale:    {"Agenda Personalizada", "Agenda Stock", "Planner Semanal", "Accesorios", "Libreta", "Otro"},
	TypeExpense: {"Papelería/Insumos", "Herramientas", "Marketing", "Envío", "Servicios", "Otros"},
}

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyClientName  = errors.New("empty client name")
	ErrEmptyProductType = errors.New("empty product type")
	ErrInvalidStatus    = errors.New("invalid order status")
)

func (t TransactionType) Valid() bool {
	return t == TypeSale || t == TypeExpense
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// CategoriesFor returns the fixed category set for a transaction type.
func CategoriesFor(t TransactionType) []string {
	return append([]string(nil), Categories[t]...)
}

// ValidCategory reports whether category belongs to the taxonomy of t.
func ValidCategory(t TransactionType, category string) bool {
	for _, c := range Categories[t] {
		if c == category {
			return true
		}
	}
	return false
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO 8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

// UnmarshalJSON accepts calendar dates and full timestamps; anything
// unparseable yields the zero date rather than an error so that one bad
// cell in a remote row cannot break ingestion.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		d.Time = t
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	}
	d.Time = time.Time{}
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if !ValidCategory(t.Type, t.Category) {
		return ErrInvalidCategory
	}
	return t.Date.Validate()
}

func (o Order) Validate() error {
	if strings.TrimSpace(o.ClientName) == "" {
		return ErrEmptyClientName
	}
	if strings.TrimSpace(o.ProductType) == "" {
		return ErrEmptyProductType
	}
	if err := o.Value.Validate(); err != nil {
		return err
	}
	if err := o.DeliveryDate.Validate(); err != nil {
		return err
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Clone returns a deep copy; the state store hands these out so callers
// can never alias its internal slices.
func (s BusinessState) Clone() BusinessState {
	out := BusinessState{
		Transactions: make([]Transaction, len(s.Transactions)),
		Orders:       make([]Order, len(s.Orders)),
	}
	copy(out.Transactions, s.Transactions)
	copy(out.Orders, s.Orders)
	return out
}
