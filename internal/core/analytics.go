package core

import "sort"

const (
	UrgencyOverdue   Urgency = "overdue"
	UrgencyUrgent    Urgency = "urgent"
	UrgencySoon      Urgency = "soon"
	UrgencyOnTrack   Urgency = "on_track"
	UrgencyFinalized Urgency = "finalized"
)

type (
	// Urgency classifies how close an order's delivery date is.
	Urgency string

	// CategoryAmount is an amount aggregated under a category label.
	CategoryAmount struct {
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
	}

	// Summary holds the headline figures derived from the transaction list.
	Summary struct {
		TotalSales        Money            `json:"totalSales"`
		TotalExpenses     Money            `json:"totalExpenses"`
		NetProfit         Money            `json:"netProfit"`
		ExpenseByCategory []CategoryAmount `json:"expenseByCategory"`
	}
)

// TotalSales sums the amounts of all VENTA transactions.
func TotalSales(txns []Transaction) Money {
	return totalByType(txns, TypeSale)
}

// TotalExpenses sums the amounts of all GASTO transactions.
func TotalExpenses(txns []Transaction) Money {
	return totalByType(txns, TypeExpense)
}

// NetProfit is sales minus expenses; it may be negative.
func NetProfit(txns []Transaction) Money {
	return TotalSales(txns).Sub(TotalExpenses(txns))
}

func totalByType(txns []Transaction, t TransactionType) Money {
	var sum Money
	for _, tx := range txns {
		if tx.Type == t {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// ExpensesByCategory aggregates GASTO amounts per category, preserving
// first-seen category order.
func ExpensesByCategory(txns []Transaction) []CategoryAmount {
	idx := make(map[string]int)
	var out []CategoryAmount
	for _, tx := range txns {
		if tx.Type != TypeExpense {
			continue
		}
		i, ok := idx[tx.Category]
		if !ok {
			idx[tx.Category] = len(out)
			out = append(out, CategoryAmount{Name: tx.Category})
			i = len(out) - 1
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}
	return out
}

// Summarize computes the full derived summary for a transaction list.
func Summarize(txns []Transaction) Summary {
	return Summary{
		TotalSales:        TotalSales(txns),
		TotalExpenses:     TotalExpenses(txns),
		NetProfit:         NetProfit(txns),
		ExpenseByCategory: ExpensesByCategory(txns),
	}
}

// DaysRemaining returns the number of whole days from today until the
// delivery date. Both dates are already midnight-normalized, so the
// division is exact; past dates yield negative values.
func DaysRemaining(delivery, today Date) int {
	return int(delivery.Sub(today.Time).Hours() / 24)
}

// Classify maps an order onto an urgency bucket. Delivered and cancelled
// orders are always finalized regardless of date math.
func Classify(o Order, today Date) Urgency {
	if o.Status != StatusPending {
		return UrgencyFinalized
	}
	days := DaysRemaining(o.DeliveryDate, today)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days <= 3:
		return UrgencyUrgent
	case days <= 7:
		return UrgencySoon
	default:
		return UrgencyOnTrack
	}
}

// SortByDelivery returns a copy of orders sorted ascending by delivery
// date. The sort is stable, so equal dates keep their relative order.
func SortByDelivery(orders []Order) []Order {
	out := make([]Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DeliveryDate.Before(out[j].DeliveryDate.Time)
	})
	return out
}

// CountInProgress counts pending orders; the insight prompt uses it as
// "agendas currently being made".
func CountInProgress(orders []Order) int {
	n := 0
	for _, o := range orders {
		if o.Status == StatusPending {
			n++
		}
	}
	return n
}
