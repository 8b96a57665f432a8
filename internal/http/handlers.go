package http

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
	"github.com/Juanpi2024/yeca-app-agendas/internal/insights"
	applog "github.com/Juanpi2024/yeca-app-agendas/internal/log"
	"github.com/Juanpi2024/yeca-app-agendas/internal/store"
)

type (
	stateResponse struct {
		Loading      bool               `json:"loading"`
		Transactions []core.Transaction `json:"transactions"`
		Orders       []core.Order       `json:"orders"`
	}

	transactionDraft struct {
		Type        core.TransactionType `json:"type"`
		Amount      core.Money           `json:"amount"`
		Description string               `json:"description"`
		Category    string               `json:"category"`
		Date        core.Date            `json:"date"`
	}

	orderDraft struct {
		ClientName   string     `json:"clientName"`
		ProductType  string     `json:"productType"`
		Value        core.Money `json:"value"`
		Details      string     `json:"details"`
		DeliveryDate core.Date  `json:"deliveryDate"`
	}

	statusPatch struct {
		Status core.OrderStatus `json:"status"`
	}

	// orderView annotates an order with the delivery math the agenda
	// board renders.
	orderView struct {
		core.Order
		Urgency       core.Urgency `json:"urgency"`
		DaysRemaining int          `json:"daysRemaining"`
	}

	insightResponse struct {
		Insight string `json:"insight"`
	}

	reportResponse struct {
		Report string `json:"report"`
		Mailto string `json:"mailto"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st := s.store.State()
	writeJSON(w, http.StatusOK, stateResponse{
		Loading:      s.store.Loading(),
		Transactions: emptyIfNil(st.Transactions),
		Orders:       emptyIfNil(st.Orders),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, emptyIfNil(s.store.State().Transactions))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var draft transactionDraft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := s.store.AddTransaction(r.Context(), store.TransactionDraft{
		Type:        draft.Type,
		Amount:      draft.Amount,
		Description: draft.Description,
		Category:    draft.Category,
		Date:        draft.Date,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		"id", created.ID, "type", created.Type, "amount_cents", created.Amount.Cents)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	// Absent ids respond 204 as well: the record is gone either way.
	s.store.DeleteTransaction(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	sorted := core.SortByDelivery(s.store.State().Orders)

	views := make([]orderView, 0, len(sorted))
	for _, o := range sorted {
		views = append(views, orderView{
			Order:         o,
			Urgency:       core.Classify(o, today),
			DaysRemaining: core.DaysRemaining(o.DeliveryDate, today),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var draft orderDraft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := s.store.AddOrder(r.Context(), store.OrderDraft{
		ClientName:   draft.ClientName,
		ProductType:  draft.ProductType,
		Value:        draft.Value,
		Details:      draft.Details,
		DeliveryDate: draft.DeliveryDate,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Order created",
		"id", created.ID, "client", created.ClientName, "delivery", created.DeliveryDate.Format("2006-01-02"))
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var patch statusPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	updated, err := s.store.UpdateOrderStatus(r.Context(), r.PathValue("id"), patch.Status)
	switch {
	case errors.Is(err, core.ErrInvalidStatus):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case errors.Is(err, store.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteOrder(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Summarize(s.store.State().Transactions))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	st := s.store.State()
	key := stateFingerprint(st)

	if cached, ok := s.insightCache.Get(key); ok {
		s.metrics.insightCache(true)
		writeJSON(w, http.StatusOK, insightResponse{Insight: cached})
		return
	}
	s.metrics.insightCache(false)

	text := s.ai.BusinessInsights(r.Context(), st.Transactions, core.CountInProgress(st.Orders))
	s.insightCache.Set(key, text)
	writeJSON(w, http.StatusOK, insightResponse{Insight: text})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	st := s.store.State()
	key := stateFingerprint(st)

	text, ok := s.reportCache.Get(key)
	if !ok {
		text = s.ai.EmailReport(r.Context(), st.Transactions)
		s.reportCache.Set(key, text)
	}

	writeJSON(w, http.StatusOK, reportResponse{
		Report: text,
		Mailto: insights.MailtoURL(s.reportRecipient, s.reportSubject, text),
	})
}

// stateFingerprint keys the AI caches on the exact business data, so any
// mutation invalidates naturally on the next request.
func stateFingerprint(st core.BusinessState) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(st)
	return hex.EncodeToString(h.Sum(nil))
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
