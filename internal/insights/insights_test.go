package insights

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
)

type fakeCompleter struct {
	reply  string
	err    error
	gotReq openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.gotReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		{
			ID:          "t1",
			Type:        core.TypeSale,
			Amount:      core.Money{Cents: 18_000_00},
			Description: "Agenda personalizada",
			Category:    "Agenda Personalizada",
			Date:        core.NewDate(2025, 1, 10),
		},
		{
			ID:          "t2",
			Type:        core.TypeExpense,
			Amount:      core.Money{Cents: 4_500_00},
			Description: "Cartulinas",
			Category:    "Papelería/Insumos",
			Date:        core.NewDate(2025, 1, 8),
		},
	}
}

func TestBusinessInsights_Fallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("no transactions", func(t *testing.T) {
		s := NewWithClient(&fakeCompleter{reply: "ignored"}, "")
		if got := s.BusinessInsights(ctx, nil, 0); got != MsgNoTransactions {
			t.Errorf("got %q", got)
		}
	})

	t.Run("no api key", func(t *testing.T) {
		s := New("", "")
		if s.Enabled() {
			t.Error("service without key should be disabled")
		}
		if got := s.BusinessInsights(ctx, sampleTransactions(), 0); got != MsgNoAPIKey {
			t.Errorf("got %q", got)
		}
	})

	t.Run("completion error", func(t *testing.T) {
		s := NewWithClient(&fakeCompleter{err: errors.New("rate limited")}, "")
		if got := s.BusinessInsights(ctx, sampleTransactions(), 0); got != MsgInsightError {
			t.Errorf("got %q", got)
		}
	})

	t.Run("empty completion", func(t *testing.T) {
		s := NewWithClient(&fakeCompleter{reply: ""}, "")
		if got := s.BusinessInsights(ctx, sampleTransactions(), 0); got != MsgEmptyCompletion {
			t.Errorf("got %q", got)
		}
	})
}

func TestBusinessInsights_PromptContents(t *testing.T) {
	fake := &fakeCompleter{reply: "1. Sube el precio."}
	s := NewWithClient(fake, "")

	got := s.BusinessInsights(context.Background(), sampleTransactions(), 3)
	if got != "1. Sube el precio." {
		t.Fatalf("got %q", got)
	}

	if fake.gotReq.Model != DefaultModel {
		t.Errorf("model = %q, want %q", fake.gotReq.Model, DefaultModel)
	}
	if len(fake.gotReq.Messages) != 2 {
		t.Fatalf("messages = %d, want system+user", len(fake.gotReq.Messages))
	}
	user := fake.gotReq.Messages[1].Content
	for _, want := range []string{
		"confeccionando 3 agendas",
		"2025-01-10: VENTA - 18000 (Agenda personalizada)",
		"2025-01-08: GASTO - 4500 (Cartulinas)",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestBusinessInsights_NoAgendasContext(t *testing.T) {
	fake := &fakeCompleter{reply: "ok"}
	s := NewWithClient(fake, "")

	s.BusinessInsights(context.Background(), sampleTransactions(), 0)

	if strings.Contains(fake.gotReq.Messages[1].Content, "confeccionando") {
		t.Error("zero agendas in progress should omit the workshop context")
	}
}

func TestEmailReport(t *testing.T) {
	ctx := context.Background()

	t.Run("no data", func(t *testing.T) {
		s := NewWithClient(&fakeCompleter{reply: "ignored"}, "")
		if got := s.EmailReport(ctx, nil); got != MsgNoReportData {
			t.Errorf("got %q", got)
		}
	})

	t.Run("no api key", func(t *testing.T) {
		s := New("", "")
		if got := s.EmailReport(ctx, sampleTransactions()); got != MsgReportNoAPIKey {
			t.Errorf("got %q", got)
		}
	})

	t.Run("totals in prompt", func(t *testing.T) {
		fake := &fakeCompleter{reply: "REPORTE"}
		s := NewWithClient(fake, "")

		if got := s.EmailReport(ctx, sampleTransactions()); got != "REPORTE" {
			t.Fatalf("got %q", got)
		}
		user := fake.gotReq.Messages[1].Content
		for _, want := range []string{
			"Ventas: $18000",
			"Gastos: $4500",
			"Utilidad: $13500",
			"2025-01-10 | VENTA | $18000 | Agenda personalizada (Agenda Personalizada)",
		} {
			if !strings.Contains(user, want) {
				t.Errorf("report prompt missing %q:\n%s", want, user)
			}
		}
	})

	t.Run("completion error", func(t *testing.T) {
		s := NewWithClient(&fakeCompleter{err: errors.New("boom")}, "")
		if got := s.EmailReport(ctx, sampleTransactions()); got != MsgReportError {
			t.Errorf("got %q", got)
		}
	})
}

func TestMailtoURL(t *testing.T) {
	got := MailtoURL("profeyeca2021@gmail.com", "Reporte Contable - Agendes Yeca 2025", "Ventas: $18000\nGastos: $4500")

	if !strings.HasPrefix(got, "mailto:profeyeca2021@gmail.com?") {
		t.Fatalf("got %q", got)
	}
	if strings.Contains(got, "+") {
		t.Error("mailto URL must not use '+' for spaces")
	}
	if !strings.Contains(got, "subject=Reporte%20Contable%20-%20Agendes%20Yeca%202025") {
		t.Errorf("subject not encoded as expected: %q", got)
	}
	if !strings.Contains(got, "body=Ventas%3A%20%2418000%0AGastos%3A%20%244500") {
		t.Errorf("body not encoded as expected: %q", got)
	}
}
