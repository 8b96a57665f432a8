// Package insights asks OpenAI for business advice and report prose.
// Every call degrades to a fixed Spanish message instead of failing: the
// dashboard renders whatever string comes back.
package insights

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
)

const DefaultModel = openai.GPT4oMini

// Fallback messages shown when the AI cannot answer.
const (
	MsgNoTransactions  = "Registra algunas transacciones para obtener consejos personalizados."
	MsgNoAPIKey        = "Análisis no disponible (API Key de OpenAI faltante)."
	MsgEmptyCompletion = "No se pudo generar el análisis."
	MsgInsightError    = "Error al conectar con la inteligencia de OpenAI."

	MsgNoReportData   = "No hay datos para reportar."
	MsgReportNoAPIKey = "Reporte no disponible (API Key faltante)."
	MsgEmptyReport    = "Reporte generado para Agendes Yeca 2025."
	MsgReportError    = "Error al generar el reporte detallado."
)

// completer is the slice of the OpenAI client the service needs.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Service struct {
	client completer
	model  string
}

// New returns a Service bound to the given API key. An empty key yields a
// disabled service whose methods return the configuration fallbacks.
func New(apiKey, model string) *Service {
	if model == "" {
		model = DefaultModel
	}
	if apiKey == "" {
		slog.Warn("OpenAI API key not configured, insights disabled")
		return &Service{model: model}
	}
	return &Service{client: openai.NewClient(apiKey), model: model}
}

// NewWithClient is used by tests to inject a fake completer.
func NewWithClient(client completer, model string) *Service {
	if model == "" {
		model = DefaultModel
	}
	return &Service{client: client, model: model}
}

// Enabled reports whether an API key was configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// BusinessInsights returns strategic advice grounded on the transaction
// history. agendasInProgress adds workshop context when positive.
func (s *Service) BusinessInsights(ctx context.Context, transactions []core.Transaction, agendasInProgress int) string {
	if len(transactions) == 0 {
		return MsgNoTransactions
	}
	if s.client == nil {
		return MsgNoAPIKey
	}

	var lines []string
	for _, t := range transactions {
		lines = append(lines, fmt.Sprintf("%s: %s - %s (%s)",
			t.Date.Format("2006-01-02"), t.Type, t.Amount, t.Description))
	}

	agendasContext := ""
	if agendasInProgress > 0 {
		agendasContext = fmt.Sprintf("Actualmente Yessica está confeccionando %d agendas con los materiales comprados.", agendasInProgress)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: `Eres un experto consultor de negocios especializado en productos artesanales premium para "Agendes Yeca 2025".
CONTEXTO: Precios de mercado $13.000 - $18.000 CLP. No compite por precio bajo, sino por exclusividad.`,
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(`Proporciona 3 consejos estratégicos basados en esto:
%s
DATOS:
%s

Calcula utilidad esperada, justifica el precio de $18k y sé motivador. Máximo 150 palabras.`, agendasContext, strings.Join(lines, "\n")),
			},
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "Insight completion failed", "error", err)
		return MsgInsightError
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return MsgEmptyCompletion
	}
	return resp.Choices[0].Message.Content
}

// EmailReport returns the body text for the periodic report email.
func (s *Service) EmailReport(ctx context.Context, transactions []core.Transaction) string {
	if len(transactions) == 0 {
		return MsgNoReportData
	}
	if s.client == nil {
		return MsgReportNoAPIKey
	}

	var lines []string
	for _, t := range transactions {
		lines = append(lines, fmt.Sprintf("%s | %s | $%s | %s (%s)",
			t.Date.Format("2006-01-02"), t.Type, t.Amount, t.Description, t.Category))
	}

	totalSales := core.TotalSales(transactions)
	totalExpenses := core.TotalExpenses(transactions)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.5,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: `Eres un asistente contable profesional para "Agendes Yeca 2025".`,
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(`Genera un REPORTE DE NEGOCIO elegante:
Ventas: $%s
Gastos: $%s
Utilidad: $%s
DETALLE:
%s`, totalSales, totalExpenses, totalSales.Sub(totalExpenses), strings.Join(lines, "\n")),
			},
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "Report completion failed", "error", err)
		return MsgReportError
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return MsgEmptyReport
	}
	return resp.Choices[0].Message.Content
}
