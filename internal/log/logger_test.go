package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: "app",
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	logger.WithComponent("worker").Info("started")

	out := buf.String()
	if !strings.Contains(out, "component=worker") {
		t.Errorf("output missing component tag: %s", out)
	}
	if logger.Component() != "app" {
		t.Errorf("Component() = %q, want app", logger.Component())
	}
}

func TestFromContextFallback(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil || logger.Logger == nil {
		t.Fatal("FromContext without a stored logger should fall back to default")
	}
}

func TestMiddlewareRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Handler: slog.NewTextHandler(&buf, nil)})

	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("handling")
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get(RequestIDHeader)
		if id == "" {
			t.Fatal("no request id on response")
		}
		if !strings.Contains(buf.String(), "request_id="+id) {
			t.Errorf("log output missing request id %s: %s", id, buf.String())
		}
	})

	t.Run("honors provided id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-fixed")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "req-fixed" {
			t.Errorf("request id = %q, want req-fixed", got)
		}
	})
}
