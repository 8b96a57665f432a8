package log

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries a caller-provided request id; one is generated
// when absent.
const RequestIDHeader = "X-Request-Id"

// Middleware attaches a request-scoped logger, tagged with a request id,
// to the request context. The id is echoed back on the response.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			reqLogger := logger.With("request_id", requestID)
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), reqLogger)))
		})
	}
}
