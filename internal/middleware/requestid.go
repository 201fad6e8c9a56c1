package middleware

import (
	"context"
	"net/http"

	"jersey-stock-api/pkg/logger"
	"jersey-stock-api/pkg/uid"
)

type contextKey string

// RequestIDKey is the context key for request ID.
const RequestIDKey contextKey = "request_id"

const maxRequestIDLen = 64

// RequestID tags each request with an id taken from X-Request-ID (or the
// provider's X-Correlation-ID) when it is safe to echo, and a fresh UUID
// otherwise.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, ok := incomingRequestID(r)
		if !ok {
			requestID = uid.New()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func incomingRequestID(r *http.Request) (string, bool) {
	id := r.Header.Get("X-Request-ID")
	if id == "" {
		id = r.Header.Get("X-Correlation-ID")
	}
	if normalized, ok := uid.Normalize(id); ok {
		return normalized, true
	}
	if id == "" || len(id) > maxRequestIDLen {
		return "", false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return "", false
		}
	}
	return id, true
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestLogger returns log tagged with the request id carried by ctx.
func RequestLogger(ctx context.Context, log *logger.Logger) *logger.Logger {
	if id := GetRequestID(ctx); id != "" {
		return log.With("request_id", id)
	}
	return log
}
