// Package httptransport wires the HTTP server and its middleware.
package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"example.com/runtracker/internal/observability"
)

const requestIDHeader = "X-Request-Id"

// RequestLogger logs each request with a correlation id and records its
// latency histogram. The incoming X-Request-Id is honoured when present.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			recorder := &observability.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
			start := time.Now()

			reqLogger := logger.With().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()
			next.ServeHTTP(recorder, r.WithContext(reqLogger.WithContext(r.Context())))

			elapsed := time.Since(start)
			observability.ObserveHTTPRequest(routePattern(r), r.Method, recorder.Status, elapsed)

			reqLogger.Info().
				Int("status", recorder.Status).
				Dur("elapsed", elapsed).
				Msg("request handled")
		})
	}
}

// routePattern prefers the chi route template over the raw path so metric
// labels stay low-cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
