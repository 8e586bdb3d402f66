package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// logs HTTP requests and responses and records request metrics
func Logging(m metrics.HTTPMetrics) func(http.Handler) http.Handler {
	if m == nil {
		m = metrics.Noop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			logger := GetLoggerFromContext(r.Context())

			logger.Debug("Request received",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery)

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			statusCode := wrapped.statusCode

			m.ObserveRequest(r.Method, routePattern(r), strconv.Itoa(statusCode), duration.Seconds())

			logAttrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", statusCode,
				"duration_ms", duration.Milliseconds(),
			}

			switch {
			case statusCode >= 500:
				logger.Error("Request completed with server error", logAttrs...)
			case statusCode >= 400:
				logger.Warn("Request completed with client error", logAttrs...)
			default:
				logger.Info("Request completed successfully", logAttrs...)
			}
		})
	}
}

// chi route pattern keeps metric label cardinality bounded
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
