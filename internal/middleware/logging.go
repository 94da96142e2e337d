package middleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"go.uber.org/zap"

	logpkg "github.com/stackit-qa/stackit-api/internal/logger"
	"github.com/stackit-qa/stackit-api/internal/request"
)

// Logging emits one access log line per request.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			logger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.Int("status_code", m.Code),
				zap.Int64("bytes_written", m.Written),
				zap.Int64("duration_ms", m.Duration.Milliseconds()),
				zap.String("client_ip", logpkg.SanitizeHeader(request.ClientIP(r))),
				zap.String("request_id", request.RequestIDFromContext(r.Context())),
			)
		})
	}
}
