package middleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"go.uber.org/zap"

	logpkg "github.com/stackit-qa/stackit-api/internal/logger"
	"github.com/stackit-qa/stackit-api/internal/request"
)

// Audit logs security-related events for monitoring and compliance:
// rejected credentials, rate limit violations and upstream failures.
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			event := auditEvent(m.Code)
			if event == "" {
				return
			}
			logger.Warn(event,
				zap.Int("status_code", m.Code),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeHeader(request.ClientIP(r))),
				zap.String("origin", logpkg.SanitizeHeader(r.Header.Get("Origin"))),
				zap.String("request_id", request.RequestIDFromContext(r.Context())),
			)
		})
	}
}

func auditEvent(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "security_event"
	case http.StatusTooManyRequests:
		return "rate_limit_violation"
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return "upstream_failure"
	default:
		return ""
	}
}
