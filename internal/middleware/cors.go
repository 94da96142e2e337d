package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CORSPolicy is the cross-origin policy applied to every response.
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowCredentials bool
	AllowedMethods   []string
	AllowedHeaders   []string
	MaxAge           int
}

// CORS wraps handlers with rs/cors configured from policy. Preflight requests
// are answered here and never reach the router.
func CORS(policy CORSPolicy, logger *zap.Logger) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   append([]string(nil), policy.AllowedOrigins...),
		AllowCredentials: policy.AllowCredentials,
		AllowedMethods:   append([]string(nil), policy.AllowedMethods...),
		AllowedHeaders:   append([]string(nil), policy.AllowedHeaders...),
		MaxAge:           policy.MaxAge,
	}
	if logger != nil && logger.Core().Enabled(zapcore.DebugLevel) {
		opts.Debug = true
		opts.Logger = corsLogger{log: logger}
	}
	c := cors.New(opts)

	if logger != nil {
		logger.Info("cors_policy_configured",
			zap.Strings("allowed_origins", policy.AllowedOrigins),
			zap.Bool("allow_credentials", policy.AllowCredentials),
			zap.Strings("allowed_methods", policy.AllowedMethods),
			zap.Strings("allowed_headers", policy.AllowedHeaders),
		)
	}
	return c.Handler
}

// corsLogger routes rs/cors debug output into zap.
type corsLogger struct {
	log *zap.Logger
}

func (l corsLogger) Printf(format string, args ...any) {
	l.log.Debug("cors_decision", zap.String("detail", fmt.Sprintf(format, args...)))
}
