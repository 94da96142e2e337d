// Package app composes the StackIt HTTP application: the CORS policy, the
// ambient middleware chain, the route groups and the composer's own endpoints.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/stackit-qa/stackit-api/internal/handlers"
	"github.com/stackit-qa/stackit-api/internal/logger"
	"github.com/stackit-qa/stackit-api/internal/middleware"
	"github.com/stackit-qa/stackit-api/internal/routes"
)

// ErrStartup wraps every failure that prevents the application from being built.
var ErrStartup = errors.New("application startup failed")

// Info is the fixed application metadata.
var Info = handlers.APIInfo{
	Title:       "StackIt API",
	Description: "A Q&A platform API built with Go",
	Version:     "1.0.0",
}

// CORSPolicy returns the cross-origin policy of the web frontends.
func CORSPolicy() middleware.CORSPolicy {
	return middleware.CORSPolicy{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods: []string{
			http.MethodDelete, http.MethodGet, http.MethodHead, http.MethodOptions,
			http.MethodPatch, http.MethodPost, http.MethodPut,
		},
		AllowedHeaders: []string{"*"},
	}
}

// SchemaInitializer creates the backing schema. It must be safe to call repeatedly.
type SchemaInitializer interface {
	EnsureSchema(ctx context.Context) error
}

// Options are the collaborators and settings the composer needs.
type Options struct {
	Schema SchemaInitializer
	Groups []routes.Group
	Logger *zap.Logger

	// Readiness dependencies; both optional.
	DB    handlers.Pinger
	Redis *redis.Client

	// RateLimiter guards the route groups when set.
	RateLimiter    *middleware.RateLimitReloader
	EnableHSTS     bool
	RequestTimeout time.Duration
	MaxRequestSize int64
	Tracing        bool
}

// App is the composed application. It is immutable once New returns.
type App struct {
	info    handlers.APIInfo
	table   *routes.Table
	router  *mux.Router
	handler http.Handler
}

// New builds the application. The schema is ensured first; no route is
// registered if that fails.
func New(ctx context.Context, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Schema == nil {
		return nil, fmt.Errorf("%w: no schema initializer", ErrStartup)
	}

	if err := opts.Schema.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("%w: ensure schema: %w", ErrStartup, err)
	}
	log.Info("schema_ready")

	table, err := routes.NewTable(opts.Groups...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartup, err)
	}

	a := &App{info: Info, table: table, router: mux.NewRouter()}
	r := a.router
	r.NotFoundHandler = handlers.NotFound()
	r.MethodNotAllowedHandler = handlers.MethodNotAllowed()

	if opts.Tracing {
		r.Use(otelmux.Middleware(logger.ServiceName))
		log.Info("otel_middleware_enabled")
	}

	groupMW := []mux.MiddlewareFunc{middleware.ContentType()}
	if opts.RateLimiter != nil {
		groupMW = append(groupMW, opts.RateLimiter.Middleware())
		log.Info("rate_limiting_enabled", zap.String("rate", opts.RateLimiter.Rate()))
	}
	table.Mount(r, groupMW...)
	for _, g := range table.Groups() {
		log.Info("route_group_mounted",
			zap.String("group", g.Key),
			zap.String("prefix", g.Prefix),
			zap.String("tag", g.Tag),
		)
	}

	handlers.NewHealthChecker(opts.DB).WithRedis(opts.Redis).RegisterRoutes(r)

	openAPI, err := handlers.NewOpenAPIHandler(handlers.BuildOpenAPI(a.info, table.Groups()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartup, err)
	}
	openAPI.RegisterRoutes(r)

	// Wrapping the router rather than r.Use keeps 404 and 405 responses inside
	// the chain; mux only runs router middleware on a match.
	var h http.Handler = r
	h = middleware.MaxRequestSize(opts.MaxRequestSize)(h)
	h = middleware.Timeout(opts.RequestTimeout)(h)
	h = middleware.ErrorHandler(log)(h)
	h = middleware.Audit(log)(h)
	h = middleware.Logging(log)(h)
	h = middleware.RequestID(h)
	h = middleware.SecurityHeaders(opts.EnableHSTS)(h)
	a.handler = middleware.CORS(CORSPolicy(), log)(h)

	return a, nil
}

// Handler returns the root handler to pass to http.Server.
func (a *App) Handler() http.Handler { return a.handler }

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Info returns the application metadata.
func (a *App) Info() handlers.APIInfo { return a.info }

// Routes returns the mounted route groups in registration order.
func (a *App) Routes() []routes.Group { return a.table.Groups() }
