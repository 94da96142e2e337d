package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	logpkg "github.com/stackit-qa/stackit-api/internal/logger"
)

const (
	welcomeMessage = "Welcome to StackIt API"
	checkTimeout   = 5 * time.Second
)

// Root answers GET / with the welcome message.
func Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

// Health answers GET /health. It is a pure liveness probe.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Pinger is satisfied by *sql.DB and *database.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type namedCheck struct {
	name  string
	check func(ctx context.Context) error
}

// HealthChecker handles readiness requests
type HealthChecker struct {
	checks []namedCheck
}

// NewHealthChecker creates a readiness checker for the database.
func NewHealthChecker(db Pinger) *HealthChecker {
	h := &HealthChecker{}
	if db != nil {
		h.checks = append(h.checks, namedCheck{name: "database", check: db.PingContext})
	}
	return h
}

// WithRedis adds the rate limiter's Redis to the extended checks. A nil client
// is reported as "not configured".
func (h *HealthChecker) WithRedis(client *redis.Client) *HealthChecker {
	if client == nil {
		h.checks = append(h.checks, namedCheck{name: "redis"})
		return h
	}
	h.checks = append(h.checks, namedCheck{name: "redis", check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}})
	return h
}

// HealthResponse represents the readiness response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// RegisterRoutes registers the liveness and readiness endpoints.
func (h *HealthChecker) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", Root).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/health", Health).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
}

// HealthCheck handles /healthz. With ?mode=extended every dependency is
// pinged and any failure turns the answer into a 503.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		writeJSON(w, http.StatusOK, response)
		return
	}

	response.Checks = make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		if c.check == nil {
			response.Checks[c.name] = "not configured"
			continue
		}
		if err := runCheck(r.Context(), c.check); err != nil {
			response.Status = "unhealthy"
			response.Checks[c.name] = "unhealthy: " + logpkg.SanitizeString(err.Error(), 200)
			continue
		}
		response.Checks[c.name] = "healthy"
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func runCheck(ctx context.Context, check func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return check(ctx)
}
