package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"github.com/stackit-qa/stackit-api/internal/models"
	"github.com/stackit-qa/stackit-api/internal/request"
)

// DefaultRate applies when neither configuration nor the database provide one.
const DefaultRate = "100-M"

// RatelimitConfigStore reads and persists the configured rate.
type RatelimitConfigStore interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// RateLimitReloader wraps ulule/limiter and periodically reloads the rate from the database.
// One reloader can guard several route groups; they share the limiter and therefore the budget.
type RateLimitReloader struct {
	store       limiter.Store
	repo        RatelimitConfigStore
	defaultRate string
	log         *zap.Logger
	interval    time.Duration

	mu          sync.RWMutex
	instance    *limiter.Limiter
	currentRate string
}

// NewRateLimitReloader creates a reloader and performs the initial load.
func NewRateLimitReloader(ctx context.Context, store limiter.Store, repo RatelimitConfigStore, defaultRate string, log *zap.Logger, reloadInterval time.Duration) *RateLimitReloader {
	if defaultRate == "" {
		defaultRate = DefaultRate
	}
	r := &RateLimitReloader{
		store:       store,
		repo:        repo,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}
	r.load(ctx)
	return r
}

// Middleware returns a middleware enforcing the current rate.
func (r *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			instance := r.instance
			r.mu.RUnlock()
			if instance == nil {
				next.ServeHTTP(w, req)
				return
			}

			// a failing store lets the request through
			lctx, err := instance.Get(req.Context(), request.ClientIP(req))
			if err != nil {
				r.log.Warn("rate_limiter_store_error", zap.Error(err))
				next.ServeHTTP(w, req)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				h.Set("Retry-After", strconv.FormatInt(max(lctx.Reset-time.Now().Unix(), 1), 10))
				RespondError(w, req, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded, retry later")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// Rate returns the rate currently enforced.
func (r *RateLimitReloader) Rate() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentRate
}

// Start runs the reload loop until ctx is cancelled.
func (r *RateLimitReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

func (r *RateLimitReloader) load(ctx context.Context) {
	rateStr := r.defaultRate
	cfg, err := r.repo.Get(ctx)
	switch {
	case err != nil:
		r.log.Warn("failed_to_load_ratelimit_config_from_db_using_default",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
	case cfg != nil && cfg.Rate != "":
		rateStr = cfg.Rate
	default:
		if err := r.repo.Set(ctx, &models.RatelimitConfig{Rate: r.defaultRate}); err != nil {
			r.log.Error("failed_to_save_default_ratelimit_config",
				zap.Error(err),
				zap.String("default_rate", r.defaultRate),
			)
		}
	}

	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		r.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("rate_str", rateStr),
			zap.String("default_rate", r.defaultRate),
		)
		rateStr = r.defaultRate
		rate, err = limiter.NewRateFromFormatted(rateStr)
		if err != nil {
			r.log.Error("failed_to_parse_default_rate_limit",
				zap.Error(err),
				zap.String("default_rate", r.defaultRate),
			)
			return
		}
	}

	r.mu.Lock()
	changed := r.currentRate != rateStr
	r.instance = limiter.New(r.store, rate)
	r.currentRate = rateStr
	r.mu.Unlock()

	if changed {
		r.log.Info("rate_limit_loaded", zap.String("rate", rateStr))
	}
}
