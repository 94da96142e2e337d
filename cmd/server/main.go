package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stackit-qa/stackit-api/internal/app"
	"github.com/stackit-qa/stackit-api/internal/config"
	"github.com/stackit-qa/stackit-api/internal/database"
	"github.com/stackit-qa/stackit-api/internal/logger"
	"github.com/stackit-qa/stackit-api/internal/middleware"
	"github.com/stackit-qa/stackit-api/internal/telemetry"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.Bool("rate_limiting", cfg.RedisURL != ""),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// run owns every resource and releases it through defers before returning,
	// so the process only exits here.
	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Error("server_stopped_with_error", zap.Error(err))
		_ = logger.Sync(zapLogger)
		os.Exit(1)
	}
	_ = logger.Sync(zapLogger)
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	tracing := false
	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(context.Background(), telemetry.Options{
			ServiceName:    logger.ServiceName,
			ServiceVersion: app.Info.Version,
			Endpoint:       cfg.OTELEndpoint,
		})
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracing = true
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(ctx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()

	var (
		redisClient *redis.Client
		rateLimiter *middleware.RateLimitReloader
	)
	if cfg.RedisURL != "" {
		redisClient, err = middleware.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")

		store, err := middleware.NewRedisStore(redisClient)
		if err != nil {
			return err
		}
		// On a fresh database the first load falls back to the default rate;
		// the schema is created by app.New and the next reload persists it.
		rateLimiter = middleware.NewRateLimitReloader(reloadCtx, store,
			database.NewRatelimitConfigRepository(db), cfg.RateLimitDefault, zapLogger, time.Minute)
	} else {
		zapLogger.Warn("rate_limiting_disabled_redis_not_configured")
	}

	groups, err := app.ProxyGroups(cfg, zapLogger)
	if err != nil {
		return err
	}

	application, err := app.New(reloadCtx, app.Options{
		Schema:         db,
		Groups:         groups,
		Logger:         zapLogger,
		DB:             db,
		Redis:          redisClient,
		RateLimiter:    rateLimiter,
		EnableHSTS:     cfg.EnableHSTS,
		RequestTimeout: cfg.RequestTimeout,
		MaxRequestSize: middleware.DefaultMaxRequestSize,
		Tracing:        tracing,
	})
	if err != nil {
		return err
	}
	for _, g := range application.Routes() {
		zapLogger.Info("route_group_upstream",
			zap.String("prefix", g.Prefix),
			zap.String("upstream", cfg.Upstream(g.Key)),
		)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           application.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	if rateLimiter != nil {
		go rateLimiter.Start(reloadCtx)
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-quit:
	}

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	zapLogger.Info("server_exited")
	return nil
}
