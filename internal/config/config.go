package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stackit-qa/stackit-api/internal/validation"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string        `validate:"required"`
	ServerPort       string        `validate:"required,numeric"`
	UpstreamURL      string        `validate:"required,http_url"`
	Upstreams        Upstreams
	RedisURL         string        `validate:"omitempty,url"`
	RateLimitDefault string        `validate:"required,rate_format"`
	EnableHSTS       bool
	ServerDebugMode  bool
	RequestTimeout   time.Duration `validate:"gt=0"`
	ShutdownTimeout  time.Duration `validate:"gt=0"`
	OTELEnabled      bool
	OTELEndpoint     string `validate:"required_if=OTELEnabled true"`
}

// Upstreams holds the base URL each route group is delegated to.
// An empty entry falls back to Config.UpstreamURL.
type Upstreams struct {
	Auth      string `validate:"omitempty,http_url"`
	Users     string `validate:"omitempty,http_url"`
	Questions string `validate:"omitempty,http_url"`
	Answers   string `validate:"omitempty,http_url"`
	Comments  string `validate:"omitempty,http_url"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := fromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// upstreamFields are the fields needed to resolve route group upstreams.
var upstreamFields = []string{
	"UpstreamURL",
	"Upstreams.Auth",
	"Upstreams.Users",
	"Upstreams.Questions",
	"Upstreams.Answers",
	"Upstreams.Comments",
}

// LoadUpstreams reads the full environment but validates only the upstream
// settings, for tools that never open the database.
func LoadUpstreams() (*Config, error) {
	cfg := fromEnv()
	if err := envErrors(validation.Validate.StructPartial(cfg, upstreamFields...)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerPort:       getEnv("SERVER_PORT", "8000"),
		UpstreamURL:      getEnv("UPSTREAM_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		RateLimitDefault: getEnv("RATE_LIMIT_DEFAULT", "100-M"),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Upstreams: Upstreams{
			Auth:      getEnv("AUTH_UPSTREAM_URL", ""),
			Users:     getEnv("USERS_UPSTREAM_URL", ""),
			Questions: getEnv("QUESTIONS_UPSTREAM_URL", ""),
			Answers:   getEnv("ANSWERS_UPSTREAM_URL", ""),
			Comments:  getEnv("COMMENTS_UPSTREAM_URL", ""),
		},
	}
}

// Validate checks the configuration and reports every invalid field at once.
func (c *Config) Validate() error {
	return envErrors(validation.Validate.Struct(c))
}

// envErrors rewrites validator errors in terms of environment variable names.
func envErrors(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate config: %w", err)
	}

	errs := make([]error, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		errs = append(errs, fmt.Errorf("%s is invalid (%s)", envName(fieldError.StructNamespace()), fieldError.Tag()))
	}
	return errors.Join(errs...)
}

// Upstream resolves the base URL for a route group by its tag-independent key
// ("auth", "users", "questions", "answers", "comments").
func (c *Config) Upstream(group string) string {
	var override string
	switch group {
	case "auth":
		override = c.Upstreams.Auth
	case "users":
		override = c.Upstreams.Users
	case "questions":
		override = c.Upstreams.Questions
	case "answers":
		override = c.Upstreams.Answers
	case "comments":
		override = c.Upstreams.Comments
	}
	if override != "" {
		return override
	}
	return c.UpstreamURL
}

var envNames = map[string]string{
	"Config.DatabaseURL":         "DATABASE_URL",
	"Config.ServerPort":          "SERVER_PORT",
	"Config.UpstreamURL":         "UPSTREAM_URL",
	"Config.RedisURL":            "REDIS_URL",
	"Config.RateLimitDefault":    "RATE_LIMIT_DEFAULT",
	"Config.RequestTimeout":      "REQUEST_TIMEOUT",
	"Config.ShutdownTimeout":     "SHUTDOWN_TIMEOUT",
	"Config.OTELEndpoint":        "OTEL_EXPORTER_OTLP_ENDPOINT",
	"Config.Upstreams.Auth":      "AUTH_UPSTREAM_URL",
	"Config.Upstreams.Users":     "USERS_UPSTREAM_URL",
	"Config.Upstreams.Questions": "QUESTIONS_UPSTREAM_URL",
	"Config.Upstreams.Answers":   "ANSWERS_UPSTREAM_URL",
	"Config.Upstreams.Comments":  "COMMENTS_UPSTREAM_URL",
}

func envName(namespace string) string {
	if name, ok := envNames[namespace]; ok {
		return name
	}
	return strings.TrimPrefix(namespace, "Config.")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// plain integers are read as seconds
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
