package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("rate_format", validateRateFormat); err != nil {
		panic(fmt.Sprintf("failed to register rate_format validator: %v", err))
	}
	if err := Validate.RegisterValidation("path_prefix", validatePathPrefix); err != nil {
		panic(fmt.Sprintf("failed to register path_prefix validator: %v", err))
	}
}

// validateRateFormat accepts limiter rates such as "5-S", "100-M" or "1000-H".
func validateRateFormat(fl validator.FieldLevel) bool {
	return ValidateRate(fl.Field().String()) == nil
}

// validatePathPrefix accepts absolute, clean URL path prefixes without a trailing slash.
func validatePathPrefix(fl validator.FieldLevel) bool {
	return ValidatePathPrefix(fl.Field().String()) == nil
}

// ValidateRate validates a limiter rate string.
func ValidateRate(value string) error {
	if _, err := limiter.NewRateFromFormatted(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid rate: %s (expected e.g. '5-S', '100-M', '1000-H')", value)
	}
	return nil
}

// ValidatePathPrefix validates a route group prefix such as "/api/questions".
func ValidatePathPrefix(value string) error {
	if !strings.HasPrefix(value, "/") {
		return fmt.Errorf("invalid prefix %q: must start with '/'", value)
	}
	if value == "/" || strings.HasSuffix(value, "/") {
		return fmt.Errorf("invalid prefix %q: must not end with '/'", value)
	}
	for _, segment := range strings.Split(value[1:], "/") {
		switch segment {
		case "", ".", "..":
			return fmt.Errorf("invalid prefix %q: empty or relative segment", value)
		}
		if strings.ContainsAny(segment, "{}?#") {
			return fmt.Errorf("invalid prefix %q: segment %q contains a reserved character", value, segment)
		}
	}
	return nil
}
