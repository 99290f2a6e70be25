package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports fields by their koanf key so errors name the YAML path.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	v.RegisterStructValidation(validateBoard, BoardConfig{})
	v.RegisterStructValidation(validateCORS, CORSConfig{})

	return v
}

// Validate validates the configuration and returns an error if invalid.
// The server refuses to start on an invalid config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// validateBoard keeps the janitor from sleeping past a whole session TTL.
func validateBoard(sl validator.StructLevel) {
	b, _ := sl.Current().Interface().(BoardConfig)
	if b.SessionTTL > 0 && b.JanitorInterval > b.SessionTTL {
		sl.ReportError(b.JanitorInterval, "janitor_interval", "JanitorInterval", "ltefield", "session_ttl")
	}
}

// validateCORS rejects the wildcard origin together with credentials, which
// browsers refuse and the CORS middleware panics on.
func validateCORS(sl validator.StructLevel) {
	c, _ := sl.Current().Interface().(CORSConfig)
	if c.AllowCredentials && slices.Contains(c.AllowedOrigins, "*") {
		sl.ReportError(c.AllowedOrigins, "allowed_origins", "AllowedOrigins", "nowildcard", "allow_credentials")
	}
}

// formatValidationErrors converts validator errors to a readable format.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// formatFieldError formats a single field validation error.
func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, e.Param())
	case "nowildcard":
		return fmt.Sprintf("%s must list explicit origins when %s is set", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath drops the root struct from a namespace such as
// "Config.board.session_ttl".
func formatFieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return path
}
