// Package config provides configuration management for the Odds Oracle engine.
package config

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	weightSum := cfg.Model.NetRatingWeight + cfg.Model.MatchupWeight +
		cfg.Model.MomentumWeight + cfg.Model.HomeCourtWeight
	if math.Abs(weightSum-1.0) > 0.01 {
		return fmt.Errorf("model factor weights must sum to 1.0, got %.3f", weightSum)
	}

	if cfg.Model.ConfidenceFloor >= cfg.Model.ConfidenceCeiling {
		return fmt.Errorf("confidence_floor must be below confidence_ceiling")
	}

	for name, b := range cfg.Sports {
		if b.ScoreFloor >= b.ScoreCeiling {
			return fmt.Errorf("sport %s: score_floor must be below score_ceiling", name)
		}
		if b.LowScoreMax >= b.MediumScoreMax {
			return fmt.Errorf("sport %s: low_score_max must be below medium_score_max", name)
		}
	}

	for _, sport := range cfg.Sync.Sports {
		if _, ok := cfg.Sports[sport]; !ok {
			return fmt.Errorf("sync references unconfigured sport %q", sport)
		}
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	return nil
}

// formatValidationErrors converts validator errors into a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	msg := "configuration validation failed:"
	for _, e := range errs {
		msg += fmt.Sprintf("\n  - field '%s' failed rule '%s'", e.Namespace(), e.Tag())
	}
	return fmt.Errorf("%s", msg)
}
