package domain

import (
	"fmt"
	"strings"
	"time"
)

// ValidLogLevels enumerates the accepted log levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats enumerates the accepted log output formats.
var ValidLogFormats = []string{"json", "text"}

// ServiceConfig holds process-level settings for the scanner.
type ServiceConfig struct {
	Addr string `json:"addr"`
	// RulesPath is a YAML or JSON rule file. Empty selects the embedded rules.
	RulesPath       string        `json:"rules_path,omitempty"`
	AnalysisTimeout time.Duration `json:"analysis_timeout"`
	MaxUploadBytes  int64         `json:"max_upload_bytes"`
	RateLimit       float64       `json:"rate_limit"`
	RateBurst       int           `json:"rate_burst"`
	// AllowedOrigins empty means every origin is allowed.
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	LogLevel       string   `json:"log_level"`
	LogFormat      string   `json:"log_format"`
	Version        string   `json:"version"`
}

// DefaultServiceConfig returns the settings used when nothing is configured.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Addr:            ":8000",
		AnalysisTimeout: 30 * time.Second,
		MaxUploadBytes:  10 << 20,
		RateLimit:       5,
		RateBurst:       10,
		LogLevel:        "info",
		LogFormat:       "json",
		Version:         "dev",
	}
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ServiceConfig) Validate() error {
	// 1. listen address
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr must not be empty")
	}

	// 2. timeout must be positive
	if c.AnalysisTimeout <= 0 {
		return fmt.Errorf("analysis_timeout must be > 0 (got %s)", c.AnalysisTimeout)
	}

	// 3. upload cap must be positive
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be > 0 (got %d)", c.MaxUploadBytes)
	}

	// 4. rate limiter
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be > 0 (got %.2f)", c.RateLimit)
	}
	if c.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be > 0 (got %d)", c.RateBurst)
	}

	// 5. logging
	if !contains(ValidLogLevels, c.LogLevel) {
		return fmt.Errorf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel)
	}
	if !contains(ValidLogFormats, c.LogFormat) {
		return fmt.Errorf("unknown log_format %q (valid: json, text)", c.LogFormat)
	}

	// 6. origins must not be blank entries
	for i, o := range c.AllowedOrigins {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("allowed_origins[%d] must not be empty", i)
		}
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
