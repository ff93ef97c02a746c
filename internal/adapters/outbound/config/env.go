// Package config loads process settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/complyai/comply/internal/domain"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAddr            = "COMPLY_ADDR"
	EnvRulesPath       = "COMPLY_RULES_PATH"
	EnvAnalysisTimeout = "COMPLY_ANALYSIS_TIMEOUT"
	EnvMaxUploadMB     = "COMPLY_MAX_UPLOAD_MB"
	EnvRateLimit       = "COMPLY_RATE_LIMIT"
	EnvRateBurst       = "COMPLY_RATE_BURST"
	EnvAllowedOrigins  = "COMPLY_ALLOWED_ORIGINS"
	EnvLogLevel        = "COMPLY_LOG_LEVEL"
	EnvLogFormat       = "COMPLY_LOG_FORMAT"
)

// Load reads envFiles (default ".env") into the process environment without
// overriding variables that are already set, then builds and validates a
// ServiceConfig on top of domain.DefaultServiceConfig. Missing env files are
// not an error.
func Load(envFiles ...string) (domain.ServiceConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return domain.ServiceConfig{}, domain.WrapError(domain.KindConfig, "loading "+f, err)
		}
	}

	cfg := domain.DefaultServiceConfig()
	var errs []error

	cfg.Addr = getEnv(EnvAddr, cfg.Addr)
	cfg.RulesPath = getEnv(EnvRulesPath, cfg.RulesPath)
	cfg.LogLevel = strings.ToLower(getEnv(EnvLogLevel, cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(getEnv(EnvLogFormat, cfg.LogFormat))

	if d, err := getEnvAsDuration(EnvAnalysisTimeout, cfg.AnalysisTimeout); err != nil {
		errs = append(errs, err)
	} else {
		cfg.AnalysisTimeout = d
	}
	if mb, err := getEnvAsInt(EnvMaxUploadMB, int(cfg.MaxUploadBytes>>20)); err != nil {
		errs = append(errs, err)
	} else {
		cfg.MaxUploadBytes = int64(mb) << 20
	}
	if r, err := getEnvAsFloat(EnvRateLimit, cfg.RateLimit); err != nil {
		errs = append(errs, err)
	} else {
		cfg.RateLimit = r
	}
	if b, err := getEnvAsInt(EnvRateBurst, cfg.RateBurst); err != nil {
		errs = append(errs, err)
	} else {
		cfg.RateBurst = b
	}
	if origins := getEnv(EnvAllowedOrigins, ""); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	if len(errs) > 0 {
		return domain.ServiceConfig{}, domain.WrapError(domain.KindConfig, "reading environment", errors.Join(errs...))
	}
	if err := cfg.Validate(); err != nil {
		return domain.ServiceConfig{}, domain.WrapError(domain.KindConfig, "validating config", err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, valueStr)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, valueStr)
	}
	return value, nil
}

// getEnvAsDuration accepts Go durations ("45s") and bare seconds ("45").
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, valueStr)
	}
	return value, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
