package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/complyai/comply/internal/adapters/outbound/config"
	"github.com/complyai/comply/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every COMPLY_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvAddr, config.EnvRulesPath, config.EnvAnalysisTimeout, config.EnvMaxUploadMB,
		config.EnvRateLimit, config.EnvRateBurst, config.EnvAllowedOrigins, config.EnvLogLevel, config.EnvLogFormat,
	} {
		t.Setenv(k, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultServiceConfig(), cfg)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvAddr, ":9090")
	t.Setenv(config.EnvAnalysisTimeout, "45s")
	t.Setenv(config.EnvMaxUploadMB, "2")
	t.Setenv(config.EnvRateLimit, "0.5")
	t.Setenv(config.EnvRateBurst, "3")
	t.Setenv(config.EnvAllowedOrigins, "https://a.example, https://b.example,")
	t.Setenv(config.EnvLogLevel, "DEBUG")
	t.Setenv(config.EnvLogFormat, "text")

	cfg, err := config.Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 45*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes)
	assert.InDelta(t, 0.5, cfg.RateLimit, 0.0001)
	assert.Equal(t, 3, cfg.RateBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_BareSecondsTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvAnalysisTimeout, "12")

	cfg, err := config.Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, cfg.AnalysisTimeout)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("COMPLY_RULES_PATH=/etc/comply/rules.yaml\nCOMPLY_RATE_BURST=7\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv(config.EnvRulesPath)
		os.Unsetenv(config.EnvRateBurst)
	})
	// t.Setenv("") above leaves the variables set but empty, and godotenv
	// never overrides a set variable, so unset them first.
	os.Unsetenv(config.EnvRulesPath)
	os.Unsetenv(config.EnvRateBurst)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/comply/rules.yaml", cfg.RulesPath)
	assert.Equal(t, 7, cfg.RateBurst)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{config.EnvAnalysisTimeout, "soon", "invalid duration"},
		{config.EnvAnalysisTimeout, "-5s", "analysis_timeout must be > 0"},
		{config.EnvMaxUploadMB, "ten", "invalid integer"},
		{config.EnvRateLimit, "fast", "invalid number"},
		{config.EnvRateBurst, "0", "rate_burst must be > 0"},
		{config.EnvLogLevel, "verbose", "unknown log_level"},
		{config.EnvLogFormat, "xml", "unknown log_format"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load(missingEnvFile(t))
			require.Error(t, err)
			assert.Equal(t, domain.KindConfig, domain.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
