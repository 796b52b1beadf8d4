package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"REINSIM_PORT", "LOG_LEVEL", "LOG_PRETTY", "DEV_MODE", "RUN_TTL",
		"RUN_CLEANUP_SCHEDULE", "RUN_LIST_LIMIT", "HISTOGRAM_BINS", "DEFAULT_SEED",
		"EXPORT_BUCKET", "EXPORT_PREFIX", "EXPORT_ENDPOINT", "EXPORT_REGION",
		"EXPORT_ACCESS_KEY_ID", "EXPORT_SECRET_ACCESS_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, time.Hour, cfg.RunTTL)
	assert.Equal(t, "@every 10m", cfg.RunCleanupSchedule)
	assert.Equal(t, 50, cfg.RunListLimit)
	assert.Equal(t, 30, cfg.HistogramBins)
	assert.Nil(t, cfg.DefaultSeed)
	assert.Equal(t, "simulations", cfg.Export.Prefix)
	assert.Equal(t, "auto", cfg.Export.Region)
	assert.False(t, cfg.Export.UploadsEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("REINSIM_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("RUN_TTL", "15m")
	t.Setenv("RUN_CLEANUP_SCHEDULE", "0 */5 * * * *")
	t.Setenv("DEFAULT_SEED", "42")
	t.Setenv("EXPORT_BUCKET", "losses")
	t.Setenv("EXPORT_ACCESS_KEY_ID", "key")
	t.Setenv("EXPORT_SECRET_ACCESS_KEY", "secret")
	t.Setenv("EXPORT_ENDPOINT", "https://account.r2.cloudflarestorage.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, 15*time.Minute, cfg.RunTTL)
	require.NotNil(t, cfg.DefaultSeed)
	assert.Equal(t, uint64(42), *cfg.DefaultSeed)
	assert.True(t, cfg.Export.UploadsEnabled())
	assert.Equal(t, "https://account.r2.cloudflarestorage.com", cfg.Export.Endpoint)
}

func TestLoad_InvalidSeed(t *testing.T) {
	t.Setenv("DEFAULT_SEED", "-1")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:               8001,
			RunTTL:             time.Hour,
			RunCleanupSchedule: "@every 10m",
			RunListLimit:       50,
			HistogramBins:      30,
			Export:             &ExportConfig{},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.RunTTL = 0 }, wantErr: true},
		{name: "zero list limit", mutate: func(c *Config) { c.RunListLimit = 0 }, wantErr: true},
		{name: "zero bins", mutate: func(c *Config) { c.HistogramBins = 0 }, wantErr: true},
		{name: "bad schedule", mutate: func(c *Config) { c.RunCleanupSchedule = "sometimes" }, wantErr: true},
		{name: "bucket without keys", mutate: func(c *Config) { c.Export.Bucket = "b" }, wantErr: true},
		{name: "nil export", mutate: func(c *Config) { c.Export = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}
