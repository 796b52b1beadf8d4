// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	Port      int
	LogLevel  string
	LogPretty bool
	DevMode   bool

	// Run store
	RunTTL             time.Duration
	RunCleanupSchedule string
	RunListLimit       int

	// Charts
	HistogramBins int

	// DefaultSeed fixes the generator seed for requests that carry none (unset = random)
	DefaultSeed *uint64

	Export *ExportConfig
}

// ExportConfig holds the object store settings used by uploads
type ExportConfig struct {
	Bucket          string
	Prefix          string
	Endpoint        string // R2: https://<account>.r2.cloudflarestorage.com
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// UploadsEnabled reports whether a bucket and credentials are configured
func (e *ExportConfig) UploadsEnabled() bool {
	return e != nil && e.Bucket != "" && e.AccessKeyID != "" && e.SecretAccessKey != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnvAsInt("REINSIM_PORT", 8001),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPretty:          getEnvAsBool("LOG_PRETTY", true),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		RunTTL:             getEnvAsDuration("RUN_TTL", time.Hour),
		RunCleanupSchedule: getEnv("RUN_CLEANUP_SCHEDULE", "@every 10m"),
		RunListLimit:       getEnvAsInt("RUN_LIST_LIMIT", 50),
		HistogramBins:      getEnvAsInt("HISTOGRAM_BINS", 30),
		Export: &ExportConfig{
			Bucket:          getEnv("EXPORT_BUCKET", ""),
			Prefix:          getEnv("EXPORT_PREFIX", "simulations"),
			Endpoint:        getEnv("EXPORT_ENDPOINT", ""),
			Region:          getEnv("EXPORT_REGION", "auto"),
			AccessKeyID:     getEnv("EXPORT_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("EXPORT_SECRET_ACCESS_KEY", ""),
		},
	}

	if raw := getEnv("DEFAULT_SEED", ""); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_SEED %q: %w", raw, err)
		}
		cfg.DefaultSeed = &seed
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RunTTL <= 0 {
		return fmt.Errorf("RUN_TTL must be positive, got %s", c.RunTTL)
	}
	if c.RunListLimit < 1 {
		return fmt.Errorf("RUN_LIST_LIMIT must be at least 1, got %d", c.RunListLimit)
	}
	if c.HistogramBins < 1 {
		return fmt.Errorf("HISTOGRAM_BINS must be at least 1, got %d", c.HistogramBins)
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.RunCleanupSchedule); err != nil {
		return fmt.Errorf("invalid RUN_CLEANUP_SCHEDULE %q: %w", c.RunCleanupSchedule, err)
	}

	// A bucket needs both keys
	if c.Export != nil && c.Export.Bucket != "" && !c.Export.UploadsEnabled() {
		return fmt.Errorf("EXPORT_BUCKET is set but EXPORT_ACCESS_KEY_ID or EXPORT_SECRET_ACCESS_KEY is missing")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
