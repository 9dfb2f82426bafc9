// Package config loads runtime configuration, mirroring the teacher's
// infrastructure/config.Load: environment variables as the primary
// source, an optional YAML file for the scheduler's own defaults, and a
// hardcoded fallback at the bottom of each getter (SPEC_FULL.md §A.3).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration surface.
type Config struct {
	LogLevel      string
	WebSocketAddr string
	JWTSecret     string
	DatabaseDSN   string
	FrameCacheCap int

	Scheduler SchedulerDefaults
}

// SchedulerDefaults are scheduler tuning knobs an operator can override
// via an optional YAML file (file > hardcoded default); no environment
// variable sets them. Durations are plain nanosecond
// integers in the YAML file — yaml.v3 has no built-in "30s"-style parser
// for time.Duration.
type SchedulerDefaults struct {
	DefaultRetryBackoff  time.Duration `yaml:"default_retry_backoff_ns"`
	DispatchPollInterval time.Duration `yaml:"dispatch_poll_interval_ns"`
}

func defaultSchedulerDefaults() SchedulerDefaults {
	return SchedulerDefaults{DefaultRetryBackoff: time.Second, DispatchPollInterval: 250 * time.Millisecond}
}

// Load builds a Config from environment variables, optionally layering an
// autocore.yaml file (read from AUTOCORE_CONFIG_FILE, if set) underneath
// for the scheduler's own defaults.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:      getEnv("AUTOCORE_LOG_LEVEL", "info"),
		WebSocketAddr: getEnv("AUTOCORE_WS_ADDR", ":7800"),
		JWTSecret:     getEnv("AUTOCORE_JWT_SECRET", ""),
		DatabaseDSN:   getEnv("AUTOCORE_DATABASE_DSN", ""),
		FrameCacheCap: getEnvInt("AUTOCORE_FRAME_CACHE_CAP", 64),
		Scheduler:     defaultSchedulerDefaults(),
	}

	if path := os.Getenv("AUTOCORE_CONFIG_FILE"); path != "" {
		if err := loadSchedulerDefaultsFile(path, &cfg.Scheduler); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func loadSchedulerDefaultsFile(path string, out *SchedulerDefaults) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %q: %w", path, err)
	}
	var fileValues SchedulerDefaults
	if err := yaml.Unmarshal(body, &fileValues); err != nil {
		return fmt.Errorf("config: parsing %q: %w", path, err)
	}
	if fileValues.DefaultRetryBackoff > 0 {
		out.DefaultRetryBackoff = fileValues.DefaultRetryBackoff
	}
	if fileValues.DispatchPollInterval > 0 {
		out.DispatchPollInterval = fileValues.DispatchPollInterval
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
