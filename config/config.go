// Package config defines service configuration and its loading order.
//
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. YAML file, if SHIFTPOINTS_CONFIG is set
//  3. environment variables with the SHIFTPOINTS_ prefix
//
// Command-line flags, where a binary offers them, are applied by the
// caller on top of the loaded Config.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/warp/shift-points/rules"
)

const (
	EnvPrefix = "SHIFTPOINTS_"
	EnvConfig = EnvPrefix + "CONFIG"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// RuleSet selects a registered rule set version. Ignored when
	// RulesPath is set.
	RuleSet string `koanf:"rule_set"`

	// RulesPath optionally points at a JSON rule set file.
	RulesPath string `koanf:"rules_path"`

	// AllowedOrigins is a comma-separated CORS allow list.
	AllowedOrigins string `koanf:"allowed_origins"`

	// MetricsEnabled exposes /metrics and records Prometheus metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// RecomputeInterval is how often the current month is recomputed in
	// the background. Zero disables the scheduler.
	RecomputeInterval time.Duration `koanf:"recompute_interval"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:              ":8080",
		DBPath:            "points.db",
		LogLevel:          "info",
		LogFormat:         "text",
		RuleSet:           rules.VersionMWA2025,
		AllowedOrigins:    "http://localhost:3000,http://localhost:5173",
		MetricsEnabled:    true,
		RecomputeInterval: 15 * time.Minute,
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// SHIFTPOINTS_DB_PATH -> db_path; underscores are kept to match the tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.RecomputeInterval < 0 {
		return fmt.Errorf("%w: recompute_interval must not be negative", ErrInvalidConfig)
	}
	if c.RulesPath == "" {
		if _, ok := rules.Lookup(c.RuleSet); !ok {
			return fmt.Errorf("%w: unknown rule_set %q", ErrInvalidConfig, c.RuleSet)
		}
	}
	return nil
}

// Origins splits AllowedOrigins into a list, dropping blanks.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
