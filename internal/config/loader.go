package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "SCOREFIX_"
	envConfig = "SCOREFIX_CONFIG"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML): path, or SCOREFIX_CONFIG when path is empty
//  3. env (prefix SCOREFIX_)
func Load(ctx context.Context, path string) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SCOREFIX_MAX_JUMP -> max_jump; keys stay flat to match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch c.BackupCompression {
	case "", "none", "zstd":
	default:
		return fmt.Errorf("%w: backup_compression %q (want none or zstd)", ErrInvalidConfig, c.BackupCompression)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output_path must not be empty", ErrInvalidConfig)
	}
	if c.WinningScore < 2 {
		return fmt.Errorf("%w: winning_score %d must be at least 2", ErrInvalidConfig, c.WinningScore)
	}
	if c.MaxJump < 1 {
		return fmt.Errorf("%w: max_jump %d must be positive", ErrInvalidConfig, c.MaxJump)
	}
	if c.TimerRun < 1 {
		return fmt.Errorf("%w: timer_run %d must be positive", ErrInvalidConfig, c.TimerRun)
	}
	if c.MaxSpan <= 0 {
		return fmt.Errorf("%w: max_span must be positive", ErrInvalidConfig)
	}
	if c.WatchDebounceMS < 0 {
		return fmt.Errorf("%w: watch_debounce_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}
