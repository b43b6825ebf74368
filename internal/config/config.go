// Package config defines scorefix configuration and its loading layers.
package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pable/scorefix/internal/cleanse"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBPath is the SQLite run store.
	DBPath string `koanf:"db_path"`

	// InputPath is the raw score log read by run and watch.
	InputPath string `koanf:"input_path"`
	// OutputPath receives the corrected table.
	OutputPath string `koanf:"output_path"`
	// BackupDir receives the verbatim copy of each raw input.
	BackupDir string `koanf:"backup_dir"`
	// BackupCompression is "none" or "zstd".
	BackupCompression string `koanf:"backup_compression"`

	// MatchFile optionally names teams and the map (YAML or JSON).
	MatchFile string `koanf:"match_file"`
	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`

	WinningScore int           `koanf:"winning_score"`
	MaxJump      int           `koanf:"max_jump"`
	TimerRun     int           `koanf:"timer_run"`
	MaxSpan      time.Duration `koanf:"max_span"`

	// WatchDebounceMS coalesces bursts of file events in watch mode.
	WatchDebounceMS int `koanf:"watch_debounce_ms"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		DBPath:            filepath.Join(userHome(), ".scorefix", "runs.db"),
		InputPath:         "score_log.csv",
		OutputPath:        "cleaned_score_log.csv",
		BackupDir:         "raw_output_copies",
		BackupCompression: "none",
		WinningScore:      cleanse.DefaultWinningScore,
		MaxJump:           cleanse.DefaultMaxJump,
		TimerRun:          cleanse.DefaultTimerRun,
		MaxSpan:           cleanse.DefaultMaxSpan,
		WatchDebounceMS:   500,
	}
}

// PipelineOptions maps the thresholds onto cleanse options.
func (c *Config) PipelineOptions() []cleanse.Option {
	return []cleanse.Option{
		cleanse.WithWinningScore(c.WinningScore),
		cleanse.WithMaxJump(c.MaxJump),
		cleanse.WithTimerRun(c.TimerRun),
		cleanse.WithMaxSpan(c.MaxSpan),
	}
}

// CompressBackup reports whether backups are zstd-compressed.
func (c *Config) CompressBackup() bool { return c.BackupCompression == "zstd" }

// WatchDebounce returns the debounce interval.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
