package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/scorefix/internal/config"
	"github.com/pable/scorefix/internal/logger"
	"github.com/pable/scorefix/internal/metrics"
	"github.com/pable/scorefix/internal/runner"
	"github.com/pable/scorefix/internal/storage"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scorefix",
	Short: "Score log correction tool",
	Long: `Correct the per-second score log written by the screen-capture score tracker.

Each run backs up the raw log, trims pre- and post-match rows, repairs
misread and missing scores, resamples to one row per second, and makes sure
the final row names a winner. Runs are recorded in a SQLite database.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".scorefix", "runs.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $SCOREFIX_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(dropCmd)
}

// loadConfig merges file and environment config; explicit flags win.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		c.DBPath = dbPath
	} else {
		dbPath = c.DBPath
	}
	if cmd.Flags().Changed("log-level") {
		c.LogLevel = logLevel
	}
	if err := logger.Init(c.LogLevel); err != nil {
		return err
	}
	cfg = c
	return nil
}

func openStore() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// newRunner wires a runner from the loaded config. The output path is left to
// extra so resolve keeps the path recorded with the pending run.
func newRunner(ctx context.Context, db *storage.DB, extra ...runner.Option) (*runner.Runner, error) {
	opts := []runner.Option{
		runner.WithLogger(logger.Named("runner")),
		runner.WithStore(db),
		runner.WithPipeline(cfg.PipelineOptions()...),
		runner.WithBackup(cfg.BackupDir, cfg.CompressBackup()),
		runner.WithDebounce(cfg.WatchDebounce()),
	}
	if cfg.MatchFile != "" {
		m, err := config.LoadMatch(cfg.MatchFile)
		if err != nil {
			return nil, err
		}
		logger.Get().Debug(ctx, "match metadata loaded", logger.String("title", m.Title()))
		opts = append(opts, runner.WithMatch(m))
	}
	if cfg.MetricsFile != "" {
		opts = append(opts, runner.WithMetrics(metrics.NewManager(), cfg.MetricsFile))
	}
	return runner.New(append(opts, extra...)...), nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
