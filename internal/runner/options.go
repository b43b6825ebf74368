package runner

import (
	"time"

	"github.com/pable/scorefix/internal/cleanse"
	"github.com/pable/scorefix/internal/config"
	"github.com/pable/scorefix/internal/logger"
	"github.com/pable/scorefix/internal/metrics"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithStore records runs in s. Without a store nothing is recorded and
// Resolve is unavailable.
func WithStore(s Store) Option {
	return func(r *Runner) {
		r.store = s
	}
}

// WithMetrics observes every run on m and, when textfile is set, writes it
// there afterwards.
func WithMetrics(m *metrics.Manager, textfile string) Option {
	return func(r *Runner) {
		r.metrics = m
		r.metricsFile = textfile
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithMatch labels teams from match metadata.
func WithMatch(m *config.Match) Option {
	return func(r *Runner) {
		r.match = m
	}
}

// WithPipeline sets the correction thresholds.
func WithPipeline(opts ...cleanse.Option) Option {
	return func(r *Runner) {
		r.pipelineOpts = append(r.pipelineOpts, opts...)
	}
}

// WithOutput sets where the corrected table is written. Resolve also writes
// there instead of the path recorded with the pending run.
func WithOutput(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.outputPath = path
			r.outputSet = true
		}
	}
}

// WithBackup sets the backup directory; an empty dir disables backups.
func WithBackup(dir string, compress bool) Option {
	return func(r *Runner) {
		r.backupDir = dir
		r.compress = compress
	}
}

// WithDebounce sets how long Watch waits for file events to settle.
func WithDebounce(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.debounce = d
		}
	}
}

// WithIDs overrides run ID generation.
func WithIDs(newID func() string) Option {
	return func(r *Runner) {
		if newID != nil {
			r.newID = newID
		}
	}
}
