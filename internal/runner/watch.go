package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pable/scorefix/internal/logger"
)

// Watch re-runs the pipeline whenever input is written or created, until ctx
// is cancelled. Bursts of events within the debounce interval trigger one
// run. Pending results are stored like any other run; Watch never prompts.
//
// The parent directory is watched rather than the file so the watch survives
// the capture tool replacing the file.
func (r *Runner) Watch(ctx context.Context, input string, onRun func(*Report, error)) error {
	target, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", input, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(target)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	r.log.Info(ctx, "watching for changes", logger.String("path", target),
		logger.Duration("debounce", r.debounce))

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			r.log.Debug(ctx, "input changed", logger.String("op", event.Op.String()))
			timer.Reset(r.debounce)

		case <-timer.C:
			rep, err := r.Run(ctx, input)
			if err != nil {
				r.log.Error(ctx, "watched run failed", logger.Error(err))
			}
			if onRun != nil {
				onRun(rep, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Error(ctx, "watcher error", logger.Error(err))
		}
	}
}
