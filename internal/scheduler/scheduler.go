// Package scheduler runs the showcase evaluations on a cron schedule
// and watches the config file for live reloads.
package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/marcus/taskpilot/internal/logging"
)

// Runner executes a job on a cron schedule.
type Runner struct {
	cron   *cron.Cron
	logger *logging.Logger
}

// New creates a Runner.
func New(logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Component("scheduler")
	}
	return &Runner{
		cron:   cron.New(),
		logger: logger,
	}
}

// Start validates the cron spec, registers the job, and starts the
// scheduler in the background.
func (r *Runner) Start(spec string, job func()) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	if _, err := r.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("scheduling job: %w", err)
	}
	r.cron.Start()
	r.logger.Event("info").Str("schedule", spec).Msg("scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("scheduler stopped")
}

// WatchFile watches path and invokes onChange when it is written or
// recreated. Editors replace files rather than write in place, so the
// parent directory is watched and events are filtered by name. Blocks
// until ctx is done.
func WatchFile(ctx context.Context, path string, logger *logging.Logger, onChange func()) error {
	if logger == nil {
		logger = logging.Component("watcher")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	// Debounce: editors fire several events per save.
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(250 * time.Millisecond)

		case <-pending:
			pending = nil
			logger.Event("info").Str("path", path).Msg("config changed, reloading")
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Err(err).Msg("watch error")
		}
	}
}
