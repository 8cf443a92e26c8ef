// Package watch reruns a build whenever watched source files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period applied between a file event and
// the rebuild it triggers, so editors that save in several steps cause
// one rebuild instead of many.
const DefaultDebounce = 100 * time.Millisecond

// Options configure a watch loop.
type Options struct {
	// Paths are the source files to watch.
	Paths []string

	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration

	// Logger receives watcher diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Watch blocks until ctx is cancelled, invoking rebuild with the changed
// path each time a watched file is written or recreated. Rebuild errors
// are logged rather than returned: a source that no longer compiles must
// not stop the loop.
func Watch(ctx context.Context, opts Options, rebuild func(path string) error) error {
	if rebuild == nil {
		return fmt.Errorf("rebuild callback is required")
	}
	if len(opts.Paths) == 0 {
		return fmt.Errorf("no files to watch")
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the containing directories, not the files: editors often
	// replace a file on save, which would drop a watch added on the
	// file itself.
	watched := make(map[string]struct{}, len(opts.Paths))
	dirs := make(map[string]struct{})
	for _, p := range opts.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := watched[abs]; !ok {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			changed := abs
			debounceTimer = time.AfterFunc(debounce, func() {
				logger.Info("change detected", "path", filepath.Base(changed))
				if err := rebuild(changed); err != nil {
					logger.Error("rebuild failed", "path", changed, "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
