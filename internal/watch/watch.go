// Package watch reports changes to source files using OS-native
// notifications.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long a file must stay quiet before a change is
// reported.
const DefaultDelay = 100 * time.Millisecond

// Watcher watches a fixed set of files. The parent directories are watched
// rather than the files themselves so that editors which save by renaming
// a temporary file are still noticed.
type Watcher struct {
	w      *fsnotify.Watcher
	files  map[string]bool
	delay  time.Duration
	logger *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the quiet period before a change is reported.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithLogger sets the logger used for watch events.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New starts watching paths. Changes are delivered by Run.
func New(paths []string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{
		w:      fw,
		files:  make(map[string]bool),
		delay:  DefaultDelay,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run calls onChange with the absolute path of each watched file that was
// written or created, once it has been quiet for the configured delay.
// Calls are made from Run's goroutine. Run closes the watcher and returns
// when ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.w.Close()

	pending := make(map[string]bool)
	timer := time.NewTimer(w.delay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || !w.files[name] {
				continue
			}
			w.logger.Debug("file changed", "path", name, "op", ev.Op.String())
			pending[name] = true
			timer.Reset(w.delay)

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch failed: %w", err)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			for _, p := range changed {
				onChange(p)
			}
		}
	}
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.w.Close()
}
