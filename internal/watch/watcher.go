// Package watch re-runs a callback when a flow document changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	flowlog "github.com/goliatone/go-formflow/internal/log"
)

// DefaultDebounce coalesces the bursts of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

var eventTypeMap = map[fsnotify.Op]string{
	fsnotify.Create: "created",
	fsnotify.Write:  "modified",
}

// Event describes a change to the watched file.
type Event struct {
	Path string
	Type string
	Time time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher observes a single file. The parent directory is watched so atomic
// saves (write to temp, rename over) keep being reported.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// New watches path.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	w := &Watcher{
		path:     absPath,
		debounce: DefaultDebounce,
		watcher:  fsw,
		logger:   flowlog.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.logger = flowlog.WithComponent(w.logger, "watch").With(slog.String("path", absPath))

	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch: add %s: %w", filepath.Dir(absPath), err)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run blocks until ctx is cancelled, calling fn once per debounced burst of
// changes. Errors returned by fn are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, fn func(Event) error) error {
	defer w.watcher.Close()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending Event
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watcher stopped")
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			eventType, relevant := w.classify(event)
			if !relevant {
				continue
			}
			pending = Event{Path: w.path, Type: eventType, Time: time.Now()}
			stopTimer()
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.logger.Debug("file changed", slog.String("type", pending.Type))
			if err := fn(pending); err != nil {
				w.logger.Error("watch callback failed", flowlog.Error(err))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", flowlog.Error(err))
		}
	}
}

func (w *Watcher) classify(event fsnotify.Event) (string, bool) {
	if filepath.Clean(event.Name) != w.path {
		return "", false
	}
	// The file is gone after remove and rename; the create that follows an
	// atomic save is reported instead.
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return "", false
	}
	for _, op := range []fsnotify.Op{fsnotify.Create, fsnotify.Write} {
		if event.Has(op) {
			return eventTypeMap[op], true
		}
	}
	return "", false
}
