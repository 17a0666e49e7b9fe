// Package watch re-runs a comparison whenever a watched scene file changes
// on disk. Editor saves often arrive as bursts of write events, so events
// are debounced per path before the handler fires.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler is called with the changed file's path after the debounce window
// closes. It runs on the watcher's goroutine; slow handlers delay later
// notifications but never drop them.
type Handler func(path string)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long to wait for further events on the same path
	// before notifying. Default 250ms.
	Debounce time.Duration

	// Logger receives watch errors. Default slog.Default().
	Logger *slog.Logger
}

// Watcher watches individual files for modification.
type Watcher struct {
	fsw      *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	paths map[string]bool

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher that invokes handler for each changed file.
func New(handler Handler, opts *Options) (*Watcher, error) {
	if opts == nil {
		opts = &Options{}
	}
	debounce := opts.Debounce
	if debounce == 0 {
		debounce = 250 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsw:      fsw,
		handler:  handler,
		debounce: debounce,
		logger:   logger,
		paths:    make(map[string]bool),
		done:     make(chan struct{}),
	}, nil
}

// Add registers a file to watch. The containing directory is watched
// rather than the file itself so that save-via-rename, the common editor
// save strategy, still produces events.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.paths[abs] = true
	w.mu.Unlock()

	return w.fsw.Add(filepath.Dir(abs))
}

// Run processes events until the context is cancelled or Stop is called.
func (w *Watcher) Run(ctx context.Context) {
	timers := make(map[string]*time.Timer)
	fired := make(chan string)

	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			watched := w.paths[abs]
			w.mu.Unlock()
			if !watched {
				continue
			}

			if t, ok := timers[abs]; ok {
				t.Reset(w.debounce)
				continue
			}
			path := abs
			timers[abs] = time.AfterFunc(w.debounce, func() {
				select {
				case fired <- path:
				case <-w.done:
				case <-ctx.Done():
				}
			})

		case path := <-fired:
			delete(timers, path)
			if w.handler != nil {
				w.handler(path)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Stop terminates the watcher and releases its resources.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
}
