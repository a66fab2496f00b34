// Package watch re-runs a flash download whenever the firmware image
// file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hempflower/openocd-agdi/pkg/log"
)

// DefaultDebounce is how long after the last write event the callback
// fires. Build tools often write an image in several bursts.
const DefaultDebounce = 200 * time.Millisecond

// Watcher monitors a single firmware image file via fsnotify and invokes
// a callback after changes settle. Callbacks run one at a time on the Run
// goroutine; a change arriving mid-callback queues exactly one follow-up
// run instead of overlapping it.
type Watcher struct {
	path     string
	onChange func(context.Context)

	debounceDelay time.Duration
	logger        log.Logger

	mu       sync.Mutex
	debounce *time.Timer

	// fire carries settled-change signals to the Run loop. Capacity 1:
	// changes during a callback coalesce into one pending run.
	fire chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used by the watcher.
func WithLogger(l log.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce overrides the settle delay before the callback fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceDelay = d
		}
	}
}

// NewWatcher creates a watcher for the given image path. onChange runs on
// the watcher's timer goroutine after each settled change.
func NewWatcher(path string, onChange func(context.Context), opts ...Option) *Watcher {
	w := &Watcher{
		path:          path,
		onChange:      onChange,
		debounceDelay: DefaultDebounce,
		logger:        log.NewNoopLogger(),
		fire:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks watching the image's directory until ctx is cancelled.
// The directory is watched rather than the file itself: most toolchains
// replace the image by rename, which drops a watch on the file inode.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	base := filepath.Base(w.path)
	w.logger.Info("watching image for changes",
		log.String("path", w.path),
		log.Duration("debounce", w.debounceDelay))

	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("image changed", log.String("op", event.Op.String()))
			w.fireAfterSettle()

		case <-w.fire:
			w.onChange(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", log.Err(err))
		}
	}
}

// fireAfterSettle (re)arms the debounce timer. The timer goroutine only
// signals the Run loop; the callback itself always runs there, never
// concurrently with a previous invocation.
func (w *Watcher) fireAfterSettle() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}
