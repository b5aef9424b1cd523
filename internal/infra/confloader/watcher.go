package confloader

import (
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/rudis/internal/telemetry/logger"
)

// DefaultDebounce is how long a watched file must stay quiet before
// callbacks run. Editors often write a file in several steps.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to registered config files.
type Watcher struct {
	fs       *fsnotify.Watcher
	log      logger.Logger
	debounce time.Duration

	mu        sync.Mutex
	files     map[string]struct{}
	callbacks []func(string)

	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) { w.log = l }
}

// WithWatcherDebounce replaces DefaultDebounce.
func WithWatcherDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a Watcher with no files registered.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:       fs,
		log:      logger.Default(),
		debounce: DefaultDebounce,
		files:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch registers path. Its directory is watched so a file replaced by
// rename is still seen.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	if err := w.fs.Add(filepath.Dir(path)); err != nil {
		return err
	}

	w.mu.Lock()
	w.files[path] = struct{}{}
	w.mu.Unlock()

	w.log.Debug("watching config file", "path", path)
	return nil
}

// OnChange adds a callback run with the path of each changed file.
func (w *Watcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, fn)
	w.mu.Unlock()
}

// Start handles events until Stop is called. Changes arriving within
// the debounce window are reported once per file.
func (w *Watcher) Start() {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]struct{})
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Clean(ev.Name)
			if !w.watching(name) {
				continue
			}
			pending[name] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			for name := range pending {
				w.log.Info("config file changed", "path", name)
				w.notify(name)
			}
			clear(pending)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// StartAsync runs Start in a new goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop ends Start and releases the fsnotify handle. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) watching(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[filepath.Clean(path)]
	return ok
}

func (w *Watcher) notify(path string) {
	w.mu.Lock()
	fns := slices.Clone(w.callbacks)
	w.mu.Unlock()

	for _, fn := range fns {
		fn(path)
	}
}
