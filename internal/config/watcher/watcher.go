// Package watcher reports changes to individual files.
//
// fsnotify watches directories; a Watcher subscribes to the parent
// directory of every added file and filters the directory events down to
// the files it was asked about. This survives editors that save by
// writing a temporary file and renaming it over the original.
//
// Bursts of events for one file are collapsed: the handler runs once the
// file has been quiet for the debounce delay.
package watcher

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/strata/internal/logging"
)

// DefaultDebounce is the quiet period before the handler runs.
const DefaultDebounce = 100 * time.Millisecond

// Errors returned by the watcher.
var (
	// ErrWatcherClosed indicates the watcher has been closed.
	ErrWatcherClosed = errors.New("watcher closed")
)

// Handler is called with the absolute path of a changed file. Handlers
// run on a timer goroutine, one at a time.
type Handler func(path string)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero runs the handler for every
// event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// Watcher calls a handler when watched files change.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	log      *slog.Logger

	files  map[string]bool // absolute file paths
	dirs   map[string]int  // watched directory -> file count
	timers map[string]*time.Timer

	// serializes handler calls
	callMu sync.Mutex

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// New creates a watcher that calls h for changes to added files.
func New(h Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		handler:  h,
		debounce: DefaultDebounce,
		log:      logging.Discard(),
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(logging.ComponentKey, "watcher")

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Add starts watching the file at path. The file need not exist yet, but
// its directory must.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Remove stops watching the file at path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	if t := w.timers[abs]; t != nil {
		t.Stop()
		delete(w.timers, abs)
	}
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// Files returns the watched file paths.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out
}

// Close stops the watcher. Pending debounced calls are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()
	return w.fsw.Close()
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !relevant(ev.Op) {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.files[path] {
		return
	}
	if w.debounce == 0 {
		go w.fire(path)
		return
	}
	if old := w.timers[path]; old != nil {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		current := w.timers[path] == t
		if current {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		if current {
			w.fire(path)
		}
	})
	w.timers[path] = t
}

func (w *Watcher) fire(path string) {
	w.callMu.Lock()
	defer w.callMu.Unlock()

	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed || w.handler == nil {
		return
	}
	w.handler(path)
}

// relevant reports whether op can change the contents at a path.
func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) ||
		op.Has(fsnotify.Write) ||
		op.Has(fsnotify.Remove) ||
		op.Has(fsnotify.Rename)
}
