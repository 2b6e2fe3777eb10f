// Package watcher marks added files stale when they change on disk
// after staging, so a later edit pass diffs against fresh content.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mason/internal/logging"
)

const debounce = 500 * time.Millisecond

// Watcher tracks a set of staged file paths and reports which of them
// changed on disk since staging.
type Watcher struct {
	fsWatcher *fsnotify.Watcher

	mu       sync.Mutex
	watched  map[string]struct{}
	stale    map[string]struct{}
	pending  map[string]time.Time
	done     chan struct{}
	running  bool
	stopOnce sync.Once
}

// New creates a watcher. It watches nothing until Track is called.
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		watched:   make(map[string]struct{}),
		stale:     make(map[string]struct{}),
		pending:   make(map[string]time.Time),
		done:      make(chan struct{}),
	}, nil
}

// Start begins processing events.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.processEvents()
	go w.processDebounce()
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.stopOnce.Do(func() {
		close(w.done)
	})
	return w.fsWatcher.Close()
}

// Track starts watching a staged file. The containing directory is
// watched rather than the file itself so that rename-over writes are
// still observed.
func (w *Watcher) Track(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	w.mu.Lock()
	w.watched[abs] = struct{}{}
	delete(w.stale, abs)
	w.mu.Unlock()

	if err := w.fsWatcher.Add(filepath.Dir(abs)); err != nil {
		logging.Warn("failed to watch directory", "path", filepath.Dir(abs), "error", err)
	}
}

// Untrack stops caring about a path.
func (w *Watcher) Untrack(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	w.mu.Lock()
	delete(w.watched, abs)
	delete(w.stale, abs)
	w.mu.Unlock()
}

// Stale reports whether a tracked path changed since staging.
func (w *Watcher) Stale(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.stale[abs]
	return ok
}

// ClearStale forgets staleness for a path, typically after restaging.
func (w *Watcher) ClearStale(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	w.mu.Lock()
	delete(w.stale, abs)
	w.mu.Unlock()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logging.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// Skip editor temp files
	base := filepath.Base(event.Name)
	if len(base) > 0 && (base[0] == '.' || base[0] == '#' || base[len(base)-1] == '~') {
		return
	}

	w.mu.Lock()
	if _, ok := w.watched[event.Name]; ok {
		w.pending[event.Name] = time.Now()
	}
	w.mu.Unlock()
}

func (w *Watcher) processDebounce() {
	ticker := time.NewTicker(debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) flushPending() {
	w.mu.Lock()
	now := time.Now()
	var toMark []string
	for path, eventTime := range w.pending {
		if now.Sub(eventTime) >= debounce {
			toMark = append(toMark, path)
			delete(w.pending, path)
			w.stale[path] = struct{}{}
		}
	}
	w.mu.Unlock()

	for _, path := range toMark {
		logging.Info("staged file changed on disk", "path", path)
	}
}
