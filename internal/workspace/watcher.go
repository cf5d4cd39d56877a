package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sharext-labs/sharext/internal/listcodec"
	"github.com/sharext-labs/sharext/internal/log"
	"github.com/sharext-labs/sharext/internal/viewer"
)

// DefaultDebounce is how long a file must be quiet before its activity is
// reported. Atomic saves show up as several events in quick succession.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports list files in watched directories as viewer events:
// a new file is ArtifactOpened, a rewritten one ArtifactChanged and a
// removed or renamed-away one ArtifactClosed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	events   chan viewer.Event
	done     chan struct{}

	mu      sync.Mutex
	dirs    map[string]bool
	known   map[string]bool // list files currently present
	pending map[string]*time.Timer
	closed  bool
}

// NewWatcher creates a watcher with no directories. Use Add, then Start.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating workspace watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		watcher:  fw,
		debounce: debounce,
		events:   make(chan viewer.Event, 16),
		done:     make(chan struct{}),
		dirs:     make(map[string]bool),
		known:    make(map[string]bool),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Add watches the directory containing path, or path itself when it is a
// directory. List files already present are treated as known, so a later
// write to one is a change, not an open.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	dir := abs
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirs[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.dirs[dir] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && listcodec.IsListPath(e.Name()) {
			w.known[filepath.Join(dir, e.Name())] = true
		}
	}
	log.Debug().Str("dir", dir).Msg("watching for list files")
	return nil
}

// Events delivers debounced events until the watcher stops.
func (w *Watcher) Events() <-chan viewer.Event {
	return w.events
}

// Start runs the event loop until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.eventLoop(ctx)
}

// Close stops watching and cancels pending events.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	close(w.done)
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod || !listcodec.IsListPath(event.Name) {
				continue
			}
			w.schedule(ctx, filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("workspace watcher error")

		case <-ctx.Done():
			return
		case <-w.done:
			return
		}
	}
}

// schedule (re)arms the flush timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() { w.flush(ctx, path) })
}

// flush decides what happened to path from whether it exists now and
// whether it existed before the burst.
func (w *Watcher) flush(ctx context.Context, path string) {
	_, statErr := os.Stat(path)
	exists := statErr == nil

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	wasKnown := w.known[path]
	if exists {
		w.known[path] = true
	} else {
		delete(w.known, path)
	}
	w.mu.Unlock()

	var ev viewer.Event
	switch {
	case exists && wasKnown:
		ev = viewer.ArtifactChanged{Ref: path}
	case exists:
		ev = viewer.ArtifactOpened{Ref: path}
	case wasKnown:
		ev = viewer.ArtifactClosed{Ref: path}
	default:
		return // created and removed within one burst
	}

	log.Debug().Str("path", path).Str("event", fmt.Sprintf("%T", ev)).Msg("list file activity")
	select {
	case w.events <- ev:
	case <-ctx.Done():
	case <-w.done:
	}
}
