package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sharext-labs/sharext/internal/log"
)

// DefaultDebounce collapses the burst of events an install or uninstall
// produces into one change notification.
const DefaultDebounce = 250 * time.Millisecond

// Watcher signals when the extensions directory changes.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	changes  chan struct{}
}

// NewWatcher creates a watcher for dir. Call Start to begin delivering
// notifications and Close to release it.
func NewWatcher(dir string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating inventory watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		watcher:  fw,
		debounce: debounce,
		changes:  make(chan struct{}, 1),
	}, nil
}

// Start adds the directory and runs the event loop until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	go w.eventLoop(ctx)
	return nil
}

// Changes delivers one value per debounced burst of directory activity.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) eventLoop(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("extensions directory changed")
			timer.Reset(w.debounce)

		case <-timer.C:
			// A pending signal already covers this burst.
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Str("dir", w.dir).Msg("inventory watcher error")

		case <-ctx.Done():
			return
		}
	}
}
