package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/rulebook/internal/logger"
)

// DefaultDebounce is how long the watcher waits for a burst of changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports settled changes below a directory tree.
type Watcher struct {
	root     string
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher over root.
func NewWatcher(root string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{root: New(root).Root(), debounce: debounce}
}

// Watch calls onChange once per burst of relevant changes, after the
// debounce interval has passed without further events. Directories created
// while watching are watched too. Watch blocks until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, onChange func(context.Context)) error {
	w.mu.Lock()
	if w.watcher != nil {
		w.mu.Unlock()
		return fmt.Errorf("watcher is already running")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("create file watcher: %w", err)
	}
	w.watcher = watcher
	w.mu.Unlock()
	defer w.close()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	logger.Info("watching %s", w.root)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, event.Name)
			if event.Has(fsnotify.Create) {
				// A new directory is watched, and so is anything already in it.
				_ = w.addTree(event.Name)
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			onChange(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// relevant reports whether an event can change content. Permission
// changes and hidden files are ignored.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if isHidden(filepath.Base(event.Name)) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// addTree watches dir and every non-hidden directory below it. Plain files
// are ignored.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		_ = w.watcher.Close()
		w.watcher = nil
	}
}
