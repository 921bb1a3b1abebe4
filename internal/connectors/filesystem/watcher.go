package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/coursemate-cli/internal/logger"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called with the changed paths once a burst of events settles.
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher reports changes under a set of files and directory trees.
// Directories are watched recursively, and directories created later are
// picked up as they appear.
type Watcher struct {
	debounce time.Duration
	fs       *fsnotify.Watcher

	mu    sync.Mutex
	roots []string
	files map[string]bool
}

// NewWatcher creates a watcher. A non-positive debounce uses DefaultDebounce.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		debounce: debounce,
		fs:       w,
		files:    make(map[string]bool),
	}, nil
}

// Add watches source. A file is watched through its parent directory,
// since editors often replace files rather than write them in place.
func (w *Watcher) Add(source string) error {
	path, err := filepath.Abs(LocalPath(source))
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !info.IsDir() {
		w.files[path] = true
		return w.fs.Add(filepath.Dir(path))
	}

	w.roots = append(w.roots, path)
	return w.addTree(path)
}

// addTree adds path and every non-hidden directory below it.
func (w *Watcher) addTree(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(p)
	})
}

// Run delivers debounced changes to onChange until ctx is cancelled.
// It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			path, relevant := w.handleFsEvent(event)
			if !relevant {
				continue
			}
			pending[path] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			onChange(ctx, paths)
		}
	}
}

// handleFsEvent decides whether an event should trigger a reload.
// New directories under a watched tree are added to the watch list.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	path := filepath.Clean(event.Name)
	if isHidden(filepath.Base(path)) {
		return "", false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[path] {
		return path, true
	}

	root := w.rootOf(path)
	if root == "" {
		return "", false
	}
	rel, err := filepath.Rel(root, path)
	if err == nil && isHidden(rel) {
		return "", false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				logger.Warn("watch %s: %v", path, err)
			}
			return "", false
		}
	}
	return path, true
}

func (w *Watcher) rootOf(path string) string {
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root
		}
	}
	return ""
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
