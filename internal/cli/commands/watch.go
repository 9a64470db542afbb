package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// fileWatcher reports changes to a fixed set of files. Parent directories
// are watched so that editors replacing a file by rename are noticed.
type fileWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	logger   *slog.Logger
}

func newFileWatcher(logger *slog.Logger, paths ...string) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &fileWatcher{
		watcher:  watcher,
		files:    make(map[string]bool),
		debounce: watchDebounce,
		logger:   logger,
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		name := w.key(p)
		if name == "" {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to resolve %s", p)
		}
		w.files[name] = true
		dir := filepath.Dir(name)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// key returns the name events report for path: absolute, with the
// directory's symlinks resolved. It returns "" when path cannot be made
// absolute.
func (w *fileWatcher) key(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	dir := filepath.Dir(abs)
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	return filepath.Join(dir, filepath.Base(abs))
}

// Run calls onChange with the changed files once events settle. It
// returns when ctx is done or the watcher fails.
func (w *fileWatcher) Run(ctx context.Context, onChange func(changed []string)) error {
	defer func() { _ = w.watcher.Close() }()

	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			if !w.files[name] {
				continue
			}
			pending[name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			clear(pending)
			fire = nil
			w.logger.Debug("change detected", "files", changed)
			onChange(changed)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
