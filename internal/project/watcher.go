package project

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a project's .taskmaster directory for external
// edits to config.json. Editors write in flurries (temp file, rename,
// chmod), so changes are debounced: the callback fires once after a
// quiet period, not per syscall.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	done    chan struct{}
}

// defaultDebounce is long enough to swallow an editor's write dance
// and short enough to feel immediate.
const defaultDebounce = 500 * time.Millisecond

// Watch starts watching the project's config for external changes.
// onChange runs on the watcher's goroutine after each settled burst.
func Watch(projectPath string, onChange func(), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	// Watch the directory, not the file: atomic saves replace the file
	// and a watch on the old inode would go quiet.
	dir := filepath.Dir(ConfigPath(projectPath))
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: defaultDebounce,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go w.loop(filepath.Base(ConfigRelPath))
	return w, nil
}

func (w *Watcher) loop(configName string) {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("project config changed on disk", "op", event.Op.String())
			w.bump()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("project watcher error", "error", err)
		}
	}
}

// bump resets the quiet-period timer.
func (w *Watcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

// Stop shuts the watcher down. No callback fires after Stop returns
// unless it was already running.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	w.fsw.Close()
	<-w.done
}
