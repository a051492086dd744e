package cliconfig

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/offramp/internal/ports"
)

const watchDebounce = 100 * time.Millisecond

// Watcher monitors the CLI config file via fsnotify and hot-applies
// the settings that are safe to change at runtime. Currently that is
// flush_interval, pushed into the running service's flush loop.
type Watcher struct {
	path   string
	apply  func(time.Duration)
	logger ports.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher creates a watcher for the config file at path.
// apply receives the new flush interval when the file changes.
func NewWatcher(path string, apply func(time.Duration), logger ports.Logger) *Watcher {
	return &Watcher{path: path, apply: apply, logger: logger}
}

// Run watches the config file's directory until the context is
// cancelled. Watching the directory rather than the file survives the
// write-rename dance editors and atomic writers do.
func (w *Watcher) Run(ctx context.Context) {
	if w.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("config watcher: create failed", ports.Err(err))
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		w.logger.Error("config watcher: watch failed",
			ports.String("dir", dir),
			ports.Err(err),
		)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher: error", ports.Err(err))
		}
	}
}

func (w *Watcher) debounceReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(watchDebounce, w.reload)
}

func (w *Watcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("config watcher: reload failed", ports.Err(err))
		return
	}
	if fc.FlushInterval == "" {
		return
	}
	d, err := time.ParseDuration(fc.FlushInterval)
	if err != nil || d <= 0 {
		w.logger.Warn("config watcher: invalid flush_interval",
			ports.String("value", fc.FlushInterval),
		)
		return
	}

	w.apply(d)
	w.logger.Info("config watcher: flush interval updated",
		ports.Duration("flush_interval", d),
	)
}
