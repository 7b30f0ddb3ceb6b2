package modulefile

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/tankops/bath-planner/internal/correction"
	"go.uber.org/zap"
)

const defaultDebounce = 200 * time.Millisecond

// ReloadFunc receives the modules after the file changed. err is set when the new content could
// not be loaded.
type ReloadFunc func(modules []correction.Module, err error)

// Watcher reloads the modules file whenever it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onReload ReloadFunc
}

type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func NewWatcher(path string, onReload ReloadFunc, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     path,
		debounce: defaultDebounce,
		onReload: onReload,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. The parent directory is watched rather than the file so atomic
// replacements (rename over the old file) are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer func() { _ = fsw.Close() }()

	target, err := filepath.Abs(w.path)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", w.path)
	}
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "watching %s", filepath.Dir(target))
	}

	logger := zap.S().Named("modulefile_watcher")
	logger.Infof("watching %s", target)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			logger.Debugw("modules file changed", "op", event.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("file watcher error", "error", err)
		case <-timer.C:
			modules, err := Load(w.path)
			w.onReload(modules, err)
		}
	}
}
