// Package watcher reloads partner configuration when fixture or import
// directories change on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aimehq/aime/pkg/logger"
)

const defaultDebounce = 250 * time.Millisecond

// ReloadFunc rebuilds state after a change.
type ReloadFunc func(ctx context.Context) error

// Option applies a configuration option to the Watcher.
type Option func(*Watcher)

// WithDirs adds directories to watch. Empty entries are ignored.
func WithDirs(dirs ...string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			if d != "" {
				w.dirs = append(w.dirs, d)
			}
		}
	}
}

// WithDebounce sets how long the watcher waits for events to settle before
// reloading.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher calls a ReloadFunc once per burst of fixture changes.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	reload   ReloadFunc
	logger   logger.Logger
}

// New creates a Watcher.
func New(reload ReloadFunc, opts ...Option) *Watcher {
	w := &Watcher{reload: reload, debounce: defaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("watcher")
	}
	return w
}

// Run watches until ctx is cancelled. Directories that do not exist are
// skipped with a warning; with nothing to watch Run returns immediately.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	watched := 0
	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn(ctx, "fixture directory not watched", logger.String("dir", dir), logger.Error(err))
			continue
		}
		watched++
	}
	if watched == 0 {
		return nil
	}
	w.logger.Info(ctx, "watching fixture directories", logger.Int("count", watched))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if relevant(ev) {
				w.logger.Debug(ctx, "fixture change", logger.String("path", ev.Name), logger.String("op", ev.Op.String()))
				timer.Reset(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(ctx, "watch error", logger.Error(err))
		case <-timer.C:
			if err := w.reload(ctx); err != nil {
				w.logger.Error(ctx, "reload after change failed", logger.Error(err))
			}
		}
	}
}

// relevant reports whether ev touches a partner fixture. Dotfiles cover the
// temp files written before an atomic rename.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
