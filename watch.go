package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chazu/twirl/pkg/volume"
)

// watchSettle is how long the script must stay quiet before a reload.
// Editors often write a file in several steps.
const watchSettle = 100 * time.Millisecond

// Watch re-renders path whenever it changes and passes the result to
// deliver until ctx is cancelled. The parent directory is watched so
// editors that save by rename are still seen.
func (a *App) Watch(ctx context.Context, path string, fast bool, deliver func(*volume.Volume, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	a.log.Info("watching script", "path", abs)

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			settle = time.After(watchSettle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watch", "error", err)
		case <-settle:
			settle = nil
			v, err := a.Volume(path, fast)
			if err != nil {
				a.log.Warn("reload failed", "path", path, "error", err)
			}
			deliver(v, err)
		}
	}
}
