package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor produces on save.
const watchDebounce = 200 * time.Millisecond

// Watch reloads the catalog whenever its file changes, until ctx is done.
// It is only available for a FileSource. onReload, if set, is called after
// every reload attempt with the number of cards and the load error.
func (r *Repository) Watch(ctx context.Context, onReload func(cards int, err error)) (err error) {
	fileSource, ok := r.source.(*FileSource)
	if !ok {
		return fmt.Errorf("catalog source %s cannot be watched", r.source)
	}
	path, err := filepath.Abs(fileSource.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Watch the directory so that atomic replace-on-save is seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch catalog directory: %w", err)
	}
	r.logger.Info("Watching catalog file", "path", path)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(watchDebounce)
			}
		case <-pending:
			pending = nil
			loadErr := r.Reload(ctx)
			n := r.Status().Cards
			if loadErr == nil {
				r.logger.Info("Catalog reloaded after file change", "cards", n)
			}
			if onReload != nil {
				onReload(n, loadErr)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("Catalog watcher error", "error", werr)
		}
	}
}
