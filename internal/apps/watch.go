package apps

import (
	"context"
	"fmt"
	log "log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the registry whenever its file changes and calls onReload with
// the new names. It blocks until ctx is done.
func (r *Registry) Watch(ctx context.Context, onReload func(names []string)) error {
	if r.path == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	// Editors often replace the file, so watch its directory.
	dir := filepath.Dir(r.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(r.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := r.Reload(); err != nil {
				log.Warn("Failed to reload application registry", "err", err)
				continue
			}
			log.Info("Application registry reloaded", "path", r.path)
			if onReload != nil {
				onReload(r.Names())
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Registry watcher error", "err", err)
		}
	}
}
