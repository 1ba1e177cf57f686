package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates cached listings when the root or one of its folders
// changes. It returns once the watcher is running; the watcher stops with ctx.
func (b *Browser) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(b.rootDir); err != nil {
		_ = w.Close()
		return err
	}
	folders, err := b.ListFolders()
	if err != nil {
		_ = w.Close()
		return err
	}
	for _, f := range folders {
		if err := w.Add(filepath.Join(b.rootDir, f)); err != nil {
			slog.WarnContext(ctx, "Failed to watch folder", "folder", f, "err", err)
		}
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if dir := b.handleEvent(event); dir != "" {
					if err := w.Add(dir); err != nil {
						slog.WarnContext(ctx, "Failed to watch folder", "path", dir, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				// Events may have been lost.
				b.cache.InvalidateAll()
				slog.WarnContext(ctx, "Error watching data directory", "err", err)
			}
		}
	}()
	return nil
}

// handleEvent drops the listings affected by event. It returns the path of a
// newly created folder that needs watching, if any.
func (b *Browser) handleEvent(event fsnotify.Event) string {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return ""
	}
	parent := filepath.Dir(event.Name)
	name := filepath.Base(event.Name)
	if parent == b.rootDir {
		b.cache.InvalidateFolders()
		b.cache.InvalidateFiles(name)
		if event.Has(fsnotify.Create) && !strings.HasPrefix(name, ".") {
			if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
				return event.Name
			}
		}
		return ""
	}
	if filepath.Dir(parent) == b.rootDir {
		b.cache.InvalidateFiles(filepath.Base(parent))
	}
	return ""
}
