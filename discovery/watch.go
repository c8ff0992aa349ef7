package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch blocks until the context is done, invoking onChange for every
// created or rewritten file that resolves to a configured source. New
// directories under the data dir are picked up as they appear; fsnotify
// does not recurse on its own.
func (f *Finder) Watch(ctx context.Context, onChange func(File)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := addRecursive(w, f.cfg.DataDir); err != nil {
		return err
	}
	f.log.Info("watching for codebook changes", "dir", f.cfg.DataDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				if err := addRecursive(w, ev.Name); err != nil {
					f.log.Warn("failed to watch new directory", "dir", ev.Name, "error", err)
				}
				continue
			}
			file, ok := f.Resolve(ev.Name)
			if !ok {
				continue
			}
			f.log.Debug("codebook changed", "path", file.Path, "source", file.Source)
			onChange(file)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.log.Warn("watch error", "error", err)
		}
	}
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
