package storage

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called for every change of a slot file, whether written
// by this process or by another one sharing the directory.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind, key string)

// Watch starts an fsnotify watcher on the FS root and reports slot changes
// until ctx is cancelled. Temp files written by Set are ignored, so an
// atomic write surfaces as a single created or updated event for the key.
func Watch(ctx context.Context, store *FS, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", store.Root()))

	known := make(map[string]struct{})
	if keys, err := store.Keys(); err == nil {
		for _, k := range keys {
			known[k] = struct{}{}
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			key, isSlot := store.KeyOf(ev.Name)
			if !isSlot {
				continue
			}

			var kind string
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind = "updated"
				if _, seen := known[key]; !seen {
					kind = "created"
				}
				known[key] = struct{}{}
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path only; the new name, if it
				// is a slot, arrives as its own Create.
				delete(known, key)
				kind = "deleted"
			default:
				continue
			}

			logger.Debug("watcher: slot changed", slog.String("key", key), slog.String("op", kind))
			if cb != nil {
				cb(kind, key)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
