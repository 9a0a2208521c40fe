package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file whenever it changes on disk and calls
// onChange with the freshly parsed result. Editors often replace files
// via rename, so the parent directory is watched rather than the file.
// Blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	// Debounce: write+rename sequences fire several events per save.
	var pending *time.Timer
	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			logger.Warn("config reload failed, keeping previous", "path", path, "error", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			logger.Warn("reloaded config invalid, keeping previous", "path", path, "error", err)
			return
		}
		logger.Info("config reloaded", "path", path)
		onChange(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.Stop()
			}
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			evAbs, err := filepath.Abs(ev.Name)
			if err != nil || evAbs != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(200*time.Millisecond, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
