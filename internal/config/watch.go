// internal/config/watch.go
package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch re-reads the config file whenever it changes and hands the parsed
// result to apply. The parent directory is watched rather than the file
// itself so editors and orchestrators that replace the file by rename keep
// triggering events. A file that fails to parse is skipped; the previous
// configuration stays in effect.
func Watch(ctx context.Context, path string, logger *zap.Logger, apply func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				cfg, err := Load(path)
				if err != nil {
					logger.Warn("config reload failed", zap.String("path", path), zap.Error(err))
					continue
				}
				logger.Info("config reloaded", zap.String("path", path))
				apply(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
