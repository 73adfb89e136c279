package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DetectChanges watches the macro configuration file and emits a value on
// the returned channel for every write to it. Editors that replace the file
// (rename + create) are covered by watching the parent directory. The
// channel closes when ctx is cancelled or the watcher cannot be created.
func DetectChanges(ctx context.Context, path string, logger *zap.Logger) <-chan bool {
	var change = make(chan bool)

	go func() {
		defer close(change)
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			logger.Warn("creating config watcher failed", zap.Error(err))
			return
		}

		go func() {
			<-ctx.Done()
			if err := watcher.Close(); err != nil {
				logger.Debug("closing config watcher failed", zap.Error(err))
			}
		}()

		if err := watcher.Add(filepath.Dir(path)); err != nil {
			logger.Warn("watching config directory failed", zap.Error(err))
			return
		}

		target := filepath.Clean(path)
		for event := range watcher.Events {
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			logger.Info("config change detected", zap.String("path", event.Name))
			select {
			case change <- true:
			case <-ctx.Done():
				return
			}
		}
	}()

	return change
}
