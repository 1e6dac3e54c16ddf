package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch reloads the config file on change and delivers each successfully
// loaded revision to onChange. Revisions that fail to parse or validate are
// logged and dropped so a half-written file never reaches the harness.
// Watch blocks until the context is cancelled.
func Watch(ctx context.Context, path string, log *logrus.Logger, onChange func(*Config)) error {
	if log == nil {
		log = logrus.New()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files via rename,
	// which drops a file-level watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				log.WithError(err).Warnf("ignoring unusable config revision of %s", path)
				continue
			}
			log.Infof("reloaded %s", path)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("config watcher error")
		}
	}
}
