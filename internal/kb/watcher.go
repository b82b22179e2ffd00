package kb

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the statute whenever its file changes, until ctx is cancelled.
// Bursts of events are coalesced by the configured debounce delay. A failed
// reload is logged and the previous document keeps serving.
func (s *Service) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	target, err := filepath.Abs(s.settings.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve statute path: %w", err)
	}

	// Watch the directory so editors that replace the file are still seen
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	s.logger.Info("Watching statute file for changes", "path", target)

	debounce := s.settings.WatchDebounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isStatuteChange(event, target) {
				continue
			}
			s.logger.Debug("Statute file changed", "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("File watcher error", "error", err)

		case <-timer.C:
			doc, err := s.Reload(ctx)
			if err != nil {
				s.logger.Error("Statute reload failed, keeping previous version", "error", err)
				continue
			}
			s.logger.Info("Statute reloaded", "id", doc.ID(), "sections", len(doc.Sections()))
		}
	}
}

// isStatuteChange reports whether event touches the watched file with a content-changing op.
func isStatuteChange(event fsnotify.Event, target string) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
