package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/waterme/internal/logger"
	"github.com/julianstephens/waterme/internal/storage"
)

// settleDelay groups the burst of writes sqlite makes to the database,
// journal and WAL files for a single commit.
var settleDelay = 150 * time.Millisecond

func watchFile(ctx context.Context, path string) (<-chan storage.Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("sqlite: create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("sqlite: watch %s: %w", dir, err)
	}

	base := filepath.Base(path)
	events := make(chan storage.Change, 1)

	go func() {
		defer close(events)
		defer watcher.Close()

		var mu sync.Mutex
		var timer *time.Timer
		stopped := false
		fire := func() {
			mu.Lock()
			defer mu.Unlock()
			timer = nil
			if stopped {
				return
			}
			select {
			case events <- storage.Change{Entity: storage.EntityUnknown}:
			default:
				// a change is already queued; the consumer rereads everything
			}
		}
		defer func() {
			mu.Lock()
			stopped = true
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("sqlite watcher error", "error", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(evt.Name), base) {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				mu.Lock()
				if timer == nil {
					timer = time.AfterFunc(settleDelay, fire)
				}
				mu.Unlock()
			}
		}
	}()

	return events, nil
}
