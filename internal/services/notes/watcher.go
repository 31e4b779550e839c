package notes

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is how long the watcher waits for a burst of writes
// to the metadata document to settle
const DefaultWatchDebounce = 100 * time.Millisecond

// Watch reloads the list whenever the repository's file changes on disk and
// then calls onChange. It blocks until ctx is done. Repositories without a
// file location have nothing to watch and return immediately.
func (s *Service) Watch(ctx context.Context, onChange func()) error {
	locator, ok := s.repository.(Locator)
	if !ok {
		return nil
	}

	return watchFile(ctx, locator.Location(), s.debounce, func() {
		if err := s.Load(ctx); err != nil {
			log.Printf("[WARN] Reload after change failed: %v", err)
			return
		}
		if onChange != nil {
			onChange()
		}
	})
}

// watchFile watches the directory holding path, since atomic saves replace
// the file rather than writing to it, and fires fn once per settled burst of
// events on that name.
func watchFile(ctx context.Context, path string, debounce time.Duration, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if ctx.Err() == nil {
					fn()
				}
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[WARN] Watcher error: %v", err)
		}
	}
}
