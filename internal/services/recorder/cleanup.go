package recorder

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Janitor removes capture files abandoned by crashed or killed sessions
type Janitor struct {
	tempDir         string
	maxAge          time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	cancel          context.CancelFunc
}

// NewJanitor creates a janitor for tempDir
func NewJanitor(tempDir string, maxAge, cleanupInterval time.Duration) *Janitor {
	return &Janitor{
		tempDir:         tempDir,
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
	}
}

// Start sweeps once, then periodically until Stop or ctx is done
func (j *Janitor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	j.Sweep()

	go func() {
		ticker := time.NewTicker(j.cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.Sweep()
			case <-ctx.Done():
				log.Println("[DEBUG] Capture janitor stopped")
				return
			}
		}
	}()

	log.Printf("[DEBUG] Capture janitor started (interval: %v, max age: %v)", j.cleanupInterval, j.maxAge)
}

// Stop stops periodic sweeps
func (j *Janitor) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
}

// Sweep removes stale capture files and returns how many were removed
func (j *Janitor) Sweep() int {
	entries, err := os.ReadDir(j.tempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[ERROR] Capture janitor cannot read %s: %v", j.tempDir, err)
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), TempFilePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // Skip files with errors
		}
		if j.now().Sub(info.ModTime()) <= j.maxAge {
			continue
		}

		path := filepath.Join(j.tempDir, entry.Name())
		log.Printf("[DEBUG] Removing stale capture file: %s", path)
		if err := os.Remove(path); err != nil {
			log.Printf("[WARN] Failed to remove capture file %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed
}
