package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/killallgit/voicenotes/pkg/config"
)

var logLevels = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

var levelTags = [][]byte{
	[]byte("[DEBUG]"),
	[]byte("[INFO]"),
	[]byte("[WARN]"),
	[]byte("[ERROR]"),
}

// levelWriter drops log lines tagged below the minimum level. Untagged lines
// always pass.
type levelWriter struct {
	out io.Writer
	min int
}

func (w *levelWriter) Write(p []byte) (int, error) {
	for lvl, tag := range levelTags {
		if bytes.Contains(p, tag) {
			if lvl < w.min {
				return len(p), nil
			}
			break
		}
	}
	return w.out.Write(p)
}

// setupLogging routes the standard logger through a level filter, writing to
// cfg.File when set and to fallback otherwise. The returned closer is nil
// unless a file was opened.
func setupLogging(cfg config.LoggingConfig, fallback io.Writer) (io.Closer, error) {
	minLevel, ok := logLevels[strings.ToLower(cfg.Level)]
	if !ok {
		minLevel = logLevels["info"]
	}

	out := fallback
	var closer io.Closer
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	log.SetOutput(&levelWriter{out: out, min: minLevel})
	return closer, nil
}
