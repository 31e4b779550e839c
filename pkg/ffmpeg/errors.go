package ffmpeg

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrFFprobeNotFound  = errors.New("ffprobe binary not found")
	ErrInvalidAudioFile = errors.New("invalid or unsupported audio file")
	ErrProbeTimeout     = errors.New("audio probe timeout")
)

// ProcessingError represents an error while probing an audio file
type ProcessingError struct {
	Operation string // The operation that failed (e.g., "metadata_extraction")
	File      string // The file being probed
	Err       error  // The underlying error
	Stderr    string // stderr output from ffprobe
}

func (e *ProcessingError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("ffprobe %s failed for %s: %v (stderr: %s)", e.Operation, e.File, e.Err, e.Stderr)
	}
	return fmt.Sprintf("ffprobe %s failed for %s: %v", e.Operation, e.File, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewProcessingError creates a new ProcessingError
func NewProcessingError(operation, file string, err error, stderr string) *ProcessingError {
	return &ProcessingError{
		Operation: operation,
		File:      file,
		Err:       err,
		Stderr:    stderr,
	}
}
