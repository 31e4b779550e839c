package notes

import "errors"

// Common errors
var (
	ErrNoteNotFound   = errors.New("note not found")
	ErrMissingSource  = errors.New("recording source path is empty")
	ErrUnknownBackend = errors.New("unknown storage backend")
)
