package recorder

import (
	"context"
	"time"

	"github.com/killallgit/voicenotes/internal/models"
	"github.com/killallgit/voicenotes/internal/services/notes"
)

// TempFilePrefix names in-progress capture files
const TempFilePrefix = "voicenote-rec-"

// MeterFunc receives one peak reading in dBFS per metering tick
type MeterFunc func(dbfs float64)

// Capture prepares recordings on an input device
type Capture interface {
	// Prepare opens a capture with the given profile. onMeter may be nil
	// when metering is disabled.
	Prepare(ctx context.Context, profile Profile, onMeter MeterFunc, interval time.Duration) (Take, error)
}

// Take is one prepared recording
type Take interface {
	Start(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error

	// Stop finalizes the file and returns its path
	Stop(ctx context.Context) (string, error)

	// Path is where the capture is being written
	Path() string
}

// PermissionGate asks for access to the microphone
type PermissionGate interface {
	RequestPermission(ctx context.Context) (bool, error)
}

// NoteCreator stores a finalized recording
type NoteCreator interface {
	Create(ctx context.Context, in notes.NewNote) (*models.VoiceNote, error)
}
