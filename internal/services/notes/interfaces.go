package notes

import (
	"context"
	"time"

	"github.com/killallgit/voicenotes/internal/models"
)

// NoteService defines the interface for note store operations
type NoteService interface {
	// EnsureSetup creates the storage locations if they are missing
	EnsureSetup(ctx context.Context) error

	// Load replaces the in-memory list with the persisted one
	Load(ctx context.Context) error

	// Notes returns every note, newest first
	Notes() []models.VoiceNote

	// Search returns notes whose name contains query, newest first
	Search(query string) []models.VoiceNote

	// Get returns a single note by id
	Get(id string) (*models.VoiceNote, error)

	// Create imports a finalized recording and prepends a new note for it.
	// A nil note with a nil error means the failure was absorbed by the error policy.
	Create(ctx context.Context, in NewNote) (*models.VoiceNote, error)

	// Rename changes a note's name; a blank name keeps the old one
	Rename(ctx context.Context, id, name string) error

	// Delete removes the backing file and then the note. Unknown ids are a no-op.
	Delete(ctx context.Context, id string) error

	// Reconcile compares the note list with the audio files on disk
	Reconcile(ctx context.Context) (*Report, error)

	// Prune deletes orphaned files and drops notes whose file is gone
	Prune(ctx context.Context, report *Report) error

	// Watch reloads the list whenever the persisted document changes on disk
	Watch(ctx context.Context, onChange func()) error
}

// Repository persists the complete note list. There is no per-note write:
// every mutation saves the whole list.
type Repository interface {
	// EnsureSetup prepares the backing store
	EnsureSetup(ctx context.Context) error

	// Load returns the persisted list. A missing document yields an empty
	// list; an unreadable one yields an empty list and an error.
	Load(ctx context.Context) ([]models.VoiceNote, error)

	// Save replaces the persisted list
	Save(ctx context.Context, notes []models.VoiceNote) error
}

// Locator is implemented by repositories backed by a single file on disk
type Locator interface {
	Location() string
}

// FileStorage manages the audio files behind notes
type FileStorage interface {
	// EnsureDir creates the storage directory if it is missing
	EnsureDir(ctx context.Context) error

	// Import moves a finalized capture into storage as <id><ext> and returns its path
	Import(ctx context.Context, src, id string) (string, error)

	// Delete removes a file; a missing file is not an error
	Delete(ctx context.Context, uri string) error

	// Exists checks if a file exists in storage
	Exists(ctx context.Context, uri string) (bool, error)

	// List returns the audio files present in storage
	List(ctx context.Context) ([]string, error)

	// Dir returns the storage directory
	Dir() string
}

// Prober measures the playable duration of an audio file
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// NewNote describes a finalized recording to add to the store
type NewNote struct {
	SourcePath string
	Amplitudes []float64 // BarCount values or nil
}

// Report is the result of comparing notes with the files on disk
type Report struct {
	Missing []models.VoiceNote `json:"missing" yaml:"missing"` // notes whose file is gone
	Orphans []string           `json:"orphans" yaml:"orphans"` // audio files no note refers to
}

// Clean reports whether notes and files agree
func (r *Report) Clean() bool {
	return r == nil || (len(r.Missing) == 0 && len(r.Orphans) == 0)
}
