package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/killallgit/voicenotes/internal/models"
	apperrors "github.com/killallgit/voicenotes/pkg/errors"
)

// tempFilePrefix marks in-flight metadata writes
const tempFilePrefix = ".notes-tmp-"

// JSONRepository stores the note list as one JSON document
type JSONRepository struct {
	path string
}

// Ensure JSONRepository implements Repository
var _ Repository = (*JSONRepository)(nil)

// NewJSONRepository creates a repository for the document at path
func NewJSONRepository(path string) *JSONRepository {
	return &JSONRepository{path: path}
}

// Location returns the document path
func (r *JSONRepository) Location() string {
	return r.path
}

// EnsureSetup creates the document's directory
func (r *JSONRepository) EnsureSetup(ctx context.Context) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.IOError("create storage directory", dir, err)
	}
	return nil
}

// Load reads the document. Anything but a JSON array of notes is reported as
// corrupt and yields an empty list.
func (r *JSONRepository) Load(ctx context.Context) ([]models.VoiceNote, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.VoiceNote{}, nil
		}
		return []models.VoiceNote{}, apperrors.IOError("read metadata", r.path, err)
	}

	var notes []models.VoiceNote
	if err := json.Unmarshal(data, &notes); err != nil {
		return []models.VoiceNote{}, apperrors.CorruptMetadataError(r.path, err)
	}
	if notes == nil {
		// "null" is valid JSON but not a list
		return []models.VoiceNote{}, apperrors.CorruptMetadataError(r.path, fmt.Errorf("document is null"))
	}
	return notes, nil
}

// Save writes the full list through a temp file and rename
func (r *JSONRepository) Save(ctx context.Context, notes []models.VoiceNote) error {
	if notes == nil {
		notes = []models.VoiceNote{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to encode notes")
	}
	if err := writeFileAtomic(r.path, data, 0644); err != nil {
		return apperrors.IOError("write metadata", r.path, err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over filename.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	tmpFile, err := os.CreateTemp(dir, tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}
