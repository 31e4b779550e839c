package notes

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/killallgit/voicenotes/internal/models"
	apperrors "github.com/killallgit/voicenotes/pkg/errors"
)

// SQLiteRepository stores the note list as ordered rows
type SQLiteRepository struct {
	db   *gorm.DB
	path string
}

// Ensure SQLiteRepository implements Repository
var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a repository over an open database. path is
// the database file, used for change notifications.
func NewSQLiteRepository(db *gorm.DB, path string) *SQLiteRepository {
	return &SQLiteRepository{db: db, path: path}
}

// Location returns the database file path
func (r *SQLiteRepository) Location() string {
	return r.path
}

// EnsureSetup migrates the note table
func (r *SQLiteRepository) EnsureSetup(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.NoteRecord{}); err != nil {
		return apperrors.IOError("migrate note table", r.path, err)
	}
	return nil
}

// Load returns the notes in saved order
func (r *SQLiteRepository) Load(ctx context.Context) ([]models.VoiceNote, error) {
	var records []models.NoteRecord
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&records).Error; err != nil {
		return []models.VoiceNote{}, apperrors.IOError("read notes", r.path, err)
	}

	notes := make([]models.VoiceNote, 0, len(records))
	for i := range records {
		note, err := records[i].VoiceNote()
		if err != nil {
			return []models.VoiceNote{}, apperrors.CorruptMetadataError(r.path, fmt.Errorf("note %s: %w", records[i].NoteID, err))
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// Save replaces every row in one transaction
func (r *SQLiteRepository) Save(ctx context.Context, notes []models.VoiceNote) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.NoteRecord{}).Error; err != nil {
			return fmt.Errorf("clearing notes: %w", err)
		}
		if len(notes) == 0 {
			return nil
		}

		records := make([]*models.NoteRecord, 0, len(notes))
		for i, note := range notes {
			record, err := models.NewNoteRecord(note, i)
			if err != nil {
				return fmt.Errorf("encoding note %s: %w", note.ID, err)
			}
			records = append(records, record)
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("inserting notes: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperrors.IOError("write notes", r.path, err)
	}
	return nil
}
