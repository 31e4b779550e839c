package notes

import (
	"context"

	"github.com/killallgit/voicenotes/internal/models"
)

// MemoryRepository is the no-persistence mode used when there is no writable
// storage. Every load starts empty and saves are discarded.
type MemoryRepository struct{}

// Ensure MemoryRepository implements Repository
var _ Repository = MemoryRepository{}

// EnsureSetup is a no-op
func (MemoryRepository) EnsureSetup(ctx context.Context) error { return nil }

// Load always returns an empty list
func (MemoryRepository) Load(ctx context.Context) ([]models.VoiceNote, error) {
	return []models.VoiceNote{}, nil
}

// Save discards the list
func (MemoryRepository) Save(ctx context.Context, notes []models.VoiceNote) error { return nil }
