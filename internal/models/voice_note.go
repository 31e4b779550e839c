package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// BarCount is the fixed number of waveform bars stored per note
const BarCount = 48

// VoiceNote is one persisted recording. The JSON shape is the on-disk sidecar
// format and must stay stable.
type VoiceNote struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	URI            string    `json:"uri"`
	CreatedAt      int64     `json:"createdAt"`      // epoch milliseconds
	DurationMillis int64     `json:"durationMillis"` // probed once at creation
	Amplitudes     []float64 `json:"amplitudes,omitempty"`
}

// HasWaveform reports whether the note carries a full set of stored bars
func (n VoiceNote) HasWaveform() bool {
	return len(n.Amplitudes) == BarCount
}

// Created returns the creation time
func (n VoiceNote) Created() time.Time {
	return time.UnixMilli(n.CreatedAt)
}

// Duration returns the playable duration
func (n VoiceNote) Duration() time.Duration {
	return time.Duration(n.DurationMillis) * time.Millisecond
}

// Clone returns a deep copy so callers cannot mutate the store's list
func (n VoiceNote) Clone() VoiceNote {
	if n.Amplitudes != nil {
		n.Amplitudes = append([]float64(nil), n.Amplitudes...)
	}
	return n
}

// NoteRecord is the sqlite row for a VoiceNote
type NoteRecord struct {
	gorm.Model
	NoteID         string `gorm:"not null;uniqueIndex"`
	Position       int    `gorm:"not null;index"` // list order, 0 = first
	Name           string `gorm:"not null"`
	URI            string `gorm:"not null;column:uri"`
	CreatedAtMs    int64  `gorm:"not null;column:created_at_ms"`
	DurationMillis int64  `gorm:"not null"`
	AmplitudesData []byte `gorm:"type:blob"` // JSON-encoded []float64, nil when absent
}

// Amplitudes returns the decoded amplitudes, nil when none are stored
func (r *NoteRecord) Amplitudes() ([]float64, error) {
	if len(r.AmplitudesData) == 0 {
		return nil, nil
	}
	var amps []float64
	if err := json.Unmarshal(r.AmplitudesData, &amps); err != nil {
		return nil, err
	}
	return amps, nil
}

// SetAmplitudes encodes and sets the amplitudes data
func (r *NoteRecord) SetAmplitudes(amps []float64) error {
	if amps == nil {
		r.AmplitudesData = nil
		return nil
	}
	data, err := json.Marshal(amps)
	if err != nil {
		return err
	}
	r.AmplitudesData = data
	return nil
}

// NewNoteRecord converts a note into a row at the given list position
func NewNoteRecord(note VoiceNote, position int) (*NoteRecord, error) {
	record := &NoteRecord{
		NoteID:         note.ID,
		Position:       position,
		Name:           note.Name,
		URI:            note.URI,
		CreatedAtMs:    note.CreatedAt,
		DurationMillis: note.DurationMillis,
	}
	if err := record.SetAmplitudes(note.Amplitudes); err != nil {
		return nil, err
	}
	return record, nil
}

// VoiceNote converts the row back into a note
func (r *NoteRecord) VoiceNote() (VoiceNote, error) {
	amps, err := r.Amplitudes()
	if err != nil {
		return VoiceNote{}, err
	}
	return VoiceNote{
		ID:             r.NoteID,
		Name:           r.Name,
		URI:            r.URI,
		CreatedAt:      r.CreatedAtMs,
		DurationMillis: r.DurationMillis,
		Amplitudes:     amps,
	}, nil
}
