package notes

import (
	"context"
	"log"
	"path/filepath"

	"github.com/killallgit/voicenotes/internal/models"
)

// Reconcile lists notes whose file is missing and audio files that no note
// refers to. It does not modify anything.
func (s *Service) Reconcile(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	notes := cloneAll(s.notes)
	s.mu.Unlock()

	report := &Report{
		Missing: []models.VoiceNote{},
		Orphans: []string{},
	}

	known := make(map[string]bool, len(notes))
	for _, n := range notes {
		known[filepath.Clean(n.URI)] = true

		ok, err := s.storage.Exists(ctx, n.URI)
		if err != nil {
			return nil, err
		}
		if !ok {
			report.Missing = append(report.Missing, n)
		}
	}

	var files []string
	if s.persistent() {
		listed, err := s.storage.List(ctx)
		if err != nil {
			return nil, err
		}
		files = listed
	}
	for _, f := range files {
		if !known[filepath.Clean(f)] {
			report.Orphans = append(report.Orphans, f)
		}
	}

	log.Printf("[DEBUG] Reconcile found %d missing and %d orphaned file(s)", len(report.Missing), len(report.Orphans))
	return report, nil
}

// Prune deletes the report's orphaned files and drops its missing notes with
// a single save.
func (s *Service) Prune(ctx context.Context, report *Report) error {
	if report.Clean() {
		return nil
	}

	for _, f := range report.Orphans {
		if err := s.storage.Delete(ctx, f); err != nil {
			if handled := s.policy.Handle("delete orphan", err); handled != nil {
				return handled
			}
			continue
		}
		log.Printf("[INFO] Removed orphaned file %s", f)
	}

	if len(report.Missing) == 0 {
		return nil
	}

	drop := make(map[string]bool, len(report.Missing))
	for _, n := range report.Missing {
		drop[n.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.VoiceNote, 0, len(s.notes))
	for _, n := range s.notes {
		if drop[n.ID] {
			log.Printf("[INFO] Dropping note %s: file %s is missing", n.ID, n.URI)
			continue
		}
		next = append(next, n)
	}
	s.notes = next

	return s.save(ctx)
}
