package notes

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/killallgit/voicenotes/internal/models"
	"github.com/killallgit/voicenotes/internal/services/waveforms"
	apperrors "github.com/killallgit/voicenotes/pkg/errors"
)

// Service implements NoteService. It owns the in-memory list; every mutation
// rewrites the full list through the repository.
type Service struct {
	mu         sync.Mutex
	repository Repository
	storage    FileStorage
	prober     Prober
	policy     apperrors.Policy
	now        func() time.Time
	debounce   time.Duration
	notes      []models.VoiceNote
}

// Ensure Service implements NoteService
var _ NoteService = (*Service)(nil)

// ServiceOption is a functional option for configuring the service
type ServiceOption func(*Service)

// WithPolicy sets how I/O failures are handled
func WithPolicy(policy apperrors.Policy) ServiceOption {
	return func(s *Service) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithClock overrides the time source used for ids and timestamps
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithWatchDebounce sets how long Watch waits for writes to settle
func WithWatchDebounce(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// NewService creates a note store
func NewService(repository Repository, storage FileStorage, prober Prober, opts ...ServiceOption) *Service {
	s := &Service{
		repository: repository,
		storage:    storage,
		prober:     prober,
		policy:     apperrors.Ignore,
		now:        time.Now,
		debounce:   DefaultWatchDebounce,
		notes:      []models.VoiceNote{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// persistent reports whether notes outlive the process. In the memory
// backend nothing is written to the storage directory: recordings stay where
// the capture left them.
func (s *Service) persistent() bool {
	_, degraded := s.repository.(MemoryRepository)
	return !degraded
}

// EnsureSetup creates the storage directory and prepares the repository
func (s *Service) EnsureSetup(ctx context.Context) error {
	if !s.persistent() {
		return nil
	}
	if err := s.storage.EnsureDir(ctx); err != nil {
		return s.policy.Handle("ensure storage", err)
	}
	if err := s.repository.EnsureSetup(ctx); err != nil {
		return s.policy.Handle("ensure metadata", err)
	}
	return nil
}

// Load replaces the in-memory list. An unreadable document leaves the store
// empty; whether the error is returned depends on the policy. The read and
// the swap happen under s.mu so a reload cannot overwrite a concurrent
// mutation with the list it read before that mutation was saved.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	loaded, err := s.repository.Load(ctx)
	if loaded == nil {
		loaded = []models.VoiceNote{}
	}
	s.notes = loaded
	s.mu.Unlock()

	if err != nil {
		return s.policy.Handle("load notes", err)
	}
	log.Printf("[DEBUG] Loaded %d note(s)", len(loaded))
	return nil
}

// Notes returns every note, newest first
func (s *Service) Notes() []models.VoiceNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.notes, nil)
}

// Search returns notes whose name contains the trimmed query, ignoring case.
// An empty query matches everything.
func (s *Service) Search(query string) []models.VoiceNote {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.Lock()
	defer s.mu.Unlock()
	if q == "" {
		return sortedCopy(s.notes, nil)
	}
	return sortedCopy(s.notes, func(n models.VoiceNote) bool {
		return strings.Contains(strings.ToLower(n.Name), q)
	})
}

// Get returns a note by id
func (s *Service) Get(id string) (*models.VoiceNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, apperrors.NotFound("note", id).WithCause(ErrNoteNotFound)
	}
	note := s.notes[idx].Clone()
	return &note, nil
}

// Create imports the recording, probes its duration and prepends the note
func (s *Service) Create(ctx context.Context, in NewNote) (*models.VoiceNote, error) {
	if in.SourcePath == "" {
		return nil, apperrors.ValidationError("source_path", "must not be empty").WithCause(ErrMissingSource)
	}
	if in.Amplitudes != nil && len(in.Amplitudes) != models.BarCount {
		return nil, apperrors.ValidationError("amplitudes",
			fmt.Sprintf("expected %d values, got %d", models.BarCount, len(in.Amplitudes))).
			WithCause(waveforms.ErrInvalidAmplitudes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := s.nextID(now)

	uri := in.SourcePath
	if s.persistent() {
		imported, err := s.storage.Import(ctx, in.SourcePath, id)
		if err != nil {
			return nil, s.policy.Handle("import recording", err)
		}
		uri = imported
	}

	duration, err := s.prober.Duration(ctx, uri)
	if err != nil {
		// The file is useless without a duration; don't leave an orphan behind.
		if delErr := s.storage.Delete(ctx, uri); delErr != nil {
			log.Printf("[WARN] Failed to remove unprobed recording %s: %v", uri, delErr)
		}
		return nil, s.policy.Handle("probe duration", apperrors.MediaError("probe", err).WithDetail("path", uri))
	}

	note := models.VoiceNote{
		ID:             id,
		Name:           NextRecordingName(s.notes),
		URI:            uri,
		CreatedAt:      now.UnixMilli(),
		DurationMillis: duration.Milliseconds(),
	}
	if in.Amplitudes != nil {
		note.Amplitudes = append([]float64(nil), in.Amplitudes...)
	}

	next := make([]models.VoiceNote, 0, len(s.notes)+1)
	next = append(next, note)
	next = append(next, s.notes...)
	s.notes = next

	log.Printf("[INFO] Created note %s (%s, %dms)", note.ID, note.Name, note.DurationMillis)

	created := note.Clone()
	if err := s.save(ctx); err != nil {
		return &created, err
	}
	return &created, nil
}

// Rename sets a note's name. A name that is blank once trimmed keeps the old one.
func (s *Service) Rename(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return apperrors.NotFound("note", id).WithCause(ErrNoteNotFound)
	}

	name = strings.TrimSpace(name)
	if name == "" || name == s.notes[idx].Name {
		return nil
	}

	next := cloneAll(s.notes)
	next[idx].Name = name
	s.notes = next

	return s.save(ctx)
}

// Delete removes the backing file and then the note. Deleting an unknown id
// or a note whose file is already gone succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	uri := s.notes[idx].URI
	if err := s.storage.Delete(ctx, uri); err != nil {
		if handled := s.policy.Handle("delete file", err); handled != nil {
			return handled
		}
	}

	next := make([]models.VoiceNote, 0, len(s.notes)-1)
	next = append(next, s.notes[:idx]...)
	next = append(next, s.notes[idx+1:]...)
	s.notes = next

	log.Printf("[INFO] Deleted note %s", id)
	return s.save(ctx)
}

// save persists the current list; callers hold s.mu
func (s *Service) save(ctx context.Context) error {
	if err := s.repository.Save(ctx, s.notes); err != nil {
		return s.policy.Handle("save notes", err)
	}
	return nil
}

// nextID returns the epoch-millisecond id for now, bumped until unused;
// callers hold s.mu
func (s *Service) nextID(now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if s.indexOf(id) < 0 {
			return id
		}
		ms++
	}
}

func (s *Service) indexOf(id string) int {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(notes []models.VoiceNote) []models.VoiceNote {
	out := make([]models.VoiceNote, len(notes))
	for i := range notes {
		out[i] = notes[i].Clone()
	}
	return out
}

// sortedCopy returns the notes accepted by keep (all when nil), newest first
func sortedCopy(notes []models.VoiceNote, keep func(models.VoiceNote) bool) []models.VoiceNote {
	out := make([]models.VoiceNote, 0, len(notes))
	for _, n := range notes {
		if keep == nil || keep(n) {
			out = append(out, n.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}
