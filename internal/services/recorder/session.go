package recorder

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/killallgit/voicenotes/internal/models"
	"github.com/killallgit/voicenotes/internal/services/notes"
	"github.com/killallgit/voicenotes/internal/services/waveforms"
	apperrors "github.com/killallgit/voicenotes/pkg/errors"
)

// State is the recording session state
type State int

const (
	StateIdle State = iota
	StateRecording
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// DefaultMeteringInterval is how often capture backends report peak levels
const DefaultMeteringInterval = 100 * time.Millisecond

// Recorder runs one recording at a time: Idle -> Recording <-> Paused -> Idle
type Recorder struct {
	mu       sync.Mutex
	capture  Capture
	gate     PermissionGate
	store    NoteCreator
	policy   apperrors.Policy
	profile  Profile
	interval time.Duration
	now      func() time.Time

	meter   *waveforms.Meter
	state   State
	take    Take
	started time.Time     // start of the current running segment
	elapsed time.Duration // accumulated before the current segment
}

// Option configures a Recorder
type Option func(*Recorder)

// WithPolicy sets how transport failures are handled
func WithPolicy(policy apperrors.Policy) Option {
	return func(r *Recorder) {
		if policy != nil {
			r.policy = policy
		}
	}
}

// WithMeteringInterval sets the metering tick
func WithMeteringInterval(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithClock overrides the time source for elapsed time
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a recorder that captures with profile and stores finished takes in store
func New(capture Capture, gate PermissionGate, store NoteCreator, profile Profile, opts ...Option) *Recorder {
	r := &Recorder{
		capture:  capture,
		gate:     gate,
		store:    store,
		policy:   apperrors.Ignore,
		profile:  profile,
		interval: DefaultMeteringInterval,
		now:      time.Now,
		meter:    waveforms.NewMeter(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// State returns the current state
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Elapsed returns recorded time, excluding pauses
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateRecording {
		return r.elapsed + r.now().Sub(r.started)
	}
	return r.elapsed
}

// Levels returns the normalized metering samples captured so far
func (r *Recorder) Levels() []float64 {
	return r.meter.Samples()
}

// Start asks for microphone access and begins a new take. A denied
// permission is always returned and nothing is captured.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIdle {
		return nil
	}

	granted, err := r.gate.RequestPermission(ctx)
	if err != nil {
		return r.policy.Handle("request permission", err)
	}
	if !granted {
		log.Printf("[WARN] Microphone permission denied")
		return apperrors.PermissionDenied("microphone")
	}

	r.meter.Reset()
	take, err := r.prepare(ctx)
	if err != nil {
		return r.policy.Handle("prepare recording", apperrors.MediaError("prepare", err))
	}

	if err := take.Start(ctx); err != nil {
		discard(ctx, take)
		return r.policy.Handle("start recording", apperrors.MediaError("start", err))
	}

	r.take = take
	r.state = StateRecording
	r.started = r.now()
	r.elapsed = 0
	log.Printf("[INFO] Recording to %s", take.Path())
	return nil
}

// prepare tries the configured profile, then the platform fallback
func (r *Recorder) prepare(ctx context.Context) (Take, error) {
	take, err := r.capture.Prepare(ctx, r.profile, r.meterFunc(r.profile), r.interval)
	if err == nil {
		return take, nil
	}

	fallback := r.profile.Fallback()
	log.Printf("[WARN] Could not prepare %s (%v), retrying with %s", r.profile, err, fallback)
	return r.capture.Prepare(ctx, fallback, r.meterFunc(fallback), r.interval)
}

func (r *Recorder) meterFunc(p Profile) MeterFunc {
	if !p.MeteringEnabled {
		return nil
	}
	return func(dbfs float64) {
		r.meter.Record(dbfs)
	}
}

// Pause suspends the take; a no-op unless recording
func (r *Recorder) Pause(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording {
		return nil
	}
	if err := r.take.Pause(ctx); err != nil {
		return r.policy.Handle("pause recording", apperrors.MediaError("pause", err))
	}
	r.elapsed += r.now().Sub(r.started)
	r.state = StatePaused
	return nil
}

// Resume continues a paused take; a no-op unless paused
func (r *Recorder) Resume(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePaused {
		return nil
	}
	if err := r.take.Resume(ctx); err != nil {
		return r.policy.Handle("resume recording", apperrors.MediaError("resume", err))
	}
	r.started = r.now()
	r.state = StateRecording
	return nil
}

// Cancel stops the take and deletes its file
func (r *Recorder) Cancel(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateIdle {
		return nil
	}
	take := r.take
	r.reset()

	discard(ctx, take)
	log.Printf("[INFO] Recording cancelled")
	return nil
}

// Stop finalizes the take and stores it as a new note. The waveform is
// absent when no metering samples were captured.
func (r *Recorder) Stop(ctx context.Context) (*models.VoiceNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateIdle {
		return nil, nil
	}
	take := r.take
	r.reset()

	path, err := take.Stop(ctx)
	if err != nil {
		removeFile(take.Path())
		return nil, r.policy.Handle("stop recording", apperrors.MediaError("stop", err))
	}

	amps := r.meter.Waveform()
	r.meter.Reset()

	return r.store.Create(ctx, notes.NewNote{SourcePath: path, Amplitudes: amps})
}

// reset returns to Idle; callers hold r.mu
func (r *Recorder) reset() {
	r.take = nil
	r.state = StateIdle
	r.elapsed = 0
}

// discard stops a take and removes whatever it wrote
func discard(ctx context.Context, take Take) {
	path, err := take.Stop(ctx)
	if err != nil {
		log.Printf("[DEBUG] Stopping discarded take: %v", err)
	}
	if path == "" {
		path = take.Path()
	}
	removeFile(path)
}

func removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] Failed to remove capture file %s: %v", path, err)
	}
}
