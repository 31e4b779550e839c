// Package playback owns the single loaded sound. A different note is only
// loaded after the previous sound has been unloaded.
package playback

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/killallgit/voicenotes/internal/models"
	"github.com/killallgit/voicenotes/internal/services/waveforms"
	apperrors "github.com/killallgit/voicenotes/pkg/errors"
)

// Phase is the player state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoaded
	PhasePlaying
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseLoaded:
		return "loaded"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Defaults
const (
	DefaultProgressInterval = 50 * time.Millisecond
	DefaultRewindThreshold  = 30 * time.Millisecond
)

// DefaultRates is the playback speed cycle
var DefaultRates = []float64{1, 1.5, 2}

// Snapshot is the player state as seen by the UI
type Snapshot struct {
	NoteID         string
	Phase          Phase
	PositionMillis int64
	DurationMillis int64
	Rate           float64
}

// Playing reports whether sound is currently audible
func (s Snapshot) Playing() bool {
	return s.Phase == PhasePlaying
}

// ProgressIndex returns the last played bar
func (s Snapshot) ProgressIndex() int {
	return waveforms.ProgressIndex(s.PositionMillis, s.DurationMillis)
}

// slot is the one loaded sound
type slot struct {
	note  models.VoiceNote
	sound Sound
}

// Player is a single-slot audio player
type Player struct {
	mu        sync.Mutex
	transport Transport
	policy    apperrors.Policy
	rates     []float64
	rateIdx   int
	rewind    time.Duration
	limiter   *rate.Limiter

	current  *slot
	phase    Phase
	position int64
	duration int64

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// Option configures a Player
type Option func(*Player)

// WithPolicy sets how transport failures are handled
func WithPolicy(policy apperrors.Policy) Option {
	return func(p *Player) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithRates sets the speed cycle
func WithRates(rates []float64) Option {
	return func(p *Player) {
		if len(rates) > 0 {
			p.rates = append([]float64(nil), rates...)
		}
	}
}

// WithRewindThreshold sets how close to the end a paused note restarts from zero
func WithRewindThreshold(d time.Duration) Option {
	return func(p *Player) {
		if d >= 0 {
			p.rewind = d
		}
	}
}

// WithProgressInterval limits how often subscribers hear about progress
func WithProgressInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// NewPlayer creates an idle player
func NewPlayer(transport Transport, opts ...Option) *Player {
	p := &Player{
		transport: transport,
		policy:    apperrors.Ignore,
		rates:     DefaultRates,
		rewind:    DefaultRewindThreshold,
		limiter:   rate.NewLimiter(rate.Every(DefaultProgressInterval), 1),
		subs:      make(map[int]func(Snapshot)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Subscribe registers fn for status updates and returns a function that
// removes it. Progress updates are throttled; finishes always arrive.
func (p *Player) Subscribe(fn func(Snapshot)) func() {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.subMu.Lock()
		delete(p.subs, id)
		p.subMu.Unlock()
	}
}

// Snapshot returns the current state
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// ProgressIndex returns the last played bar of the loaded note
func (p *Player) ProgressIndex() int {
	return p.Snapshot().ProgressIndex()
}

// Rate returns the current playback speed
func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rates[p.rateIdx]
}

func (p *Player) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:          p.phase,
		PositionMillis: p.position,
		DurationMillis: p.duration,
		Rate:           p.rates[p.rateIdx],
	}
	if p.current != nil {
		s.NoteID = p.current.note.ID
	}
	return s
}

// Toggle plays or pauses note. Pressing a different note replaces the loaded
// one; pressing a finished note starts it over.
func (p *Player) Toggle(ctx context.Context, note models.VoiceNote) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && p.current.note.ID == note.ID {
		if p.phase == PhasePlaying {
			return p.pauseLocked(ctx)
		}
		if p.duration > 0 && p.position >= p.duration-p.rewind.Milliseconds() {
			if err := p.current.sound.SetPosition(ctx, 0); err != nil {
				return p.policy.Handle("rewind", apperrors.MediaError("seek", err))
			}
			p.position = 0
		}
		return p.playLocked(ctx)
	}

	if err := p.loadLocked(ctx, note); err != nil {
		return err
	}
	if p.current == nil {
		return nil
	}
	return p.playLocked(ctx)
}

// Ensure loads note unless it is already loaded, and optionally plays it
func (p *Player) Ensure(ctx context.Context, note models.VoiceNote, play bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || p.current.note.ID != note.ID {
		if err := p.loadLocked(ctx, note); err != nil {
			return err
		}
		if p.current == nil {
			return nil
		}
	}
	if play && p.phase != PhasePlaying {
		return p.playLocked(ctx)
	}
	return nil
}

// Pause pauses the loaded note; a no-op unless playing
func (p *Player) Pause(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != PhasePlaying {
		return nil
	}
	return p.pauseLocked(ctx)
}

// StopIfPlaying unloads the loaded sound when it belongs to id, or whatever
// is loaded when id is empty.
func (p *Player) StopIfPlaying(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || (id != "" && p.current.note.ID != id) {
		return nil
	}
	return p.unloadLocked(ctx)
}

// Close unloads any loaded sound
func (p *Player) Close(ctx context.Context) error {
	return p.StopIfPlaying(ctx, "")
}

// Seek moves note's playhead to frac of its duration, loading it first when
// another note is loaded.
func (p *Player) Seek(ctx context.Context, note models.VoiceNote, frac float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || p.current.note.ID != note.ID {
		if err := p.loadLocked(ctx, note); err != nil {
			return err
		}
		if p.current == nil {
			return nil
		}
	}

	duration := p.duration
	if duration <= 0 {
		duration = note.DurationMillis
	}
	target := waveforms.SeekPosition(frac, duration)
	if err := p.current.sound.SetPosition(ctx, target); err != nil {
		return p.policy.Handle("seek", apperrors.MediaError("seek", err))
	}
	p.position = target
	return nil
}

// CycleRate advances to the next speed and applies it to the loaded sound
func (p *Player) CycleRate(ctx context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := (p.rateIdx + 1) % len(p.rates)
	if p.current != nil {
		if err := p.current.sound.SetRate(ctx, p.rates[next]); err != nil {
			return p.rates[p.rateIdx], p.policy.Handle("set rate", apperrors.MediaError("rate", err))
		}
	}
	p.rateIdx = next
	return p.rates[next], nil
}

// loadLocked unloads the current sound, then loads note. On an absorbed
// failure the player is left idle.
func (p *Player) loadLocked(ctx context.Context, note models.VoiceNote) error {
	if err := p.unloadLocked(ctx); err != nil {
		return err
	}

	s := &slot{note: note}
	sound, err := p.transport.Load(ctx, note.URI, func(st Status) {
		p.onStatus(s, st)
	})
	if err != nil {
		return p.policy.Handle("load sound", apperrors.MediaError("load", err).WithDetail("uri", note.URI))
	}
	s.sound = sound

	if r := p.rates[p.rateIdx]; r != 1 {
		if err := sound.SetRate(ctx, r); err != nil {
			log.Printf("[WARN] Failed to apply rate %.1fx to %s: %v", r, note.ID, err)
		}
	}

	st := sound.Status()
	p.current = s
	p.phase = PhaseLoaded
	p.position = st.PositionMillis
	p.duration = st.DurationMillis
	if p.duration <= 0 {
		p.duration = note.DurationMillis
	}
	log.Printf("[DEBUG] Loaded %s (%dms)", note.ID, p.duration)
	return nil
}

// unloadLocked releases the current sound. The slot is cleared even when
// the transport reports an error, so a broken handle is never reused.
func (p *Player) unloadLocked(ctx context.Context) error {
	if p.current == nil {
		return nil
	}
	old := p.current
	p.current = nil
	p.phase = PhaseIdle
	p.position = 0
	p.duration = 0

	if err := old.sound.Unload(ctx); err != nil {
		return p.policy.Handle("unload sound", apperrors.MediaError("unload", err))
	}
	return nil
}

func (p *Player) playLocked(ctx context.Context) error {
	if err := p.current.sound.Play(ctx); err != nil {
		return p.policy.Handle("play", apperrors.MediaError("play", err))
	}
	p.phase = PhasePlaying
	return nil
}

func (p *Player) pauseLocked(ctx context.Context) error {
	if err := p.current.sound.Pause(ctx); err != nil {
		return p.policy.Handle("pause", apperrors.MediaError("pause", err))
	}
	p.phase = PhasePaused
	return nil
}

// onStatus applies a transport report. Reports from a sound that is no
// longer loaded are dropped.
func (p *Player) onStatus(s *slot, st Status) {
	p.mu.Lock()
	if p.current != s {
		p.mu.Unlock()
		return
	}

	if st.DurationMillis > 0 {
		p.duration = st.DurationMillis
	}
	p.position = st.PositionMillis

	switch {
	case st.DidJustFinish:
		p.position = p.duration
		p.phase = PhasePaused
	case st.Playing:
		p.phase = PhasePlaying
	case p.phase == PhasePlaying:
		p.phase = PhasePaused
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if st.DidJustFinish || p.limiter.Allow() {
		p.publish(snap)
	}
}

func (p *Player) publish(snap Snapshot) {
	p.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
