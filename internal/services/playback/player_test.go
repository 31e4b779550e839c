package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/voicenotes/internal/models"
	apperrors "github.com/killallgit/voicenotes/pkg/errors"
)

// fakeTransport records every call across all sounds it hands out
type fakeTransport struct {
	mu       sync.Mutex
	log      []string
	sounds   map[string]*fakeSound
	loadErr  error
	duration int64
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sounds: make(map[string]*fakeSound), duration: 10000}
}

func (f *fakeTransport) record(entry string) {
	f.mu.Lock()
	f.log = append(f.log, entry)
	f.mu.Unlock()
}

func (f *fakeTransport) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

func (f *fakeTransport) Load(ctx context.Context, uri string, onStatus StatusFunc) (Sound, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	f.record("load " + uri)
	s := &fakeSound{t: f, uri: uri, onStatus: onStatus, duration: f.duration}
	f.sounds[uri] = s
	return s, nil
}

type fakeSound struct {
	t        *fakeTransport
	uri      string
	onStatus StatusFunc
	duration int64
	position int64
	rate     float64
	playErr  error
}

func (s *fakeSound) Play(ctx context.Context) error {
	if s.playErr != nil {
		return s.playErr
	}
	s.t.record("play " + s.uri)
	return nil
}

func (s *fakeSound) Pause(ctx context.Context) error {
	s.t.record("pause " + s.uri)
	return nil
}

func (s *fakeSound) SetPosition(ctx context.Context, millis int64) error {
	s.t.record("seek " + s.uri)
	s.position = millis
	return nil
}

func (s *fakeSound) SetRate(ctx context.Context, rate float64) error {
	s.rate = rate
	return nil
}

func (s *fakeSound) Status() Status {
	return Status{PositionMillis: s.position, DurationMillis: s.duration}
}

func (s *fakeSound) Unload(ctx context.Context) error {
	s.t.record("unload " + s.uri)
	return nil
}

var (
	noteA = models.VoiceNote{ID: "a", URI: "/voices/a.m4a", DurationMillis: 10000}
	noteB = models.VoiceNote{ID: "b", URI: "/voices/b.m4a", DurationMillis: 4000}
)

func TestPlayer_ToggleLifecycle(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	p := NewPlayer(tr)

	assert.Equal(t, PhaseIdle, p.Snapshot().Phase)

	require.NoError(t, p.Toggle(ctx, noteA))
	snap := p.Snapshot()
	assert.Equal(t, "a", snap.NoteID)
	assert.Equal(t, PhasePlaying, snap.Phase)
	assert.Equal(t, int64(10000), snap.DurationMillis)

	require.NoError(t, p.Toggle(ctx, noteA))
	assert.Equal(t, PhasePaused, p.Snapshot().Phase)

	require.NoError(t, p.Toggle(ctx, noteA))
	assert.True(t, p.Snapshot().Playing())

	assert.Equal(t, []string{
		"load /voices/a.m4a", "play /voices/a.m4a",
		"pause /voices/a.m4a",
		"play /voices/a.m4a",
	}, tr.calls())
}

func TestPlayer_UnloadsBeforeLoadingAnotherNote(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	p := NewPlayer(tr)

	require.NoError(t, p.Toggle(ctx, noteA))
	require.NoError(t, p.Toggle(ctx, noteB))

	assert.Equal(t, []string{
		"load /voices/a.m4a", "play /voices/a.m4a",
		"unload /voices/a.m4a",
		"load /voices/b.m4a", "play /voices/b.m4a",
	}, tr.calls())
	assert.Equal(t, "b", p.Snapshot().NoteID)
}

func TestPlayer_FinishedNoteStartsOver(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	p := NewPlayer(tr)

	require.NoError(t, p.Toggle(ctx, noteA))
	tr.sounds[noteA.URI].onStatus(Status{PositionMillis: 9990, DurationMillis: 10000, DidJustFinish: true})

	snap := p.Snapshot()
	assert.Equal(t, PhasePaused, snap.Phase)
	assert.Equal(t, int64(10000), snap.PositionMillis)
	assert.Equal(t, 47, snap.ProgressIndex())

	require.NoError(t, p.Toggle(ctx, noteA))
	assert.Equal(t, int64(0), tr.sounds[noteA.URI].position)
	assert.Equal(t, int64(0), p.Snapshot().PositionMillis)
	assert.Contains(t, tr.calls(), "seek /voices/a.m4a")
	assert.True(t, p.Snapshot().Playing())
}

func TestPlayer_PausedMidwayResumesInPlace(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	p := NewPlayer(tr)

	require.NoError(t, p.Toggle(ctx, noteA))
	tr.sounds[noteA.URI].onStatus(Status{PositionMillis: 5000, DurationMillis: 10000, Playing: true})
	require.NoError(t, p.Toggle(ctx, noteA))
	require.NoError(t, p.Toggle(ctx, noteA))

	assert.NotContains(t, tr.calls(), "seek /voices/a.m4a")
	assert.Equal(t, int64(5000), p.Snapshot().PositionMillis)
}

func TestPlayer_SeekLoadsWithoutPlaying(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	p := NewPlayer(tr)

	require.NoError(t, p.Toggle(ctx, noteA))
	require.NoError(t, p.Seek(ctx, noteB, 0.5))

	snap := p.Snapshot()
	assert.Equal(t, "b", snap.NoteID)
	assert.Equal(t, PhaseLoaded, snap.Phase)
	assert.Equal(t, int64(5000), snap.PositionMillis)
	assert.Equal(t, int64(5000), tr.sounds[noteB.URI].position)

	// Clamped
	require.NoError(t, p.Seek(ctx, noteB, 3))
	assert.Equal(t, int64(10000), p.Snapshot().PositionMillis)
	assert.Contains(t, tr.calls(), "unload /voices/a.m4a")
}

func TestPlayer_CycleRate(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	p := NewPlayer(tr)

	r, err := p.CycleRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.5, r)

	// Rate carries over to the next load
	require.NoError(t, p.Toggle(ctx, noteA))
	assert.Equal(t, 1.5, tr.sounds[noteA.URI].rate)

	r, err = p.CycleRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, r)
	assert.Equal(t, 2.0, tr.sounds[noteA.URI].rate)

	r, err = p.CycleRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r)
	assert.Equal(t, 1.0, p.Rate())
}

func TestPlayer_StopIfPlaying(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	p := NewPlayer(tr)

	require.NoError(t, p.Toggle(ctx, noteA))
	require.NoError(t, p.StopIfPlaying(ctx, "b"))
	assert.Equal(t, "a", p.Snapshot().NoteID)

	require.NoError(t, p.StopIfPlaying(ctx, "a"))
	assert.Equal(t, PhaseIdle, p.Snapshot().Phase)
	assert.Empty(t, p.Snapshot().NoteID)

	require.NoError(t, p.Toggle(ctx, noteB))
	require.NoError(t, p.Close(ctx))
	assert.Equal(t, PhaseIdle, p.Snapshot().Phase)
	assert.NoError(t, p.Close(ctx))
}

func TestPlayer_LoadFailure(t *testing.T) {
	tests := []struct {
		name    string
		policy  apperrors.Policy
		wantErr bool
	}{
		{name: "ignored", policy: apperrors.Ignore},
		{name: "surfaced", policy: apperrors.Surface, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newFakeTransport()
			tr.loadErr = errors.New("no such file")
			p := NewPlayer(tr, WithPolicy(tt.policy))

			err := p.Toggle(context.Background(), noteA)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(errors.Unwrap(err), apperrors.ErrCodeMedia))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, PhaseIdle, p.Snapshot().Phase)
		})
	}
}

func TestPlayer_PlayFailureKeepsLoaded(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	p := NewPlayer(tr)

	require.NoError(t, p.Ensure(ctx, noteA, false))
	tr.sounds[noteA.URI].playErr = errors.New("device busy")

	assert.NoError(t, p.Ensure(ctx, noteA, true))
	assert.Equal(t, PhaseLoaded, p.Snapshot().Phase)
}

func TestPlayer_StaleStatusIgnored(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	p := NewPlayer(tr)

	require.NoError(t, p.Toggle(ctx, noteA))
	staleCallback := tr.sounds[noteA.URI].onStatus
	require.NoError(t, p.Toggle(ctx, noteB))

	staleCallback(Status{PositionMillis: 7777, DurationMillis: 10000, DidJustFinish: true})
	snap := p.Snapshot()
	assert.Equal(t, "b", snap.NoteID)
	assert.Equal(t, int64(0), snap.PositionMillis)
	assert.True(t, snap.Playing())
}

func TestPlayer_SubscribersAreThrottled(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	p := NewPlayer(tr, WithProgressInterval(time.Hour))

	var (
		mu   sync.Mutex
		seen []Snapshot
	)
	unsubscribe := p.Subscribe(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	require.NoError(t, p.Toggle(ctx, noteA))
	report := tr.sounds[noteA.URI].onStatus
	for pos := int64(0); pos < 1000; pos += 50 {
		report(Status{PositionMillis: pos, DurationMillis: 10000, Playing: true})
	}
	report(Status{PositionMillis: 10000, DurationMillis: 10000, DidJustFinish: true})

	mu.Lock()
	require.Len(t, seen, 2, "first progress update plus the finish")
	assert.Equal(t, int64(0), seen[0].PositionMillis)
	assert.Equal(t, PhasePaused, seen[1].Phase)
	assert.Equal(t, int64(10000), seen[1].PositionMillis)
	mu.Unlock()

	unsubscribe()
	report(Status{PositionMillis: 10000, DurationMillis: 10000, DidJustFinish: true})
	mu.Lock()
	assert.Len(t, seen, 2)
	mu.Unlock()
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "loaded", PhaseLoaded.String())
	assert.Equal(t, "playing", PhasePlaying.String())
	assert.Equal(t, "paused", PhasePaused.String())
}
