package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/voicenotes/internal/models"
	"github.com/killallgit/voicenotes/internal/services/playback"
	"github.com/killallgit/voicenotes/internal/services/recorder"
	"github.com/killallgit/voicenotes/internal/services/waveforms"
)

type fakeStore struct {
	mu    sync.Mutex
	notes []models.VoiceNote
	calls []string
	log   *[]string
}

func (s *fakeStore) Load(ctx context.Context) error { return nil }

func (s *fakeStore) Search(query string) []models.VoiceNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.VoiceNote
	for _, n := range s.notes {
		if q == "" || strings.Contains(strings.ToLower(n.Name), q) {
			out = append(out, n)
		}
	}
	return out
}

func (s *fakeStore) Rename(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "rename:"+id)
	for i := range s.notes {
		if s.notes[i].ID == id && strings.TrimSpace(name) != "" {
			s.notes[i].Name = strings.TrimSpace(name)
		}
	}
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "delete:"+id)
	if s.log != nil {
		*s.log = append(*s.log, "delete:"+id)
	}
	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeStore) Watch(ctx context.Context, onChange func()) error { return nil }

type fakePlayer struct {
	mu    sync.Mutex
	calls []string
	seeks []float64
	snap  playback.Snapshot
	err   error
	log   *[]string // shared with the store to check call order
}

func (p *fakePlayer) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
	if p.log != nil {
		*p.log = append(*p.log, call)
	}
}

func (p *fakePlayer) Toggle(ctx context.Context, note models.VoiceNote) error {
	p.record("toggle:" + note.ID)
	return p.err
}

func (p *fakePlayer) Seek(ctx context.Context, note models.VoiceNote, frac float64) error {
	p.record("seek:" + note.ID)
	p.mu.Lock()
	p.seeks = append(p.seeks, frac)
	p.mu.Unlock()
	return p.err
}

func (p *fakePlayer) CycleRate(ctx context.Context) (float64, error) {
	p.record("rate")
	return 1.5, p.err
}

func (p *fakePlayer) StopIfPlaying(ctx context.Context, id string) error {
	p.record("stop:" + id)
	return nil
}

func (p *fakePlayer) Snapshot() playback.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap.Rate == 0 {
		p.snap.Rate = 1
	}
	return p.snap
}

func (p *fakePlayer) Subscribe(fn func(playback.Snapshot)) func() { return func() {} }

type fakeRecorder struct {
	mu      sync.Mutex
	state   recorder.State
	calls   []string
	saved   *models.VoiceNote
	elapsed time.Duration
	levels  []float64
}

func (r *fakeRecorder) record(call string, next recorder.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	r.state = next
}

func (r *fakeRecorder) Start(ctx context.Context) error {
	r.record("start", recorder.StateRecording)
	return nil
}

func (r *fakeRecorder) Pause(ctx context.Context) error {
	r.record("pause", recorder.StatePaused)
	return nil
}

func (r *fakeRecorder) Resume(ctx context.Context) error {
	r.record("resume", recorder.StateRecording)
	return nil
}

func (r *fakeRecorder) Cancel(ctx context.Context) error {
	r.record("cancel", recorder.StateIdle)
	return nil
}

func (r *fakeRecorder) Stop(ctx context.Context) (*models.VoiceNote, error) {
	r.record("stop", recorder.StateIdle)
	return r.saved, nil
}

func (r *fakeRecorder) State() recorder.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *fakeRecorder) Elapsed() time.Duration { return r.elapsed }

func (r *fakeRecorder) Levels() []float64 { return r.levels }

type harness struct {
	store    *fakeStore
	player   *fakePlayer
	recorder *fakeRecorder
	model    Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := &fakeStore{notes: []models.VoiceNote{
		{ID: "3", Name: "Groceries", CreatedAt: 3000, DurationMillis: 4800},
		{ID: "2", Name: "Walk idea", CreatedAt: 2000, DurationMillis: 9600},
		{ID: "1", Name: "Recording 1", CreatedAt: 1000, DurationMillis: 1200},
	}}
	player := &fakePlayer{}
	rec := &fakeRecorder{}
	return &harness{
		store:    store,
		player:   player,
		recorder: rec,
		model:    New(context.Background(), store, player, rec, Options{}),
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers msg and then runs the returned command once, feeding its
// result back in. Ticks are not executed.
func (h *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	if cmd == nil {
		return nil
	}
	out := cmd()
	if _, ok := out.(actionMsg); !ok {
		return cmd
	}
	next, cmd = h.model.Update(out)
	h.model = next.(Model)
	return cmd
}

func TestNew_ListsNotes(t *testing.T) {
	h := newHarness(t)

	require.Len(t, h.model.notes, 3)
	assert.Equal(t, "3", h.model.notes[0].ID)
	assert.Equal(t, 0, h.model.cursor)
	assert.Equal(t, waveforms.DefaultMaxHeight, h.model.opts.MaxBarHeight)
}

func TestCursorMovement(t *testing.T) {
	h := newHarness(t)

	h.send(t, tea.KeyMsg{Type: tea.KeyDown})
	h.send(t, runes("j"))
	h.send(t, runes("j"))
	assert.Equal(t, 2, h.model.cursor)

	h.send(t, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, h.model.cursor)
}

func TestPlayToggle(t *testing.T) {
	h := newHarness(t)
	h.send(t, runes("j"))

	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"toggle:2"}, h.player.calls)
}

func TestPlayError_Shown(t *testing.T) {
	h := newHarness(t)
	h.player.err = errors.New("device busy")

	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "device busy", h.model.err)
	assert.Contains(t, h.model.View(), "device busy")
}

func TestSeekByBar(t *testing.T) {
	h := newHarness(t)

	h.send(t, runes("l"))
	require.Len(t, h.player.seeks, 1)
	assert.InDelta(t, 1.0/48, h.player.seeks[0], 1e-9)

	// Playing at bar 12 of the selected note.
	h.player.snap = playback.Snapshot{NoteID: "3", Phase: playback.PhasePlaying, PositionMillis: 1200, DurationMillis: 4800, Rate: 1}
	h.send(t, PlayerMsg{Snapshot: h.player.snap})
	h.send(t, runes("l"))
	h.send(t, runes("h"))
	require.Len(t, h.player.seeks, 3)
	assert.InDelta(t, 13.0/48, h.player.seeks[1], 1e-9)
	assert.InDelta(t, 11.0/48, h.player.seeks[2], 1e-9)
}

func TestSeekBack_ClampsAtStart(t *testing.T) {
	h := newHarness(t)

	h.send(t, runes("h"))
	require.Len(t, h.player.seeks, 1)
	assert.Equal(t, 0.0, h.player.seeks[0])
}

func TestCycleRate(t *testing.T) {
	h := newHarness(t)

	h.send(t, runes("s"))
	assert.Equal(t, []string{"rate"}, h.player.calls)
	assert.Equal(t, "Speed 1.5x", h.model.status)
}

func TestSearch(t *testing.T) {
	h := newHarness(t)

	h.send(t, runes("/"))
	assert.Equal(t, modeSearch, h.model.mode)

	h.send(t, runes("w"))
	h.send(t, runes("A"))
	require.Len(t, h.model.notes, 1)
	assert.Equal(t, "2", h.model.notes[0].ID)

	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeBrowse, h.model.mode)
	assert.Len(t, h.model.notes, 1, "filter stays after leaving the box")

	h.send(t, runes("/"))
	h.send(t, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, h.model.notes, 3, "escape clears the filter")
}

func TestSearch_NoMatches(t *testing.T) {
	h := newHarness(t)

	h.send(t, runes("/"))
	h.send(t, runes("zzz"))
	assert.Empty(t, h.model.notes)
	assert.Contains(t, h.model.View(), "No matching recordings")

	// Note actions are ignored with nothing selected.
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, h.player.calls)
}

func TestRename(t *testing.T) {
	h := newHarness(t)
	h.send(t, runes("j"))

	h.send(t, runes("e"))
	require.Equal(t, modeRename, h.model.mode)
	assert.Equal(t, "Walk idea", h.model.rename.Value())

	h.model.rename.SetValue("Morning walk")
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeBrowse, h.model.mode)
	assert.Equal(t, []string{"rename:2"}, h.store.calls)
	assert.Equal(t, "Morning walk", h.model.notes[1].Name)
	assert.Equal(t, 1, h.model.cursor)
}

func TestRename_EscapeCancels(t *testing.T) {
	h := newHarness(t)

	h.send(t, runes("e"))
	h.send(t, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeBrowse, h.model.mode)
	assert.Empty(t, h.store.calls)
}

func TestDelete_StopsPlaybackFirst(t *testing.T) {
	h := newHarness(t)
	var order []string
	h.player.log = &order
	h.store.log = &order

	h.send(t, runes("d"))
	require.Equal(t, modeConfirmDelete, h.model.mode)
	assert.Contains(t, h.model.View(), `Delete "Groceries"?`)

	h.send(t, runes("y"))
	assert.Equal(t, []string{"stop:3", "delete:3"}, order)
	require.Len(t, h.model.notes, 2)
	assert.Equal(t, "Deleted", h.model.status)
}

func TestDelete_Declined(t *testing.T) {
	h := newHarness(t)

	h.send(t, runes("d"))
	h.send(t, runes("n"))
	assert.Equal(t, modeBrowse, h.model.mode)
	assert.Empty(t, h.store.calls)
	assert.Len(t, h.model.notes, 3)
}

func TestRecordingLifecycle(t *testing.T) {
	h := newHarness(t)
	h.recorder.saved = &models.VoiceNote{ID: "4", Name: "Recording 2"}

	tick := h.send(t, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, recorder.StateRecording, h.recorder.State())
	assert.NotNil(t, tick, "timer keeps ticking while recording")
	assert.Equal(t, []string{"stop:"}, h.player.calls, "playback stops before recording")

	h.recorder.elapsed = 65 * time.Second
	h.recorder.levels = []float64{0.2, 0.9}
	view := h.model.View()
	assert.Contains(t, view, "REC")
	assert.Contains(t, view, "01:05")

	h.send(t, runes("p"))
	assert.Equal(t, recorder.StatePaused, h.recorder.State())
	assert.Contains(t, h.model.View(), "PAUSED")

	h.send(t, runes("p"))
	assert.Equal(t, recorder.StateRecording, h.recorder.State())

	h.send(t, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, recorder.StateIdle, h.recorder.State())
	assert.Equal(t, []string{"start", "pause", "resume", "stop"}, h.recorder.calls)
	assert.Equal(t, `Saved "Recording 2"`, h.model.status)
}

func TestRecordingCancel(t *testing.T) {
	h := newHarness(t)

	h.send(t, runes("x"))
	assert.Empty(t, h.recorder.calls, "nothing to discard when idle")

	h.send(t, tea.KeyMsg{Type: tea.KeySpace})
	h.send(t, runes("x"))
	assert.Equal(t, []string{"start", "cancel"}, h.recorder.calls)
	assert.Equal(t, "Recording discarded", h.model.status)
}

func TestRecordTick_StopsWhenIdle(t *testing.T) {
	h := newHarness(t)

	_, cmd := h.model.Update(recordTickMsg{})
	assert.Nil(t, cmd)
}

func TestNotesChanged_Reloads(t *testing.T) {
	h := newHarness(t)
	h.send(t, runes("j"))

	h.store.notes = append([]models.VoiceNote{{ID: "9", Name: "From elsewhere", CreatedAt: 9000}}, h.store.notes...)
	h.send(t, NotesChangedMsg{})

	require.Len(t, h.model.notes, 4)
	assert.Equal(t, "2", h.model.notes[h.model.cursor].ID, "cursor follows the selected note")
}

func TestView_Waveforms(t *testing.T) {
	h := newHarness(t)
	h.send(t, tea.WindowSizeMsg{Width: 100, Height: 40})
	h.send(t, PlayerMsg{Snapshot: playback.Snapshot{NoteID: "2", Phase: playback.PhasePaused, PositionMillis: 4800, DurationMillis: 9600, Rate: 1.5}})

	view := h.model.View()
	assert.Contains(t, view, "Groceries")
	assert.Contains(t, view, "Walk idea")
	assert.Contains(t, view, "00:04 / 00:09")
	assert.Contains(t, view, "1.5x")
}

func TestView_Empty(t *testing.T) {
	store := &fakeStore{}
	m := New(context.Background(), store, &fakePlayer{}, &fakeRecorder{}, Options{MinBarHeight: 2, MaxBarHeight: 8})

	assert.Contains(t, m.View(), "No recordings yet")
}

func TestQuit(t *testing.T) {
	h := newHarness(t)

	_, cmd := h.model.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
