// Package tui is the interactive terminal front end: the note list with
// waveforms, playback controls, search, rename, delete and recording.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/killallgit/voicenotes/internal/models"
	"github.com/killallgit/voicenotes/internal/services/playback"
	"github.com/killallgit/voicenotes/internal/services/recorder"
	"github.com/killallgit/voicenotes/internal/services/waveforms"
)

// Store is the part of the note service the UI drives
type Store interface {
	Load(ctx context.Context) error
	Search(query string) []models.VoiceNote
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	Watch(ctx context.Context, onChange func()) error
}

// Player is the part of the player the UI drives
type Player interface {
	Toggle(ctx context.Context, note models.VoiceNote) error
	Seek(ctx context.Context, note models.VoiceNote, frac float64) error
	CycleRate(ctx context.Context) (float64, error)
	StopIfPlaying(ctx context.Context, id string) error
	Snapshot() playback.Snapshot
	Subscribe(fn func(playback.Snapshot)) func()
}

// Recorder is the part of the recording session the UI drives
type Recorder interface {
	Start(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Cancel(ctx context.Context) error
	Stop(ctx context.Context) (*models.VoiceNote, error)
	State() recorder.State
	Elapsed() time.Duration
	Levels() []float64
}

// Options tune rendering
type Options struct {
	MinBarHeight int
	MaxBarHeight int
}

// NotesChangedMsg is sent when the note list changed outside the UI
type NotesChangedMsg struct{}

// PlayerMsg carries a player status update
type PlayerMsg struct {
	Snapshot playback.Snapshot
}

type actionMsg struct {
	status string
	err    error
}

type recordTickMsg struct{}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeRename
	modeConfirmDelete
)

const recordTick = 100 * time.Millisecond

// Model is the root bubbletea model
type Model struct {
	ctx      context.Context
	store    Store
	player   Player
	recorder Recorder
	opts     Options

	keys   keyMap
	help   help.Model
	search textinput.Model
	rename textinput.Model

	mode   mode
	notes  []models.VoiceNote
	cursor int
	target models.VoiceNote // note being renamed or deleted
	snap   playback.Snapshot

	status string
	err    string
	width  int
	height int
}

// New creates the model and populates it from store
func New(ctx context.Context, store Store, player Player, rec Recorder, opts Options) Model {
	if opts.MaxBarHeight <= 0 {
		opts.MinBarHeight, opts.MaxBarHeight = waveforms.DefaultMinHeight, waveforms.DefaultMaxHeight
	}

	search := textinput.New()
	search.Placeholder = "Search"
	search.Prompt = "/ "
	search.Cursor.SetMode(cursor.CursorStatic)

	rename := textinput.New()
	rename.Placeholder = "Name"
	rename.Prompt = "> "
	rename.CharLimit = 120
	rename.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		ctx:      ctx,
		store:    store,
		player:   player,
		recorder: rec,
		opts:     opts,
		keys:     keys,
		help:     help.New(),
		search:   search,
		rename:   rename,
		snap:     player.Snapshot(),
	}
	m.refresh()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeRename:
			return m.updateRename(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)

	case PlayerMsg:
		m.snap = msg.Snapshot
		return m, nil

	case NotesChangedMsg:
		m.refresh()
		return m, nil

	case actionMsg:
		m.snap = m.player.Snapshot()
		m.refresh()
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		if msg.status != "" {
			m.status = msg.status
		}
		if m.recorder.State() == recorder.StateRecording {
			return m, tickCmd()
		}
		return m, nil

	case recordTickMsg:
		if m.recorder.State() == recorder.StateRecording {
			return m, tickCmd()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.notes)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Record):
		if m.recorder.State() == recorder.StateIdle {
			return m, m.startRecording()
		}
		return m, m.stopRecording()

	case key.Matches(msg, m.keys.Pause):
		switch m.recorder.State() {
		case recorder.StateRecording:
			return m, m.run("Paused", m.recorder.Pause)
		case recorder.StatePaused:
			return m, m.run("Recording", m.recorder.Resume)
		}
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.recorder.State() == recorder.StateIdle {
			return m, nil
		}
		return m, m.run("Recording discarded", m.recorder.Cancel)

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m, m.search.Focus()
	}

	note, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Play):
		return m, m.run("", func(ctx context.Context) error {
			return m.player.Toggle(ctx, note)
		})

	case key.Matches(msg, m.keys.Back):
		return m, m.seekBar(note, -1)

	case key.Matches(msg, m.keys.Forward):
		return m, m.seekBar(note, 1)

	case key.Matches(msg, m.keys.Rate):
		return m, func() tea.Msg {
			r, err := m.player.CycleRate(m.ctx)
			return actionMsg{status: fmt.Sprintf("Speed %gx", r), err: err}
		}

	case key.Matches(msg, m.keys.Rename):
		m.mode = modeRename
		m.target = note
		m.rename.SetValue(note.Name)
		m.rename.CursorEnd()
		return m, m.rename.Focus()

	case key.Matches(msg, m.keys.Delete):
		m.mode = modeConfirmDelete
		m.target = note
		return m, nil
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.SetValue("")
		m.search.Blur()
		m.mode = modeBrowse
		m.refresh()
		return m, nil
	case tea.KeyEnter:
		m.search.Blur()
		m.mode = modeBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refresh()
	return m, cmd
}

func (m Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.rename.Blur()
		m.mode = modeBrowse
		return m, nil
	case tea.KeyEnter:
		m.rename.Blur()
		m.mode = modeBrowse
		id, name := m.target.ID, m.rename.Value()
		return m, m.run("Renamed", func(ctx context.Context) error {
			return m.store.Rename(ctx, id, name)
		})
	}

	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	if !key.Matches(msg, m.keys.Confirm) {
		return m, nil
	}
	id := m.target.ID
	return m, m.run("Deleted", func(ctx context.Context) error {
		if err := m.player.StopIfPlaying(ctx, id); err != nil {
			return err
		}
		return m.store.Delete(ctx, id)
	})
}

func (m Model) startRecording() tea.Cmd {
	return m.run("Recording", func(ctx context.Context) error {
		if err := m.player.StopIfPlaying(ctx, ""); err != nil {
			return err
		}
		return m.recorder.Start(ctx)
	})
}

func (m Model) stopRecording() tea.Cmd {
	return func() tea.Msg {
		note, err := m.recorder.Stop(m.ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		if note == nil {
			return actionMsg{status: "Recording was not saved"}
		}
		return actionMsg{status: fmt.Sprintf("Saved %q", note.Name)}
	}
}

func (m Model) seekBar(note models.VoiceNote, delta int) tea.Cmd {
	bar := 0
	if m.snap.NoteID == note.ID && m.snap.Phase != playback.PhaseIdle {
		bar = m.snap.ProgressIndex()
	}
	bar = max(0, min(waveforms.BarCount-1, bar+delta))
	return m.run("", func(ctx context.Context) error {
		return m.player.Seek(ctx, note, waveforms.SeekFractionForBar(bar))
	})
}

// run executes fn off the update loop and reports the outcome
func (m Model) run(status string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{status: status, err: fn(m.ctx)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(recordTick, func(time.Time) tea.Msg {
		return recordTickMsg{}
	})
}

// refresh re-reads the filtered list, keeping the cursor on the same note
func (m *Model) refresh() {
	var id string
	if n, ok := m.selected(); ok {
		id = n.ID
	}
	m.notes = m.store.Search(m.search.Value())
	m.cursor = 0
	for i, n := range m.notes {
		if n.ID == id {
			m.cursor = i
			break
		}
	}
}

func (m Model) selected() (models.VoiceNote, bool) {
	if m.cursor < 0 || m.cursor >= len(m.notes) {
		return models.VoiceNote{}, false
	}
	return m.notes[m.cursor], true
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Voice Notes"))
	b.WriteString(DimStyle.Render(fmt.Sprintf("  %d notes  %gx", len(m.notes), m.snap.Rate)))
	b.WriteString("\n")

	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.viewList())
	b.WriteString(m.viewRecorder())

	switch m.mode {
	case modeRename:
		b.WriteString(ModalStyle.Render("Rename recording\n" + m.rename.View()))
		b.WriteString("\n")
	case modeConfirmDelete:
		b.WriteString(ModalStyle.Render(fmt.Sprintf("Delete %q? (y/n)", m.target.Name)))
		b.WriteString("\n")
	}

	if m.err != "" {
		b.WriteString(ErrorStyle.Render(m.err))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(StatusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) viewList() string {
	if len(m.notes) == 0 {
		if m.search.Value() != "" {
			return DimStyle.Render("No matching recordings") + "\n\n"
		}
		return DimStyle.Render("No recordings yet. Press space to record.") + "\n\n"
	}

	// Three lines per note; keep the cursor visible.
	visible := len(m.notes)
	if m.height > 0 {
		visible = max(1, (m.height-8)/3)
	}
	start := max(0, min(m.cursor-visible/2, len(m.notes)-visible))
	end := min(len(m.notes), start+visible)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.viewNote(m.notes[i], i == m.cursor))
	}
	return b.String()
}

func (m Model) viewNote(n models.VoiceNote, selected bool) string {
	current := m.snap.NoteID == n.ID && m.snap.Phase != playback.PhaseIdle

	marker, nameStyle := "  ", NormalStyle
	if selected {
		marker, nameStyle = "> ", SelectedStyle
	}

	clock := waveforms.FormatClock(n.DurationMillis)
	progress := -1
	if current {
		clock = waveforms.FormatClock(m.snap.PositionMillis) + " / " + clock
		progress = m.snap.ProgressIndex()
		if m.snap.Playing() {
			marker = "▶ "
		}
	}

	title := lipgloss.JoinHorizontal(lipgloss.Top,
		nameStyle.Render(marker+n.Name),
		DimStyle.Render("  "+clock+"  "+n.Created().Format("Jan 2 15:04")),
	)
	wave := "  " + renderWaveform(n.Amplitudes, m.opts.MinBarHeight, m.opts.MaxBarHeight, progress)
	return title + "\n" + wave + "\n\n"
}

func (m Model) viewRecorder() string {
	var label string
	switch m.recorder.State() {
	case recorder.StateRecording:
		label = RecordingStyle.Render("● REC")
	case recorder.StatePaused:
		label = PausedStyle.Render("❚❚ PAUSED")
	default:
		return ""
	}
	clock := waveforms.FormatClock(m.recorder.Elapsed().Milliseconds())
	return label + " " + clock + "  " + renderLevels(m.recorder.Levels(), waveforms.BarCount) + "\n\n"
}
