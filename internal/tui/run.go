package tui

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/killallgit/voicenotes/internal/services/playback"
	"github.com/killallgit/voicenotes/internal/services/recorder"
)

// Run shows the UI until the user quits. Player updates and on-disk changes
// to the note list are forwarded into the program. A recording still in
// progress on exit is saved.
func Run(ctx context.Context, m Model) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen())

	unsubscribe := m.player.Subscribe(func(s playback.Snapshot) {
		p.Send(PlayerMsg{Snapshot: s})
	})
	defer unsubscribe()

	go func() {
		if err := m.store.Watch(ctx, func() { p.Send(NotesChangedMsg{}) }); err != nil {
			log.Printf("[WARN] Note watcher stopped: %v", err)
		}
	}()

	_, err := p.Run()

	if m.recorder.State() != recorder.StateIdle {
		if _, stopErr := m.recorder.Stop(context.Background()); stopErr != nil {
			log.Printf("[ERROR] Failed to save recording on exit: %v", stopErr)
		}
	}
	if stopErr := m.player.StopIfPlaying(context.Background(), ""); stopErr != nil {
		log.Printf("[WARN] Failed to unload player: %v", stopErr)
	}
	return err
}
