package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/killallgit/voicenotes/internal/services/notes"
	"github.com/killallgit/voicenotes/internal/tui"
)

func newUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive voice notes browser",
		Long: `Open the interactive terminal UI.

Logs go to logging.file, or $HOME/.voicenotes/voicenotes.log when unset,
so they do not draw over the interface.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{logToFile: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			janitor := a.startJanitor(ctx)
			defer janitor.Stop()

			rec, err := a.newRecorder()
			if err != nil {
				return err
			}
			player := a.newPlayer()

			var store tui.Store = a.notes
			if !a.cfg.Storage.Watch {
				store = unwatched{a.notes}
			}

			m := tui.New(ctx, store, player, rec, tui.Options{
				MinBarHeight: a.cfg.Waveform.MinHeight,
				MaxBarHeight: a.cfg.Waveform.MaxHeight,
			})
			return tui.Run(ctx, m)
		},
	}
}

// unwatched disables reloading on external changes
type unwatched struct {
	*notes.Service
}

func (unwatched) Watch(ctx context.Context, onChange func()) error {
	return nil
}
