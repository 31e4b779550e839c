package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/killallgit/voicenotes/internal/services/playback"
	"github.com/killallgit/voicenotes/internal/services/waveforms"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <id>",
		Short: "Play a voice note",
		Long: `Play a voice note through the default output device until it ends.

Example:
  voicenotes play 1718035200000
  voicenotes play 1718035200000 --rate 1.5`,
		Args: cobra.ExactArgs(1),
		RunE: runPlay,
	}
	cmd.Flags().Float64("rate", 1, "playback speed")
	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	rate, _ := cmd.Flags().GetFloat64("rate")
	if rate <= 0 {
		return fmt.Errorf("invalid rate %v", rate)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	note, err := a.notes.Get(args[0])
	if err != nil {
		return err
	}

	player := a.newPlayer(playback.WithRates([]float64{rate}))
	defer player.Close(context.Background())

	out := cmd.OutOrStdout()
	finished := make(chan struct{})
	var once sync.Once
	unsubscribe := player.Subscribe(func(s playback.Snapshot) {
		fmt.Fprintf(out, "\r%s / %s", waveforms.FormatClock(s.PositionMillis), waveforms.FormatClock(s.DurationMillis))
		if !s.Playing() && s.DurationMillis > 0 && s.PositionMillis >= s.DurationMillis {
			once.Do(func() { close(finished) })
		}
	})
	defer unsubscribe()

	fmt.Fprintf(out, "Playing %q at %gx\n", note.Name, rate)
	if err := player.Toggle(ctx, *note); err != nil {
		return err
	}
	if !player.Snapshot().Playing() {
		return fmt.Errorf("could not play %s", note.URI)
	}

	select {
	case <-finished:
	case <-ctx.Done():
	}
	fmt.Fprintln(out)
	return nil
}
