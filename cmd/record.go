package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/killallgit/voicenotes/internal/services/recorder"
	"github.com/killallgit/voicenotes/internal/services/waveforms"
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a new voice note",
		Long: `Record a new voice note from the default microphone.

Press Enter to stop and save. Ctrl+C discards the recording.

Example:
  voicenotes record
  voicenotes record --duration 30s`,
		Args: cobra.NoArgs,
		RunE: runRecord,
	}
	cmd.Flags().Duration("duration", 0, "stop automatically after this long (0 = wait for Enter)")
	return cmd
}

func runRecord(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetDuration("duration")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	if err := rec.Start(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Recording... press Enter to stop, Ctrl+C to discard")

	enter := make(chan struct{})
	go func() {
		bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		close(enter)
	}()

	var deadline <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fmt.Fprintf(out, "\r%s", waveforms.FormatClock(rec.Elapsed().Milliseconds()))
		case <-ctx.Done():
			fmt.Fprintln(out)
			if err := rec.Cancel(context.Background()); err != nil {
				return err
			}
			fmt.Fprintln(out, "Recording discarded")
			return nil
		case <-enter:
			return saveRecording(cmd, rec)
		case <-deadline:
			return saveRecording(cmd, rec)
		}
	}
}

func saveRecording(cmd *cobra.Command, rec *recorder.Recorder) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	note, err := rec.Stop(cmd.Context())
	if err != nil {
		return err
	}
	if note == nil {
		fmt.Fprintln(out, "Recording was not saved (see log for details)")
		return nil
	}
	fmt.Fprintf(out, "Saved %q (%s) as %s\n", note.Name, waveforms.FormatClock(note.DurationMillis), note.ID)
	return nil
}
