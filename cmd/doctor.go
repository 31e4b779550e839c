package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check notes against the audio files on disk",
		Long: `Compare the note list with the storage directory.

Reports notes whose audio file is missing and audio files no note refers to.
With --prune, orphaned files are deleted and unplayable notes are dropped.

Example:
  voicenotes doctor
  voicenotes doctor --prune`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
	cmd.Flags().Bool("prune", false, "delete orphaned files and drop notes whose file is missing")
	return cmd
}

func runDoctor(cmd *cobra.Command, args []string) error {
	prune, _ := cmd.Flags().GetBool("prune")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(out, "Storage:  %s (%s backend)\n", a.storage.Dir(), a.cfg.Storage.Backend)
	if a.db != nil {
		if err := a.db.HealthCheck(); err != nil {
			fmt.Fprintf(out, "Database: unhealthy: %v\n", err)
		} else {
			fmt.Fprintf(out, "Database: ok (%s)\n", a.cfg.Database.Path)
		}
	}
	if newFFprobe(a.cfg.Processing) == nil {
		fmt.Fprintln(out, "ffprobe:  not found, only WAV notes can be imported")
	} else {
		fmt.Fprintln(out, "ffprobe:  ok")
	}

	report, err := a.notes.Reconcile(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, strings.Repeat("-", 40))
	fmt.Fprintf(out, "Notes:    %d\n", len(a.notes.Notes()))
	for _, n := range report.Missing {
		fmt.Fprintf(out, "missing   %s  %s  (%s)\n", n.ID, n.Name, n.URI)
	}
	for _, path := range report.Orphans {
		fmt.Fprintf(out, "orphan    %s\n", path)
	}

	if report.Clean() {
		fmt.Fprintln(out, "Everything is in order")
		return nil
	}
	if !prune {
		fmt.Fprintf(out, "%d missing, %d orphaned; run with --prune to clean up\n", len(report.Missing), len(report.Orphans))
		return nil
	}

	if err := a.notes.Prune(ctx, report); err != nil {
		return err
	}
	fmt.Fprintf(out, "Pruned %d note(s) and %d file(s)\n", len(report.Missing), len(report.Orphans))
	return nil
}
