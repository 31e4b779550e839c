package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/killallgit/voicenotes/internal/database"
	"github.com/killallgit/voicenotes/pkg/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy the note list between metadata backends",
		Long: `Copy every note from one metadata backend to another.

The destination list is replaced; the source is left untouched. Audio files
stay where they are. Afterwards set storage.backend to the destination.

Example:
  voicenotes migrate --from json --to sqlite
  voicenotes migrate --from sqlite --to json --dry-run`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}
	cmd.Flags().String("from", "json", "source backend (json, sqlite)")
	cmd.Flags().String("to", "sqlite", "destination backend (json, sqlite)")
	cmd.Flags().Bool("dry-run", false, "show what would be done without making changes")
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	from, to = strings.ToLower(from), strings.ToLower(to)
	for _, b := range []string{from, to} {
		if b != "json" && b != "sqlite" {
			return fmt.Errorf("cannot migrate %q: only json and sqlite are persistent", b)
		}
	}
	if from == to {
		return fmt.Errorf("source and destination are both %s", from)
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	src, srcDB, err := openRepository(cfg, from)
	if err != nil {
		return err
	}
	defer closeDB(srcDB)

	if err := src.EnsureSetup(ctx); err != nil {
		return err
	}
	list, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read %s notes: %w", from, err)
	}

	if dryRun {
		fmt.Fprintln(out, "Dry run mode - no changes will be made")
		fmt.Fprintf(out, "Would copy %d note(s) from %s to %s\n", len(list), from, to)
		return nil
	}

	dst, dstDB, err := openRepository(cfg, to)
	if err != nil {
		return err
	}
	defer closeDB(dstDB)

	if err := dst.EnsureSetup(ctx); err != nil {
		return err
	}
	if err := dst.Save(ctx, list); err != nil {
		return fmt.Errorf("failed to write %s notes: %w", to, err)
	}

	fmt.Fprintf(out, "Copied %d note(s) from %s to %s\n", len(list), from, to)
	if !strings.EqualFold(cfg.Storage.Backend, to) {
		fmt.Fprintf(out, "Set storage.backend to %q to use them\n", to)
	}
	return nil
}

func closeDB(db *database.DB) {
	if db != nil {
		_ = db.Close()
	}
}
