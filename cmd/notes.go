package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name...>",
		Short: "Rename a voice note",
		Long: `Rename a voice note. The name is trimmed; a blank name keeps the old one.

Example:
  voicenotes rename 1718035200000 Shopping list`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			id, name := args[0], strings.Join(args[1:], " ")
			if err := a.notes.Rename(cmd.Context(), id, name); err != nil {
				return err
			}
			note, err := a.notes.Get(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", id, note.Name)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a voice note and its audio file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			id := args[0]
			if _, err := a.notes.Get(id); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No note with id %s\n", id)
				return nil
			}
			if err := a.notes.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}
