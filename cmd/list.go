package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/killallgit/voicenotes/internal/models"
	"github.com/killallgit/voicenotes/internal/services/waveforms"
)

// noteView is the listing shape of a note
type noteView struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	URI            string    `json:"uri" yaml:"uri"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	DurationMillis int64     `json:"duration_ms" yaml:"duration_ms"`
	HasWaveform    bool      `json:"has_waveform" yaml:"has_waveform"`
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func toViews(list []models.VoiceNote) []noteView {
	views := make([]noteView, 0, len(list))
	for _, n := range list {
		views = append(views, noteView{
			ID:             n.ID,
			Name:           n.Name,
			URI:            n.URI,
			CreatedAt:      n.Created().UTC(),
			DurationMillis: n.DurationMillis,
			HasWaveform:    n.HasWaveform(),
		})
	}
	return views
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List voice notes, newest first",
		Long: `List stored voice notes, newest first.

An optional query keeps only notes whose name contains it (case-insensitive).

Example:
  voicenotes list
  voicenotes list groceries
  voicenotes list --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runList,
	}
	cmd.Flags().StringP("format", "f", "table", "output format (table, json, yaml)")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	return writeNotes(cmd.OutOrStdout(), format, a.notes.Search(query))
}

func writeNotes(out io.Writer, format string, list []models.VoiceNote) error {
	views := toViews(list)

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)

	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()

	case "table":
		if len(views) == 0 {
			fmt.Fprintln(out, "No recordings")
			return nil
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderRow(false).
			Headers("ID", "NAME", "DURATION", "CREATED").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return tableHeaderStyle
				}
				return tableCellStyle
			})
		for _, v := range views {
			t.Row(v.ID, v.Name, waveforms.FormatClock(v.DurationMillis), v.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		_, err := fmt.Fprintln(out, t.Render())
		return err

	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}
