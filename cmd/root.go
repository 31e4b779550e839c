package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/killallgit/voicenotes/pkg/config"
)

// Command annotations
const (
	skipConfig = "skip-config" // runs without loading configuration
	logToFile  = "log-to-file" // owns the terminal; logs default to a file
)

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	var logCloser io.Closer

	rootCmd := &cobra.Command{
		Use:   "voicenotes",
		Short: "Record, browse and play voice notes",
		Long: `Voice Notes - a local voice memo recorder

Records short audio notes from the microphone, stores them next to a small
metadata document and plays them back with a waveform that follows playback.

Features:
  • Recording with pause/resume and live level metering
  • Notes list with search, rename and delete
  • Playback with seek and speed control
  • JSON or SQLite metadata storage
  • Interactive terminal UI`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			closer, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logCloser = closer
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser.Close()
				logCloser = nil
			}
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.voicenotes/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(
		newRecordCmd(),
		newListCmd(),
		newRenameCmd(),
		newDeleteCmd(),
		newPlayCmd(),
		newUICmd(),
		newDoctorCmd(),
		newMigrateCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig initializes configuration, applies flag overrides and sets up
// logging
func loadConfig(cmd *cobra.Command) (io.Closer, error) {
	configFile, _ := cmd.Flags().GetString("config")

	config.Reset()
	if err := config.Init(configFile); err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}

	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		config.Set("logging.level", f.Value.String())
	}
	if f := cmd.Flags().Lookup("log-file"); f != nil && f.Changed {
		config.Set("logging.file", f.Value.String())
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cmd.Annotations[logToFile] == "true" && cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(config.HomeDir(), "voicenotes.log")
	}
	return setupLogging(cfg.Logging, cmd.ErrOrStderr())
}
