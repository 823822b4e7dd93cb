// Package cli holds the fitbridge command tree. The root command loads
// configuration, sets up logging, and builds the source format
// registry; subcommands receive them through package state the way a
// single-binary CLI keeps its wiring.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fitbridge/fitbridge/internal/config"
	"github.com/fitbridge/fitbridge/internal/logging"
	"github.com/fitbridge/fitbridge/internal/source"
	"github.com/fitbridge/fitbridge/internal/source/healthsync"
	"github.com/fitbridge/fitbridge/internal/source/takeout"
)

var (
	cfgFile   string
	verbosity int
	logFile   string

	cfg      *config.Config
	log      *slog.Logger
	registry *source.Registry
)

var rootCmd = &cobra.Command{
	Use:   "fitbridge",
	Short: "Convert Fitbit exports for OSCAR",
	Long: `fitbridge converts physiological data exported from the Fitbit
ecosystem (Google Takeout or Health Sync) into CSV files OSCAR can
import: pulse-oximetry session files and a sleep-session file.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().StringVarP(&logFile, "logfile", "l", "", "write logs to a file instead of stderr (requires -v)")

	rootCmd.PersistentPreRunE = setup
}

// setup wires configuration, logging, and the format registry before
// any subcommand runs. A duplicate format registration fails here,
// before any file is opened.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	switch {
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity >= 2:
		level = slog.LevelDebug
	}

	out := os.Stderr
	target := logFile
	if target == "" {
		target = cfg.Logging.File
	}
	if target != "" {
		if verbosity == 0 {
			return fmt.Errorf("--logfile requires a verbosity flag (-v or -vv)")
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = f
	}
	log = logging.NewWithWriter(out, level, cfg.Logging.Format)

	registry, err = source.NewRegistry(takeout.New(), healthsync.New())
	return err
}
