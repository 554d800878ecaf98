// =============================================================================
// CSV Comma Stripper - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (csvstrip)
//   ├── stripCmd (csvstrip strip)
//   ├── validateCmd (csvstrip validate)
//   └── versionCmd (csvstrip version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads a .env file (if present) into the environment
//   2. Loads the YAML config and applies environment overrides
//   3. Sets up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ginjaninja78/csvstrip/internal/config"
	"github.com/ginjaninja78/csvstrip/internal/logging"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// envFile holds the path to an optional .env file.
var envFile string

// verbose forces debug logging.
var verbose bool

// appConfig is the configuration loaded before each command runs.
var appConfig *config.Config

// logger is the CLI logger; it writes to stderr.
var logger = logging.Discard()

// closeLog flushes any remote log sink.
var closeLog = func() {}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "csvstrip",
	Short: "CSV Comma Stripper - remove commas from one column of a CSV export",
	Long: `csvstrip reads a CSV file, deletes every comma from the cells of one
named column (default "Description"), and writes the result next to the
input as <name>_no-description-commas.csv. Every other cell, the header and
the row order are preserved.

The output appears atomically: if the column is missing or anything fails,
no output file is created and an existing one is left untouched.

Example Usage:
  csvstrip strip leads.csv                   # strip the Description column
  csvstrip strip --column Notes leads.csv    # strip a different column
  csvstrip strip --input-dir ./exports       # strip every CSV in a directory
  csvstrip validate leads.csv                # check the header only`,

	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	closeLog()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the configuration file (optional when left at the default)",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to a .env file with CSVSTRIP_* overrides (skipped if missing)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging, including rows passed through unchanged",
	)
}

// initConfig loads the environment and configuration and sets up logging.
func initConfig() error {
	if err := config.LoadEnv(envFile); err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	appConfig = cfg

	closeLog()
	logger, closeLog = logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.SeqURL, os.Stderr)
	slog.SetDefault(logger)

	logger.Debug("configuration loaded", "config", cfgFile, "column", cfg.ColumnName)
	return nil
}
