// =============================================================================
// CSV Comma Stripper - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks that each input's
// header contains the target column without writing anything.
//
// COMMAND USAGE:
//   csvstrip validate [files...] [--column NAME] [--input-dir DIR]
//
// OUTPUT:
//   ✓ leads.csv: column "Description" at index 3 of 12
//   ✗ other.csv: could not find a "Description" column ...
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ginjaninja78/csvstrip/internal/config"
	"github.com/ginjaninja78/csvstrip/internal/stripper"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check that the target column exists, without writing output",
	Long: `Validate reads only the header row of each input and reports where the
target column is. A missing column is reported with the full list of columns
found, and the command exits non-zero.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := effectiveConfig(appConfig)
		return runValidate(cmd.OutOrStdout(), cfg, args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&columnName, "column", "", "Header of the column to look for (default \"Description\")")
	validateCmd.Flags().StringVar(&inputDir, "input-dir", "", "Check every file matching file_pattern in this directory")
}

// runValidate checks every resolved input and returns an error if any check
// failed.
func runValidate(out io.Writer, cfg *config.Config, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	inputFiles, err := resolveInputs(cfg, args)
	if err != nil {
		return err
	}

	var failed int
	var lastErr error
	for _, file := range inputFiles {
		index, header, err := stripper.CheckFile(file, cfg.ColumnName)
		if err != nil {
			failed++
			lastErr = err
			fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(file), err)
			continue
		}
		fmt.Fprintf(out, "  ✓ %s: column %q at index %d of %d\n",
			filepath.Base(file), cfg.ColumnName, index, len(header))
	}

	switch {
	case failed == 0:
		return nil
	case len(inputFiles) == 1:
		return lastErr
	default:
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(inputFiles))
	}
}
