// =============================================================================
// CSV Comma Stripper - Strip Command
// =============================================================================
//
// This file defines the 'strip' command, which removes commas from the
// target column of one or more files.
//
// COMMAND USAGE:
//   csvstrip strip [files...] [flags]
//
// FLAGS:
//   --column      : Header of the column to strip (default "Description")
//   --suffix      : Output suffix (default "_no-<column>-commas")
//   --output-dir  : Write outputs here instead of next to each input
//   --input-dir   : Process every file matching file_pattern in a directory
//   --summary-dir : Write a processing summary to this directory
//   --dry-run     : Run the full pass without writing any file
//
// INPUT RESOLUTION (first non-empty wins):
//   1. Paths given as arguments
//   2. --input-dir (or input_dir in the config)
//   3. input_path in the config
//
// PROCESSING:
//   Each file is stripped on its own, single-threaded. Several files are
//   processed concurrently, bounded by max_concurrency. A failure in one file
//   does not stop the others, but makes the command exit non-zero.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/ginjaninja78/csvstrip/internal/config"
	"github.com/ginjaninja78/csvstrip/internal/stripper"
	"github.com/ginjaninja78/csvstrip/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// columnName overrides column_name.
var columnName string

// outputSuffix overrides output_suffix.
var outputSuffix string

// outputDir overrides output_dir.
var outputDir string

// inputDir overrides input_dir.
var inputDir string

// summaryDir overrides summary_dir.
var summaryDir string

// dryRun runs without writing output files.
var dryRun bool

// =============================================================================
// STRIP COMMAND DEFINITION
// =============================================================================

var stripCmd = &cobra.Command{
	Use:   "strip [files...]",
	Short: "Remove commas from one column and write a new file",
	Long: `The strip command reads each input file, locates the target column by
exact header name, deletes every comma from that column's cells and writes
<stem><suffix><ext> next to the input (or into --output-dir).

Rows too short to reach the column and rows with an empty cell in it are
written unchanged; run with --verbose to see them.

If the column is missing the command fails, lists the columns it found,
and writes nothing for that file.

.xlsx inputs are read from the first sheet and written back as a new
single-sheet workbook in which every cell is text, as displayed in the
input. Number and date types, formulas and styles are not carried over.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := effectiveConfig(appConfig)
		return runStrip(cmd.OutOrStdout(), cfg, args)
	},
}

func init() {
	rootCmd.AddCommand(stripCmd)

	stripCmd.Flags().StringVar(&columnName, "column", "", "Header of the column to strip (default \"Description\")")
	stripCmd.Flags().StringVar(&outputSuffix, "suffix", "", "Suffix inserted before the output file's extension")
	stripCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for output files (default: next to each input)")
	stripCmd.Flags().StringVar(&inputDir, "input-dir", "", "Process every file matching file_pattern in this directory")
	stripCmd.Flags().StringVar(&summaryDir, "summary-dir", "", "Write a processing summary to this directory")
	stripCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the full pass without writing any file")
}

// effectiveConfig returns a copy of base with command-line overrides applied.
func effectiveConfig(base *config.Config) *config.Config {
	cfg := &config.Config{}
	if base != nil {
		*cfg = *base
	}
	config.ApplyDefaults(cfg)

	if columnName != "" {
		cfg.ColumnName = columnName
	}
	if outputSuffix != "" {
		cfg.OutputSuffix = outputSuffix
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	if summaryDir != "" {
		cfg.SummaryDir = summaryDir
	}

	return cfg
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runStrip processes every resolved input and prints a per-file line and a
// summary to out.
func runStrip(out io.Writer, cfg *config.Config, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	startTime := time.Now()

	inputFiles, err := resolveInputs(cfg, args)
	if err != nil {
		return err
	}
	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No input files found.")
		return nil
	}

	logger.Info("stripping commas",
		"column", cfg.ColumnName,
		"files", len(inputFiles),
		"dry_run", dryRun,
	)

	results := processFiles(cfg, inputFiles)

	var failed int
	for _, result := range results {
		if result.Success {
			fmt.Fprintf(out, "  ✓ %s -> %s (%d rows, %d cells modified)\n",
				filepath.Base(result.InputFile),
				result.OutputFile,
				result.Stats.Rows,
				result.Stats.Modified,
			)
		} else {
			failed++
			fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(result.InputFile), result.Error)
		}
	}

	endTime := time.Now()
	fmt.Fprintf(out, "\nFiles: %d  Successful: %d  Failed: %d  Time: %s\n",
		len(inputFiles), len(inputFiles)-failed, failed, endTime.Sub(startTime).Round(time.Millisecond))

	if cfg.SummaryDir != "" && !dryRun {
		path, err := utils.WriteSummaryLog(buildSummary(cfg, results, startTime, endTime), cfg.SummaryDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Summary written to %s\n", path)
	}

	if failed == 0 {
		return nil
	}
	if len(results) == 1 {
		return results[0].Error
	}
	return fmt.Errorf("%d of %d file(s) failed", failed, len(results))
}

// processFiles runs every file, at most cfg.MaxConcurrency at a time, and
// returns results in input order.
func processFiles(cfg *config.Config, inputFiles []string) []stripper.Result {
	results := make([]stripper.Result, len(inputFiles))
	sem := make(chan struct{}, cfg.MaxConcurrency)

	var wg sync.WaitGroup
	for i, file := range inputFiles {
		wg.Add(1)

		go func(i int, filePath string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = stripper.RunFile(filePath, cfg, stripper.RunOptions{
				DryRun: dryRun,
				Logger: logger,
			})
		}(i, file)
	}
	wg.Wait()

	return results
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resolveInputs picks the files to process: args, then the input directory,
// then the configured input path.
func resolveInputs(cfg *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	if cfg.InputDir != "" {
		files, err := utils.DiscoverInputFiles(cfg.InputDir, cfg.FilePattern, cfg.Suffix())
		if err != nil {
			return nil, fmt.Errorf("failed to discover input files: %w", err)
		}
		return files, nil
	}

	if cfg.InputPath != "" {
		return []string{cfg.InputPath}, nil
	}

	return nil, fmt.Errorf("no input: pass file paths, use --input-dir, or set input_path in the config")
}

func buildSummary(cfg *config.Config, results []stripper.Result, start, end time.Time) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		StartTime:  start,
		EndTime:    end,
		Column:     cfg.ColumnName,
		TotalFiles: len(results),
	}

	for _, r := range results {
		if !r.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.InputFile,
				ErrorMessage: r.Error.Error(),
			})
			continue
		}

		summary.SuccessfulFiles++
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:     r.InputFile,
			OutputFile:    r.OutputFile,
			Rows:          r.Stats.Rows,
			Modified:      r.Stats.Modified,
			CommasRemoved: r.Stats.CommasRemoved,
			ShortRows:     r.Stats.ShortRows,
			EmptyCells:    r.Stats.EmptyCells,
			ProcessTime:   r.Duration,
		})
	}

	return summary
}
