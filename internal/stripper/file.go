// =============================================================================
// CSV Comma Stripper - File Run
// =============================================================================
//
// This file runs the stripper against one input file and produces one output
// file, all or nothing.
//
// RUN STEPS:
//   1. Derive the output path and refuse it if it names the input file
//   2. Open the input (.csv, or .xlsx through excelize)
//   3. Read the header and locate the column; on failure nothing is created
//   4. Stream every row into a hidden staging file next to the output
//   5. Rename the staging file over the output path
//
// Any error after step 3 removes the staging file; a previous output at the
// target path is left as it was.
//
// =============================================================================

package stripper

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/csvstrip/internal/config"
	"github.com/ginjaninja78/csvstrip/internal/csvparser"
	"github.com/ginjaninja78/csvstrip/internal/logging"
	"github.com/ginjaninja78/csvstrip/internal/xlsxparser"
	"github.com/ginjaninja78/csvstrip/pkg/utils"
	"github.com/google/uuid"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// RunID identifies this file run in logs.
	RunID string

	// InputFile is the path of the file that was read.
	InputFile string

	// OutputFile is the path the output was (or would have been) written to.
	OutputFile string

	// Success indicates whether the output is complete and in place.
	Success bool

	// Error is nil on success.
	Error error

	// Stats counts rows, modified cells and anomalies.
	Stats Stats

	// Duration is the wall time of the run.
	Duration time.Duration
}

// RunOptions carries per-invocation settings that are not configuration.
type RunOptions struct {
	// DryRun performs the full pass but writes nothing.
	DryRun bool

	// Hook, if set, observes row-shape anomalies.
	Hook AnomalyHook

	// Logger receives progress records; nil discards them.
	Logger *slog.Logger
}

// =============================================================================
// SOURCES AND SINKS BY FILE TYPE
// =============================================================================

// source is a RowReader backed by an open file.
type source interface {
	RowReader
	Close() error
}

// sink is a RowWriter that may hold resources until Flush or Close.
type sink interface {
	RowWriter
	Close() error
}

// csvSink adapts csvparser.Writer, which holds nothing to release.
type csvSink struct {
	*csvparser.Writer
}

func (csvSink) Close() error { return nil }

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// openSource opens path as a row source chosen by its extension. For
// workbooks it also returns the sheet name.
func openSource(path string) (source, string, error) {
	if isXLSX(path) {
		r, err := xlsxparser.Open(path)
		if err != nil {
			return nil, "", err
		}
		return r, r.SheetName(), nil
	}

	r, err := csvparser.Open(path)
	if err != nil {
		return nil, "", err
	}
	return r, "", nil
}

// newSink returns a writer in the same format as path.
func newSink(dst io.Writer, path, sheet string, crlf bool) (sink, error) {
	if isXLSX(path) {
		w, err := xlsxparser.NewWriter(dst, sheet)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	return csvSink{csvparser.NewWriter(dst, crlf)}, nil
}

// =============================================================================
// FILE OPERATIONS
// =============================================================================

// RunFile strips cfg.ColumnName in inputPath and writes the derived output
// file. The returned Result always has InputFile and OutputFile set.
func RunFile(inputPath string, cfg *config.Config, opts RunOptions) Result {
	start := time.Now()
	result := Result{
		RunID:      uuid.NewString(),
		InputFile:  inputPath,
		OutputFile: utils.DeriveOutputPath(inputPath, cfg.Suffix(), cfg.OutputDir),
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("run_id", result.RunID, "input", inputPath)

	stats, err := runFile(inputPath, result.OutputFile, cfg, opts, logger)
	result.Stats = stats
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err
		logger.Error("file run failed", "error", err)
		return result
	}

	result.Success = true
	logger.Info("file run complete",
		"output", result.OutputFile,
		"rows", stats.Rows,
		"modified", stats.Modified,
		"commas_removed", stats.CommasRemoved,
		"short_rows", stats.ShortRows,
		"empty_cells", stats.EmptyCells,
		"dry_run", opts.DryRun,
		"duration", result.Duration,
	)
	return result
}

func runFile(inputPath, outputPath string, cfg *config.Config, opts RunOptions, logger *slog.Logger) (Stats, error) {
	if samePath(inputPath, outputPath) {
		return Stats{}, fmt.Errorf("%s: %w", outputPath, ErrSameAsInput)
	}

	src, sheet, err := openSource(inputPath)
	if err != nil {
		return Stats{}, err
	}
	defer src.Close()

	s, err := Prepare(src, Options{
		Column: cfg.ColumnName,
		Hook:   opts.Hook,
		Logger: logger,
	})
	if err != nil {
		return Stats{}, err
	}
	logger.Debug("located column", "column", cfg.ColumnName, "index", s.Index(), "columns", len(s.Header()))

	if opts.DryRun {
		w, err := newSink(io.Discard, outputPath, sheet, cfg.CRLF())
		if err != nil {
			return Stats{}, err
		}
		defer w.Close()
		return s.Run(src, w)
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return Stats{}, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	staged, err := utils.NewStagedFile(outputPath)
	if err != nil {
		return Stats{}, err
	}
	defer staged.Abort()

	w, err := newSink(staged, outputPath, sheet, cfg.CRLF())
	if err != nil {
		return Stats{}, err
	}
	defer w.Close()

	stats, err := s.Run(src, w)
	if err != nil {
		return stats, err
	}

	if err := staged.Commit(); err != nil {
		return stats, err
	}

	return stats, nil
}

// CheckFile opens inputPath, reads only its header, and returns the index of
// column and the header. Nothing is written.
func CheckFile(inputPath, column string) (int, []string, error) {
	src, _, err := openSource(inputPath)
	if err != nil {
		return -1, nil, err
	}
	defer src.Close()

	s, err := Prepare(src, Options{Column: column})
	if err != nil {
		return -1, nil, err
	}

	return s.Index(), s.Header(), nil
}

// samePath reports whether b names the same file as a, following symlinks
// and hard links when both exist.
func samePath(a, b string) bool {
	if infoA, err := os.Stat(a); err == nil {
		if infoB, err := os.Stat(b); err == nil {
			return os.SameFile(infoA, infoB)
		}
	}

	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
