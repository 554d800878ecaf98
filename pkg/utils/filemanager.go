// =============================================================================
// CSV Comma Stripper - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the stripper:
//   - Output path derivation (<stem><suffix><ext>)
//   - Staged output files that appear atomically or not at all
//   - Input file discovery
//   - Processing summary generation
//
// STAGING STRATEGY:
//   Output is written to a hidden file in the destination directory and
//   renamed over the final path only after every row was written and synced.
//   A failed run removes the staging file, so the final path either holds a
//   complete output or whatever was there before the run.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// DeriveOutputPath inserts suffix between the stem and the extension of
// inputPath. When outputDir is non-empty the result is placed there instead
// of next to the input.
//
// EXAMPLE:
//
//	DeriveOutputPath("/leads/export.csv", "_no-description-commas", "")
//	-> "/leads/export_no-description-commas.csv"
func DeriveOutputPath(inputPath, suffix, outputDir string) string {
	dir, base := filepath.Split(inputPath)

	ext := filepath.Ext(base)
	if ext == base {
		// Dot-files such as ".export" have no extension.
		ext = ""
	}
	stem := strings.TrimSuffix(base, ext)

	if outputDir != "" {
		dir = outputDir
	}

	return filepath.Join(dir, stem+suffix+ext)
}

// IsDerivedOutput reports whether path already carries suffix, i.e. looks
// like the output of a previous run.
func IsDerivedOutput(path, suffix string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		ext = ""
	}
	return strings.HasSuffix(strings.TrimSuffix(base, ext), suffix)
}

// =============================================================================
// STAGED OUTPUT FILES
// =============================================================================

// StagedFile is a temporary file that becomes Target on Commit.
type StagedFile struct {
	*os.File

	// Target is the final path of the file.
	Target string

	done bool
}

// NewStagedFile creates a hidden staging file next to target. The target
// directory must exist.
func NewStagedFile(target string) (*StagedFile, error) {
	dir := filepath.Dir(target)
	name := fmt.Sprintf(".%s.%s.tmp", filepath.Base(target), uuid.NewString())

	file, err := os.OpenFile(filepath.Join(dir, name), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	return &StagedFile{File: file, Target: target}, nil
}

// Commit syncs and closes the staging file and renames it over Target,
// replacing any existing file.
func (s *StagedFile) Commit() error {
	if s.done {
		return fmt.Errorf("staging file for %s already finished", s.Target)
	}
	s.done = true

	if err := s.File.Sync(); err != nil {
		s.discard()
		return fmt.Errorf("failed to sync output: %w", err)
	}
	if err := s.File.Close(); err != nil {
		os.Remove(s.File.Name())
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(s.File.Name(), s.Target); err != nil {
		os.Remove(s.File.Name())
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}

// Abort closes and removes the staging file. Target is not touched. Abort
// after Commit is a no-op, so it can be deferred.
func (s *StagedFile) Abort() {
	if s.done {
		return
	}
	s.done = true
	s.discard()
}

func (s *StagedFile) discard() {
	s.File.Close()
	os.Remove(s.File.Name())
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles returns the files in inputDir matching pattern, sorted
// by name. Files that already carry skipSuffix are left out so that a rerun
// does not strip its own outputs.
func DiscoverInputFiles(inputDir, pattern, skipSuffix string) ([]string, error) {
	if pattern == "" {
		pattern = "*.csv"
	}

	files, err := filepath.Glob(filepath.Join(inputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}
		if skipSuffix != "" && IsDerivedOutput(file, skipSuffix) {
			continue
		}
		result = append(result, file)
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	StartTime       time.Time
	EndTime         time.Time
	Column          string
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile     string
	OutputFile    string
	Rows          int
	Modified      int
	CommasRemoved int
	ShortRows     int
	EmptyCells    int
	ProcessTime   time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a new file in outputDir and
// returns its path. The name carries the end time and a random tag, so runs
// finishing in the same second never share a file.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create summary directory: %w", err)
	}

	timestamp := summary.EndTime.Format("20060102_150405")
	name := fmt.Sprintf("processing_summary_%s_%s.txt", timestamp, uuid.NewString()[:8])
	summaryPath := filepath.Join(outputDir, name)

	file, err := os.OpenFile(summaryPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "CSV Comma Stripper - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Column:         %s\n\n"+
		"Statistics:\n"+
		"  Total Files:    %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.Column,
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:          %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Output:         %s\n", pf.OutputFile)
			fmt.Fprintf(writer, "  Rows:           %d\n", pf.Rows)
			fmt.Fprintf(writer, "  Cells Modified: %d\n", pf.Modified)
			fmt.Fprintf(writer, "  Commas Removed: %d\n", pf.CommasRemoved)
			fmt.Fprintf(writer, "  Short Rows:     %d\n", pf.ShortRows)
			fmt.Fprintf(writer, "  Empty Cells:    %d\n", pf.EmptyCells)
			fmt.Fprintf(writer, "  Process Time:   %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}
