// =============================================================================
// CSV Comma Stripper - Main Entry Point
// =============================================================================
//
// This is the main entry point for the csvstrip CLI. It delegates to the
// Cobra commands in the cmd package.
//
// USAGE:
//   csvstrip strip [files...]    - Remove commas from the target column
//   csvstrip validate [files...] - Check headers without writing output
//   csvstrip version             - Display the application version
//
// ARCHITECTURE:
//   - cmd/                  : CLI command definitions (Cobra)
//   - internal/config       : YAML + environment configuration
//   - internal/logging      : slog setup, optional Seq sink
//   - internal/stripper     : column lookup, row transform, atomic file run
//   - internal/csvparser    : CSV row reader/writer
//   - internal/xlsxparser   : XLSX row reader/writer
//   - pkg/utils             : output naming, staged files, discovery, summaries
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/csvstrip/cmd"
)

func main() {
	cmd.Execute()
}
