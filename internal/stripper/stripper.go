// =============================================================================
// CSV Comma Stripper - Core Module
// =============================================================================
//
// This module removes comma characters from every cell of one named column
// while leaving the rest of the table untouched.
//
// PIPELINE (single pass, one row in memory at a time):
//   1. Read the header row and locate the target column by exact name
//   2. Write the header unchanged
//   3. For each data row: if the row reaches the target column and the cell
//      is non-empty, delete every ',' from that cell
//   4. Write the row, in input order
//
// ROW-SHAPE ANOMALIES:
//   Rows too short to reach the target column, and rows whose target cell is
//   empty, are passed through unchanged. This is policy, not an error. Each
//   anomaly is counted in Stats, logged at debug level, and reported to the
//   optional AnomalyHook.
//
// =============================================================================

package stripper

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ginjaninja78/csvstrip/internal/logging"
)

// =============================================================================
// ROW SOURCES AND SINKS
// =============================================================================

// RowReader yields rows in order and returns io.EOF after the last one.
type RowReader interface {
	Read() ([]string, error)
}

// RowWriter accepts rows in order. Flush is called once after the last row.
type RowWriter interface {
	Write(row []string) error
	Flush() error
}

// =============================================================================
// ANOMALIES
// =============================================================================

// AnomalyKind classifies a tolerated row-shape anomaly.
type AnomalyKind int

const (
	// ShortRow means the row ends before the target column.
	ShortRow AnomalyKind = iota + 1

	// EmptyCell means the target cell is the empty string.
	EmptyCell
)

// String returns the kind's log name.
func (k AnomalyKind) String() string {
	switch k {
	case ShortRow:
		return "short_row"
	case EmptyCell:
		return "empty_cell"
	default:
		return "unknown"
	}
}

// Anomaly describes one tolerated row.
type Anomaly struct {
	// Row is the 1-based row number in the input; the header is row 1.
	Row int

	Kind AnomalyKind

	// Width is the number of cells in the row.
	Width int
}

// AnomalyHook observes anomalies. It must not retain the row.
type AnomalyHook func(Anomaly)

// =============================================================================
// OPTIONS AND STATS
// =============================================================================

// Options configures a strip pass.
type Options struct {
	// Column is the exact header name of the target column.
	Column string

	// Hook, if set, is called for every row-shape anomaly.
	Hook AnomalyHook

	// Logger receives debug records; nil discards them.
	Logger *slog.Logger
}

// Stats counts what a strip pass did. Rows excludes the header.
type Stats struct {
	Rows          int
	Modified      int
	CommasRemoved int
	ShortRows     int
	EmptyCells    int
}

// =============================================================================
// CORE OPERATIONS
// =============================================================================

// LocateColumn returns the index of the first header cell equal to name.
// The comparison is exact: case-sensitive and without trimming.
func LocateColumn(header []string, name string) (int, error) {
	for i, cell := range header {
		if cell == name {
			return i, nil
		}
	}

	available := make([]string, len(header))
	copy(available, header)
	return -1, &ColumnNotFoundError{Column: name, Available: available}
}

// StripCommas deletes every comma in cell and reports how many were removed.
func StripCommas(cell string) (string, int) {
	n := strings.Count(cell, ",")
	if n == 0 {
		return cell, 0
	}
	return strings.ReplaceAll(cell, ",", ""), n
}

// TransformRow strips the cell at index in place. It returns the number of
// commas removed, or the anomaly that made it leave the row alone.
func TransformRow(row []string, index int) (removed int, anomaly AnomalyKind) {
	if len(row) <= index {
		return 0, ShortRow
	}
	if row[index] == "" {
		return 0, EmptyCell
	}

	row[index], removed = StripCommas(row[index])
	return removed, 0
}

// =============================================================================
// STRIPPER
// =============================================================================

// Stripper holds a header whose target column has been located.
type Stripper struct {
	header []string
	index  int
	opts   Options
	logger *slog.Logger
}

// Prepare reads the header from r and locates opts.Column in it. No rows
// beyond the header are consumed.
func Prepare(r RowReader, opts Options) (*Stripper, error) {
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index, err := LocateColumn(header, opts.Column)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Stripper{
		header: header,
		index:  index,
		opts:   opts,
		logger: logger,
	}, nil
}

// Header returns the header row as read.
func (s *Stripper) Header() []string {
	return s.header
}

// Index returns the zero-based position of the target column.
func (s *Stripper) Index() int {
	return s.index
}

// Run writes the header and every remaining row of r to w, then flushes w.
func (s *Stripper) Run(r RowReader, w RowWriter) (Stats, error) {
	var stats Stats

	if err := w.Write(s.header); err != nil {
		return stats, fmt.Errorf("failed to write header: %w", err)
	}

	rowNumber := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}
		rowNumber++
		stats.Rows++

		removed, anomaly := TransformRow(row, s.index)
		switch anomaly {
		case ShortRow:
			stats.ShortRows++
			s.report(Anomaly{Row: rowNumber, Kind: anomaly, Width: len(row)})
		case EmptyCell:
			stats.EmptyCells++
			s.report(Anomaly{Row: rowNumber, Kind: anomaly, Width: len(row)})
		}
		if removed > 0 {
			stats.Modified++
			stats.CommasRemoved += removed
		}

		if err := w.Write(row); err != nil {
			return stats, fmt.Errorf("failed to write row %d: %w", rowNumber, err)
		}
	}

	if err := w.Flush(); err != nil {
		return stats, err
	}

	return stats, nil
}

func (s *Stripper) report(a Anomaly) {
	s.logger.Debug("row passed through unchanged",
		"row", a.Row,
		"reason", a.Kind.String(),
		"cells", a.Width,
		"column_index", s.index,
	)
	if s.opts.Hook != nil {
		s.opts.Hook(a)
	}
}

// Strip copies r to w with commas removed from opts.Column. It fails with a
// *ColumnNotFoundError before writing anything if the column is missing.
func Strip(r RowReader, w RowWriter, opts Options) (Stats, error) {
	s, err := Prepare(r, opts)
	if err != nil {
		return Stats{}, err
	}
	return s.Run(r, w)
}
