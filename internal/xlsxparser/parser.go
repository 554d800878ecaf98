// =============================================================================
// CSV Comma Stripper - XLSX Parser Module
// =============================================================================
//
// Spreadsheet exports (for example from Clay) are sometimes delivered as
// .xlsx instead of .csv. This module lets the stripper treat the first sheet
// of a workbook as a table of string rows, and write a workbook back.
//
// READING:
//   The first sheet is streamed with excelize's row iterator. Cell values are
//   the formatted strings Excel would display. Trailing empty cells are not
//   returned, so such rows come back short.
//
// WRITING:
//   Rows are streamed through excelize's StreamWriter into a single sheet
//   named after the source sheet. Every cell is written as a string.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet excelize creates in a new workbook.
const DefaultSheet = "Sheet1"

// =============================================================================
// STREAMING READER
// =============================================================================

// Reader streams rows from the first sheet of a workbook.
type Reader struct {
	file      *excelize.File
	rows      *excelize.Rows
	sheetName string
	rowNumber int
}

// Open opens the workbook at filePath. The caller must Close the Reader.
func Open(filePath string) (*Reader, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return newReader(f)
}

// NewReader reads a workbook from src. The caller must Close the Reader.
func NewReader(src io.Reader) (*Reader, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return newReader(f)
}

func newReader(f *excelize.File) (*Reader, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		f.Close()
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.Rows(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	return &Reader{
		file:      f,
		rows:      rows,
		sheetName: sheetName,
	}, nil
}

// Read returns the next row, or io.EOF after the last row of the sheet.
func (r *Reader) Read() ([]string, error) {
	if !r.rows.Next() {
		if err := r.rows.Error(); err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", r.rowNumber+1, err)
		}
		return nil, io.EOF
	}

	cols, err := r.rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", r.rowNumber+1, err)
	}

	r.rowNumber++
	if cols == nil {
		cols = []string{}
	}
	return cols, nil
}

// SheetName returns the name of the sheet being read.
func (r *Reader) SheetName() string {
	return r.sheetName
}

// Close releases the row iterator and the workbook.
func (r *Reader) Close() error {
	rowsErr := r.rows.Close()
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("failed to close workbook: %w", err)
	}
	return rowsErr
}

// =============================================================================
// STREAMING WRITER
// =============================================================================

// Writer streams rows into a new single-sheet workbook. Nothing reaches the
// destination until Flush.
type Writer struct {
	dst       io.Writer
	file      *excelize.File
	stream    *excelize.StreamWriter
	rowNumber int
	closed    bool
}

// NewWriter creates a workbook with one sheet named sheetName that is
// written to dst on Flush.
func NewWriter(dst io.Writer, sheetName string) (*Writer, error) {
	f := excelize.NewFile()

	if sheetName == "" {
		sheetName = DefaultSheet
	}
	if sheetName != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet %q: %w", sheetName, err)
		}
	}

	stream, err := f.NewStreamWriter(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}

	return &Writer{dst: dst, file: f, stream: stream}, nil
}

// Write appends one row to the sheet.
func (w *Writer) Write(row []string) error {
	w.rowNumber++

	cell, err := excelize.CoordinatesToCellName(1, w.rowNumber)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", w.rowNumber, err)
	}

	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}

	if err := w.stream.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", w.rowNumber, err)
	}
	return nil
}

// Flush finishes the sheet and writes the workbook to the destination.
// It must be called exactly once.
func (w *Writer) Flush() error {
	defer w.Close()

	if err := w.stream.Flush(); err != nil {
		return fmt.Errorf("failed to finish sheet: %w", err)
	}
	if err := w.file.Write(w.dst); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Close releases the workbook without writing it. It is a no-op after Flush.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
