// =============================================================================
// CSV Comma Stripper - CSV Parser Module
// =============================================================================
//
// This module reads and writes the comma-delimited files the stripper works
// on. Rows are streamed one at a time; a file is never loaded whole.
//
// DIALECT:
//   - Delimiter is always ',' (no configurable delimiters)
//   - Standard double-quote quoting, embedded newlines allowed
//   - Rows may have any number of fields (short rows are legal input)
//   - Cells are returned byte-for-byte; no whitespace trimming
//   - A blank physical line is a row with no cells
//   - Output uses minimal quoting, \r\n record terminators by default
//
// KNOWN NORMALISATION:
//   encoding/csv folds a \r\n inside a quoted field to \n. Every other byte
//   of a cell, including a bare \r, is kept and written back unchanged.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// =============================================================================
// STREAMING READER
// =============================================================================

// Reader streams rows from a CSV source.
//
// USAGE:
//
//	r, err := csvparser.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for {
//	    row, err := r.Read()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
type Reader struct {
	file      *os.File
	lines     *lineCounter
	reader    *csv.Reader
	rowNumber int

	// lastLine is the physical line on which the previous record ended.
	lastLine int

	// blanks counts blank lines still to be returned before pending.
	blanks  int
	pending []string
	eof     bool
}

// NewReader wraps src in a Reader configured for the tool's dialect.
func NewReader(src io.Reader) *Reader {
	lines := &lineCounter{r: src}
	reader := csv.NewReader(bufio.NewReader(lines))
	configureReader(reader)
	return &Reader{lines: lines, reader: reader}
}

// Open opens filePath for streaming. The caller must Close the Reader.
func Open(filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := NewReader(file)
	r.file = file
	return r, nil
}

// configureReader applies the dialect settings.
func configureReader(reader *csv.Reader) {
	reader.Comma = ','

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// A bare quote inside an unquoted field is kept literally.
	reader.LazyQuotes = true

	// Cells must come back unchanged.
	reader.TrimLeadingSpace = false
	reader.ReuseRecord = false
}

// Read returns the next row, or io.EOF when the input is exhausted. A blank
// line comes back as an empty, non-nil row.
func (r *Reader) Read() ([]string, error) {
	for {
		if r.blanks > 0 {
			r.blanks--
			r.rowNumber++
			return []string{}, nil
		}
		if r.pending != nil {
			row := r.pending
			r.pending = nil
			r.rowNumber++
			return row, nil
		}
		if r.eof {
			return nil, io.EOF
		}

		row, err := r.reader.Read()
		if err == io.EOF {
			// encoding/csv skips blank lines, including trailing ones.
			r.eof = true
			r.blanks = max(r.lines.total()-r.lastLine, 0)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", r.rowNumber+1, err)
		}

		first, _ := r.reader.FieldPos(0)
		last := len(row) - 1
		end, _ := r.reader.FieldPos(last)
		end += strings.Count(row[last], "\n")

		r.blanks = max(first-r.lastLine-1, 0)
		r.lastLine = end
		r.pending = row
	}
}

// RowNumber returns the number of rows read so far, header included.
func (r *Reader) RowNumber() int {
	return r.rowNumber
}

// Close closes the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

// lineCounter counts the physical lines read through it.
type lineCounter struct {
	r        io.Reader
	size     int64
	newlines int
	last     byte
}

func (c *lineCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.size += int64(n)
		c.newlines += bytes.Count(p[:n], []byte{'\n'})
		c.last = p[n-1]
	}
	return n, err
}

// total returns the number of lines seen; an unterminated last line counts.
func (c *lineCounter) total() int {
	if c.size > 0 && c.last != '\n' {
		return c.newlines + 1
	}
	return c.newlines
}

// =============================================================================
// WRITER
// =============================================================================

// Writer writes rows with minimal quoting. Cell bytes are copied verbatim;
// only the record terminator depends on useCRLF.
type Writer struct {
	w          *bufio.Writer
	terminator string
	err        error
}

// NewWriter returns a Writer on dst. useCRLF selects \r\n record terminators.
func NewWriter(dst io.Writer, useCRLF bool) *Writer {
	terminator := "\n"
	if useCRLF {
		terminator = "\r\n"
	}
	return &Writer{w: bufio.NewWriter(dst), terminator: terminator}
}

// Write buffers one row. An empty row is written as a blank line, and a row
// holding a single empty cell as "" so it survives a re-read.
func (w *Writer) Write(row []string) error {
	if w.err != nil {
		return w.err
	}

	if len(row) == 1 && row[0] == "" {
		w.writeString(`""`)
	} else {
		for i, field := range row {
			if i > 0 {
				w.writeString(",")
			}
			if fieldNeedsQuotes(field) {
				w.writeString(`"`)
				w.writeString(strings.ReplaceAll(field, `"`, `""`))
				w.writeString(`"`)
			} else {
				w.writeString(field)
			}
		}
	}
	w.writeString(w.terminator)

	if w.err != nil {
		return fmt.Errorf("failed to write row: %w", w.err)
	}
	return nil
}

func (w *Writer) writeString(s string) {
	if w.err == nil {
		_, w.err = w.w.WriteString(s)
	}
}

// Flush writes buffered rows to the destination and reports any write error.
func (w *Writer) Flush() error {
	if w.err == nil {
		w.err = w.w.Flush()
	}
	if w.err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", w.err)
	}
	return nil
}

// fieldNeedsQuotes reports whether field must be quoted to read back as the
// same cell.
func fieldNeedsQuotes(field string) bool {
	return strings.ContainsAny(field, ",\"\r\n")
}
