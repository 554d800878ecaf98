package stripper

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned when the input has no header row.
var ErrEmptyInput = errors.New("input has no header row")

// ErrSameAsInput is returned when the derived output path would overwrite
// the input file.
var ErrSameAsInput = errors.New("output path is the same as the input path")

// ColumnNotFoundError reports that the target column is missing from the
// header. Available lists every header cell found, in order.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

// Error implements the error interface.
func (e *ColumnNotFoundError) Error() string {
	quoted := make([]string, len(e.Available))
	for i, name := range e.Available {
		quoted[i] = fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("could not find a %q column in the CSV header; found columns: [%s]",
		e.Column, strings.Join(quoted, ", "))
}
