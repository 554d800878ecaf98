package stripper

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// tableReader serves rows from memory.
type tableReader struct {
	rows [][]string
	pos  int
	err  error
}

func (r *tableReader) Read() ([]string, error) {
	if r.pos >= len(r.rows) {
		if r.err != nil {
			return nil, r.err
		}
		return nil, io.EOF
	}
	row := make([]string, len(r.rows[r.pos]))
	copy(row, r.rows[r.pos])
	r.pos++
	return row, nil
}

// tableWriter collects rows in memory.
type tableWriter struct {
	rows    [][]string
	flushed int
	failAt  int
}

func (w *tableWriter) Write(row []string) error {
	if w.failAt > 0 && len(w.rows)+1 == w.failAt {
		return errors.New("disk full")
	}
	w.rows = append(w.rows, row)
	return nil
}

func (w *tableWriter) Flush() error {
	w.flushed++
	return nil
}

func strip(t *testing.T, rows [][]string, column string) ([][]string, Stats) {
	t.Helper()
	w := &tableWriter{}
	stats, err := Strip(&tableReader{rows: rows}, w, Options{Column: column})
	require.NoError(t, err)
	assert.Equal(t, 1, w.flushed)
	return w.rows, stats
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestStrip_RemovesCommasFromTargetColumn(t *testing.T) {
	out, stats := strip(t, [][]string{
		{"Name", "Description"},
		{"Acme", "Hello, world, today"},
		{"Beta", ""},
	}, "Description")

	assert.Equal(t, [][]string{
		{"Name", "Description"},
		{"Acme", "Hello world today"},
		{"Beta", ""},
	}, out)
	assert.Equal(t, Stats{Rows: 2, Modified: 1, CommasRemoved: 2, EmptyCells: 1}, stats)
}

func TestStrip_ShortRowPassesThrough(t *testing.T) {
	out, stats := strip(t, [][]string{
		{"Name", "Description"},
		{"Gamma"},
	}, "Description")

	assert.Equal(t, [][]string{
		{"Name", "Description"},
		{"Gamma"},
	}, out)
	assert.Equal(t, 1, stats.ShortRows)
	assert.Equal(t, 0, stats.Modified)
}

func TestStrip_LeavesOtherColumnsAlone(t *testing.T) {
	in := [][]string{
		{"Company", "Description", "Location"},
		{"Acme, Inc.", "Tools, parts", "Austin, TX"},
		{" padded ", "a,b,,c", "x,y"},
		{"", ",", ""},
	}
	out, _ := strip(t, in, "Description")

	require.Len(t, out, len(in))
	assert.Equal(t, in[0], out[0])
	for i := 1; i < len(in); i++ {
		for j := range in[i] {
			if j == 1 {
				assert.Equal(t, strings.ReplaceAll(in[i][j], ",", ""), out[i][j])
				assert.NotContains(t, out[i][j], ",")
				continue
			}
			assert.Equal(t, in[i][j], out[i][j], "row %d col %d", i, j)
		}
	}
}

func TestStrip_LongerRowsKeepExtraCells(t *testing.T) {
	out, _ := strip(t, [][]string{
		{"Description"},
		{"one, two", "extra, cell", "more"},
	}, "Description")

	assert.Equal(t, []string{"one two", "extra, cell", "more"}, out[1])
}

func TestStrip_UsesFirstMatchingHeader(t *testing.T) {
	out, _ := strip(t, [][]string{
		{"Description", "Description"},
		{"a,b", "c,d"},
	}, "Description")

	assert.Equal(t, []string{"ab", "c,d"}, out[1])
}

func TestStrip_HeaderOnly(t *testing.T) {
	out, stats := strip(t, [][]string{{"Name", "Description"}}, "Description")

	assert.Equal(t, [][]string{{"Name", "Description"}}, out)
	assert.Equal(t, Stats{}, stats)
}

func TestStrip_IsIdempotent(t *testing.T) {
	in := [][]string{
		{"Name", "Description"},
		{"Acme", "Hello, world"},
		{"Gamma"},
		{"Beta", ""},
	}
	first, _ := strip(t, in, "Description")
	second, stats := strip(t, first, "Description")

	assert.Equal(t, first, second)
	assert.Equal(t, 0, stats.CommasRemoved)
}

// =============================================================================
// FAILURES
// =============================================================================

func TestStrip_MissingColumnWritesNothing(t *testing.T) {
	w := &tableWriter{}
	_, err := Strip(&tableReader{rows: [][]string{
		{"Name", "description", " Description"},
		{"Acme", "a,b", "c,d"},
	}}, w, Options{Column: "Description"})

	var notFound *ColumnNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Description", notFound.Column)
	assert.Equal(t, []string{"Name", "description", " Description"}, notFound.Available)
	assert.Contains(t, err.Error(), `"Name", "description", " Description"`)
	assert.Empty(t, w.rows)
	assert.Zero(t, w.flushed)
}

func TestStrip_EmptyInput(t *testing.T) {
	_, err := Strip(&tableReader{}, &tableWriter{}, Options{Column: "Description"})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestStrip_ReadErrorStopsRun(t *testing.T) {
	boom := errors.New("bad quote")
	w := &tableWriter{}
	_, err := Strip(&tableReader{
		rows: [][]string{{"Description"}, {"a,b"}},
		err:  boom,
	}, w, Options{Column: "Description"})

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, w.flushed)
}

func TestStrip_WriteErrorStopsRun(t *testing.T) {
	w := &tableWriter{failAt: 2}
	_, err := Strip(&tableReader{rows: [][]string{{"Description"}, {"a,b"}}}, w, Options{Column: "Description"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

// =============================================================================
// ANOMALY HOOK
// =============================================================================

func TestStrip_ReportsAnomalies(t *testing.T) {
	var seen []Anomaly
	w := &tableWriter{}
	stats, err := Strip(&tableReader{rows: [][]string{
		{"Name", "Description"},
		{"Acme", "x,y"},
		{"Gamma"},
		{"Beta", ""},
	}}, w, Options{
		Column: "Description",
		Hook:   func(a Anomaly) { seen = append(seen, a) },
	})

	require.NoError(t, err)
	assert.Equal(t, []Anomaly{
		{Row: 3, Kind: ShortRow, Width: 1},
		{Row: 4, Kind: EmptyCell, Width: 2},
	}, seen)
	assert.Equal(t, 1, stats.ShortRows)
	assert.Equal(t, 1, stats.EmptyCells)
	assert.Equal(t, "short_row", ShortRow.String())
	assert.Equal(t, "empty_cell", EmptyCell.String())
}

// =============================================================================
// HELPERS
// =============================================================================

func TestLocateColumn(t *testing.T) {
	idx, err := LocateColumn([]string{"A", "B", "Description"}, "Description")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = LocateColumn([]string{"DESCRIPTION"}, "Description")
	assert.Error(t, err)
}

func TestStripCommas(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		removed int
	}{
		{"", "", 0},
		{"plain", "plain", 0},
		{",,,", "", 3},
		{"a, b ,c", "a b c", 2},
		{"café, naïve", "café naïve", 1},
	}
	for _, tt := range tests {
		got, n := StripCommas(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, tt.removed, n, "input %q", tt.in)
	}
}
