package csvparser

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) [][]string {
	t.Helper()
	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestReader_Dialect(t *testing.T) {
	r := NewReader(strings.NewReader(
		"Name,Description\r\n" +
			"\"Acme, Inc.\",\"line one,\nline two\"\n" +
			"Gamma\n" +
			"  spaced , cells \n" +
			"bare\"quote,x\n"))

	rows := readAll(t, r)

	assert.Equal(t, [][]string{
		{"Name", "Description"},
		{"Acme, Inc.", "line one,\nline two"},
		{"Gamma"},
		{"  spaced ", " cells "},
		{"bare\"quote", "x"},
	}, rows)
	assert.Equal(t, 5, r.RowNumber())
	assert.NoError(t, r.Close())
}

func TestReader_Open(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, readAll(t, r))

	_, err = Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriter_LineEndings(t *testing.T) {
	var crlf, lf bytes.Buffer

	for _, tc := range []struct {
		buf  *bytes.Buffer
		crlf bool
	}{{&crlf, true}, {&lf, false}} {
		w := NewWriter(tc.buf, tc.crlf)
		require.NoError(t, w.Write([]string{"Name", "Description"}))
		require.NoError(t, w.Write([]string{"Acme, Inc.", "a\nb"}))
		require.NoError(t, w.Write([]string{"Gamma"}))
		require.NoError(t, w.Flush())
	}

	assert.Equal(t, "Name,Description\r\n\"Acme, Inc.\",\"a\nb\"\r\nGamma\r\n", crlf.String())
	assert.Equal(t, "Name,Description\n\"Acme, Inc.\",\"a\nb\"\nGamma\n", lf.String())
}

func TestReader_BlankLinesAreEmptyRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"between records", "a,b\n\n\r\nc,d\n", [][]string{{"a", "b"}, {}, {}, {"c", "d"}}},
		{"leading", "\na,b\n", [][]string{{}, {"a", "b"}}},
		{"trailing", "a,b\n\n", [][]string{{"a", "b"}, {}}},
		{"after multi-line cell", "a,\"x\ny\"\n\nb\n", [][]string{{"a", "x\ny"}, {}, {"b"}}},
		{"unterminated last line", "a\n\nb", [][]string{{"a"}, {}, {"b"}}},
		{"empty input", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.input))
			assert.Equal(t, tt.want, readAll(t, r))
			assert.Equal(t, len(tt.want), r.RowNumber())
		})
	}
}

func TestWriter_KeepsCellBytes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	rows := [][]string{
		{"a\rb", "line1\nline2", " lead", "say \"hi\""},
		{""},
		{},
		{"", ""},
	}
	for _, row := range rows {
		require.NoError(t, w.Write(row))
	}
	require.NoError(t, w.Flush())

	assert.Equal(t,
		"\"a\rb\",\"line1\nline2\", lead,\"say \"\"hi\"\"\"\r\n"+
			"\"\"\r\n"+
			"\r\n"+
			",\r\n",
		buf.String())

	got := readAll(t, NewReader(&buf))
	assert.Equal(t, rows, got)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWriter_FlushReportsError(t *testing.T) {
	w := NewWriter(failingWriter{}, true)
	require.NoError(t, w.Write([]string{"a"}))
	assert.ErrorIs(t, w.Flush(), io.ErrClosedPipe)
}
