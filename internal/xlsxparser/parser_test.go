package xlsxparser

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterThenReader(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, "Leads")
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"Name", "Description"}))
	require.NoError(t, w.Write([]string{"Acme", "Hello world"}))
	require.NoError(t, w.Write([]string{"Gamma"}))
	require.NoError(t, w.Flush())
	assert.NoError(t, w.Close())

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "Leads", r.SheetName())

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}

	assert.Equal(t, [][]string{
		{"Name", "Description"},
		{"Acme", "Hello world"},
		{"Gamma"},
	}, rows)
}

func TestNewWriter_DefaultSheet(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, "")
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"only"}))
	require.NoError(t, w.Flush())

	r, err := NewReader(&buf)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, DefaultSheet, r.SheetName())
}

func TestNewReader_NotAWorkbook(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("Name,Description\n")))
	assert.Error(t, err)
}
