package export

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVReader(t *testing.T) {
	input := "id,name\n1,O'Brien\n2,\"a, b\"\n"

	r, err := OpenCSV("-", strings.NewReader(input))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"id", "name"}, r.Headers())

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "O'Brien"}, row)

	row, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "a, b"}, row)
	assert.Equal(t, 3, r.Line())

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestCSVReaderErrors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := NewCSVReader(strings.NewReader(""), nil)
		assert.ErrorIs(t, err, ErrNoHeader)
	})

	t.Run("ragged row", func(t *testing.T) {
		r, err := NewCSVReader(strings.NewReader("a,b\n1\n"), nil)
		require.NoError(t, err)
		_, err = r.Next()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenCSV(filepath.Join(t.TempDir(), "absent.csv"), nil)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rt.csv")
	rows := [][]string{{"1", "line\nbreak"}, {"2", ""}}

	w, err := NewCSVWriter(CSVWriterConfig{Path: path, Headers: []string{"id", "note"}})
	require.NoError(t, err)
	require.NoError(t, w.WriteRows(rows))
	require.NoError(t, w.Close())

	r, err := OpenCSV(path, nil)
	require.NoError(t, err)
	defer r.Close()

	var got [][]string
	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, row)
	}
	assert.Equal(t, rows, got)
}
