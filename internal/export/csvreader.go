package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoHeader is returned for a CSV input with no header row.
var ErrNoHeader = errors.New("csv input has no header row")

// CSVReader reads a CSV file whose first row names the columns.
type CSVReader struct {
	reader  *csv.Reader
	closer  io.Closer
	headers []string
	line    int
}

// OpenCSV opens path ("-" reads stdin) and reads the header row.
func OpenCSV(path string, stdin io.Reader) (*CSVReader, error) {
	if path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		return NewCSVReader(stdin, nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	r, err := NewCSVReader(file, file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

// NewCSVReader reads the header row from r. closer, if non-nil, is closed
// by Close.
func NewCSVReader(r io.Reader, closer io.Closer) (*CSVReader, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	return &CSVReader{reader: cr, closer: closer, headers: headers, line: 1}, nil
}

// Headers returns the column names from the first row.
func (r *CSVReader) Headers() []string {
	return r.headers
}

// Next returns the next data row, or io.EOF after the last one. Rows must
// have as many fields as the header.
func (r *CSVReader) Next() ([]string, error) {
	record, err := r.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	r.line++
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line, err)
	}
	return record, nil
}

// Line returns the number of the last line read, counting the header.
func (r *CSVReader) Line() int {
	return r.line
}

// Close closes the underlying file, if any.
func (r *CSVReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
