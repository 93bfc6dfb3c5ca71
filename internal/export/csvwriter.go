// Package export reads and writes the CSV files used by the load and dump
// commands.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrClosed is returned when writing to a closed CSVWriter.
var ErrClosed = errors.New("writer is closed")

// DefaultBufferSize is used when CSVWriterConfig.BufferSize is not positive.
const DefaultBufferSize = 64 * 1024

// CSVWriter streams rows to a CSV file through a buffer. Rows are written
// as they arrive so a dump never holds the full table in memory.
type CSVWriter struct {
	out      io.Writer
	closers  []io.Closer // closed in order; excludes caller-owned streams
	path     string
	buffer   *bufio.Writer
	writer   *csv.Writer
	mu       sync.Mutex
	rowCount int64
	closed   bool
}

// CSVWriterConfig holds configuration for creating a CSV writer
type CSVWriterConfig struct {
	// Destination file. "-" or empty writes to Stdout.
	Path string

	// Stream used for "-". Defaults to os.Stdout.
	Stdout io.Writer

	// Column headers, written first when non-empty
	Headers []string

	// Buffer size in bytes (default: 64KB)
	BufferSize int

	// Pipe output through xz. ".xz" is appended to Path if missing.
	Compress bool

	// XZ compression preset 0-9 (default: 6)
	XZPreset int
}

// NewCSVWriter opens the destination and writes the header row.
// Parent directories of Path are created as needed.
func NewCSVWriter(cfg CSVWriterConfig) (*CSVWriter, error) {
	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	path := cfg.Path
	if cfg.Compress && path != "" && path != "-" && !strings.HasSuffix(path, ".xz") {
		path += ".xz"
	}
	w := &CSVWriter{path: path}

	if path == "" || path == "-" {
		w.out = cfg.Stdout
		if w.out == nil {
			w.out = os.Stdout
		}
		w.path = "-"
	} else {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create file %s: %w", path, err)
		}
		w.out = file
		w.closers = append(w.closers, file)
	}

	if cfg.Compress {
		xz, err := newXZWriter(w.out, cfg.XZPreset)
		if err != nil {
			w.closeUnderlying()
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		w.out = xz
		// xz must finish before its destination file closes
		w.closers = append([]io.Closer{xz}, w.closers...)
	}

	w.buffer = bufio.NewWriterSize(w.out, bufSize)
	w.writer = csv.NewWriter(w.buffer)

	if len(cfg.Headers) > 0 {
		if err := w.writer.Write(cfg.Headers); err != nil {
			w.closeUnderlying()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return w, nil
}

// WriteRow writes a single row.
// This method is thread-safe.
func (w *CSVWriter) WriteRow(row []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	if err := w.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.rowCount++

	return nil
}

// WriteRows writes rows in order and stops at the first failure.
func (w *CSVWriter) WriteRows(rows [][]string) error {
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush forces buffered rows out to the destination.
func (w *CSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	return w.flush()
}

func (w *CSVWriter) flush() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("csv flush error: %w", err)
	}
	if err := w.buffer.Flush(); err != nil {
		return fmt.Errorf("buffer flush error: %w", err)
	}
	return nil
}

// Close flushes remaining data, waits for xz when compressing, and closes
// the file. Stdout is flushed but left open. Closing twice is a no-op.
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.flush(); err != nil {
		w.closeUnderlying()
		return err
	}
	return w.closeUnderlying()
}

func (w *CSVWriter) closeUnderlying() error {
	var errs []error
	for _, c := range w.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RowCount returns the number of data rows written (excludes header).
func (w *CSVWriter) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// Path returns the output file path (with any ".xz" suffix), or "-" for
// stdout.
func (w *CSVWriter) Path() string {
	return w.path
}
