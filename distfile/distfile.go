// Package distfile reads and writes reference distance files.
//
// A distance file is a flat sequence of 8-byte little-endian IEEE-754
// float64 values, one per generated pair, with no header or length prefix.
// The value count is the file size divided by ValueSize.
package distfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ValueSize is the encoded size of one distance.
const ValueSize = 8

// FormatError reports a malformed distance file.
type FormatError struct {
	Reason string
	Offset int64
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("distfile: %s at offset %d", e.Reason, e.Offset)
}

// Count returns the number of values in a file of the given size.
func Count(size int64) (int, error) {
	if size < 0 || size%ValueSize != 0 {
		return 0, &FormatError{Reason: fmt.Sprintf("size %d is not a multiple of %d", size, ValueSize), Offset: size - size%ValueSize}
	}
	return int(size / ValueSize), nil
}

// ============================================================
// Writer
// ============================================================

// Writer writes distances to an io.Writer.
type Writer struct {
	w     *bufio.Writer
	buf   [ValueSize]byte
	count int
}

// NewWriter creates a new distance writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteDistance appends one distance.
func (w *Writer) WriteDistance(d float64) error {
	binary.LittleEndian.PutUint64(w.buf[:], math.Float64bits(d))
	if _, err := w.w.Write(w.buf[:]); err != nil {
		return fmt.Errorf("write distance: %w", err)
	}
	w.count++
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Count returns the number of distances written.
func (w *Writer) Count() int {
	return w.count
}

// ============================================================
// Reader
// ============================================================

// Reader reads distances from an io.Reader.
type Reader struct {
	r        *bufio.Reader
	buf      [ValueSize]byte
	offset   int64
	read     int
	maxCount int
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxCount limits how many values Next returns before failing
// (default: unlimited).
func WithMaxCount(max int) ReaderOption {
	return func(r *Reader) {
		r.maxCount = max
	}
}

// NewReader creates a new distance reader.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{r: bufio.NewReader(r)}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Next reads and returns the next distance.
// Returns io.EOF when no more values are available.
func (r *Reader) Next() (float64, error) {
	n, err := io.ReadFull(r.r, r.buf[:])
	switch {
	case err == io.EOF:
		return 0, io.EOF
	case err == io.ErrUnexpectedEOF:
		return 0, &FormatError{Reason: fmt.Sprintf("truncated value (%d of %d bytes)", n, ValueSize), Offset: r.offset}
	case err != nil:
		return 0, fmt.Errorf("read distance: %w", err)
	}
	if r.maxCount > 0 && r.read >= r.maxCount {
		return 0, &FormatError{Reason: fmt.Sprintf("more than %d values", r.maxCount), Offset: r.offset}
	}

	r.offset += ValueSize
	r.read++
	return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[:])), nil
}

// ReadAll reads every distance from r.
func ReadAll(r io.Reader, opts ...ReaderOption) ([]float64, error) {
	reader := NewReader(r, opts...)
	var out []float64
	for {
		d, err := reader.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, d)
	}
}
