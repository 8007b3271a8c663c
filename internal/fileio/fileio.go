// Package fileio reads and writes input files through afero, transparently
// handling gzip and zstd compression.
package fileio

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Compression names a file compression format.
type Compression string

const (
	None Compression = "none"
	Gzip Compression = "gzip"
	Zstd Compression = "zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Compressions lists the supported formats, for flag help.
var Compressions = []string{string(None), string(Gzip), string(Zstd)}

// ParseCompression parses a compression name. The empty string means None.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", None:
		return None, nil
	case Gzip, Zstd:
		return Compression(s), nil
	}
	return None, errors.Errorf("unknown compression %q", s)
}

// Ext returns the file name suffix for c, including the dot.
func (c Compression) Ext() string {
	switch c {
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	}
	return ""
}

// Detect identifies the compression of data from its magic bytes.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd
	}
	return None
}

// ReadFile reads the whole file at path, decompressing it if it starts with
// a gzip or zstd header.
func ReadFile(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	out, err := Decompress(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress %s", path)
	}
	return out, nil
}

// MaxDecompressedSize bounds the decoded size of a compressed input.
const MaxDecompressedSize = 16 << 30

// ErrTooLarge is returned when a compressed input decodes past the limit.
var ErrTooLarge = errors.New("decompressed size exceeds limit")

// Decompress returns data decoded according to its detected compression.
// Uncompressed data is returned as is.
func Decompress(data []byte) ([]byte, error) {
	return DecompressLimit(data, MaxDecompressedSize)
}

// DecompressLimit is Decompress with an explicit bound on the decoded size.
func DecompressLimit(data []byte, limit int64) ([]byte, error) {
	switch Detect(data) {
	case Gzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "gzip header")
		}
		defer zr.Close()
		out, err := io.ReadAll(io.LimitReader(zr, limit+1))
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		if int64(len(out)) > limit {
			return nil, errors.Wrapf(ErrTooLarge, "gzip: more than %d bytes", limit)
		}
		return out, nil
	case Zstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(limit)))
		if err != nil {
			return nil, errors.Wrap(err, "zstd decoder")
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return nil, errors.Wrapf(ErrTooLarge, "zstd: more than %d bytes", limit)
		}
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		return out, nil
	}
	return data, nil
}

// Size returns the size of the file at path as stored (before any
// decompression).
func Size(fs afero.Fs, path string) (int64, error) {
	fi, err := fs.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", path)
	}
	return fi.Size(), nil
}

// Open opens path for reading without decompression.
func Open(fs afero.Fs, path string) (afero.File, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return f, nil
}

type compressedFile struct {
	io.WriteCloser
	file afero.File
}

func (c *compressedFile) Close() error {
	if err := c.WriteCloser.Close(); err != nil {
		_ = c.file.Close()
		return err
	}
	return c.file.Close()
}

// Create creates (or truncates) path and returns a writer that compresses
// with c. Closing the writer flushes the encoder and closes the file.
func Create(fs afero.Fs, path string, c Compression) (io.WriteCloser, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}

	switch c {
	case Gzip:
		return &compressedFile{WriteCloser: gzip.NewWriter(f), file: f}, nil
	case Zstd:
		enc, err := zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return nil, errors.Wrap(err, "zstd encoder")
		}
		return &compressedFile{WriteCloser: enc, file: f}, nil
	}
	return f, nil
}
