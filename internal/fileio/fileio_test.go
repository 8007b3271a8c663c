package fileio

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompression(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Compression
		ext  string
	}{
		{"", None, ""},
		{"none", None, ""},
		{"gzip", Gzip, ".gz"},
		{"zstd", Zstd, ".zst"},
	} {
		got, err := ParseCompression(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, tc.ext, got.Ext())
	}

	_, err := ParseCompression("lz4")
	assert.Error(t, err)
}

func TestCreateAndReadFile(t *testing.T) {
	payload := []byte(`{"pairs": [{"x0": 1, "y0": 2, "x1": 3, "y1": 4}]}`)

	for _, c := range []Compression{None, Gzip, Zstd} {
		t.Run(string(c), func(t *testing.T) {
			fs := afero.NewMemMapFs()
			path := "/in.json" + c.Ext()

			w, err := Create(fs, path, c)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			raw, err := afero.ReadFile(fs, path)
			require.NoError(t, err)
			assert.Equal(t, c, Detect(raw))

			got, err := ReadFile(fs, path)
			require.NoError(t, err)
			assert.Equal(t, payload, got)

			size, err := Size(fs, path)
			require.NoError(t, err)
			assert.Equal(t, int64(len(raw)), size)
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(afero.NewMemMapFs(), "/nope.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nope.json")
}

func TestReadFile_CorruptGzip(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad.gz", []byte{0x1f, 0x8b, 0x00}, 0o644))

	_, err := ReadFile(fs, "/bad.gz")
	assert.Error(t, err)
}

func TestDecompressLimit(t *testing.T) {
	payload := bytes.Repeat([]byte("0"), 64<<10)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zs := enc.EncodeAll(payload, nil)
	require.NoError(t, enc.Close())

	for name, data := range map[string][]byte{"gzip": gz.Bytes(), "zstd": zs} {
		t.Run(name, func(t *testing.T) {
			out, err := DecompressLimit(data, int64(len(payload)))
			require.NoError(t, err)
			assert.Equal(t, payload, out)

			_, err = DecompressLimit(data, 1024)
			assert.ErrorIs(t, err, ErrTooLarge)
		})
	}
}

func TestOpen(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/raw.f64", []byte("12345678"), 0o644))

	f, err := Open(fs, "/raw.f64")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(data))
}
