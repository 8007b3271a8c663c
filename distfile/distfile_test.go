package distfile

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Layout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteDistance(1.0))
	require.NoError(t, w.WriteDistance(-2.5))
	require.NoError(t, w.Flush())

	assert.Equal(t, 2, w.Count())
	// 1.0 = 0x3FF0000000000000, little-endian.
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f}, buf.Bytes()[:8])
	assert.Len(t, buf.Bytes(), 16)
}

func TestRoundTrip(t *testing.T) {
	values := []float64{0, math.Copysign(0, -1), 1, 6372.8, 20015.086796020572, math.SmallestNonzeroFloat64, math.MaxFloat64}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, v := range values {
		require.NoError(t, w.WriteDistance(v))
	}
	require.NoError(t, w.Flush())

	n, err := Count(int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, len(values), n)

	got, err := ReadAll(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(values))
	for i := range values {
		assert.Equal(t, math.Float64bits(values[i]), math.Float64bits(got[i]), "value %d", i)
	}
}

func TestReader_Empty(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_Truncated(t *testing.T) {
	data := make([]byte, 8+3)
	got, err := ReadAll(bytes.NewReader(data))

	var fe *FormatError
	require.True(t, errors.As(err, &fe), "got %v", err)
	assert.Equal(t, int64(8), fe.Offset)
	assert.Len(t, got, 1)
}

func TestReader_MaxCount(t *testing.T) {
	data := make([]byte, 3*ValueSize)
	_, err := ReadAll(bytes.NewReader(data), WithMaxCount(2))

	var fe *FormatError
	require.True(t, errors.As(err, &fe), "got %v", err)
	assert.Equal(t, int64(16), fe.Offset)

	got, err := ReadAll(bytes.NewReader(data), WithMaxCount(3))
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestCount(t *testing.T) {
	n, err := Count(0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = Count(800)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	_, err = Count(801)
	assert.Error(t, err)
}
