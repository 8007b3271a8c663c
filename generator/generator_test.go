package generator

import (
	"bytes"
	"math"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/haversine/distfile"
	"github.com/Neumenon/haversine/haversine"
	"github.com/Neumenon/haversine/internal/fileio"
	"github.com/Neumenon/haversine/jsonparse"
)

func generate(t *testing.T, cfg Config) ([]byte, []float64, *Summary) {
	t.Helper()
	var jsonBuf, distBuf bytes.Buffer
	summary, err := Generate(cfg, &jsonBuf, distfile.NewWriter(&distBuf))
	require.NoError(t, err)

	distances, err := distfile.ReadAll(&distBuf)
	require.NoError(t, err)
	return jsonBuf.Bytes(), distances, summary
}

func TestGenerate_ParsesBack(t *testing.T) {
	const n = 200
	data, distances, summary := generate(t, Config{Count: n, Seed: 42, Radius: haversine.EarthRadius})

	v, err := jsonparse.ParseBytes(data)
	require.NoError(t, err)
	pairs, err := haversine.PairsFromValue(v)
	require.NoError(t, err)

	require.Len(t, pairs, n)
	require.Len(t, distances, n)
	assert.Equal(t, uint64(n), summary.Count)

	sum := 0.0
	for i, p := range pairs {
		assert.True(t, p.X0 >= -180 && p.X0 < 180, "pair %d x0 = %v", i, p.X0)
		assert.True(t, p.Y0 >= -90 && p.Y0 < 90, "pair %d y0 = %v", i, p.Y0)
		assert.True(t, p.X1 >= -180 && p.X1 < 180, "pair %d x1 = %v", i, p.X1)
		assert.True(t, p.Y1 >= -90 && p.Y1 < 90, "pair %d y1 = %v", i, p.Y1)

		// Shortest round-trip formatting means the parsed pair is exact.
		d := p.Distance(haversine.EarthRadius)
		assert.Equal(t, math.Float64bits(distances[i]), math.Float64bits(d), "pair %d", i)
		sum += d
	}
	assert.InDelta(t, sum/n, summary.Average, 1e-9)
	assert.InDelta(t, haversine.Average(pairs, haversine.EarthRadius), summary.Average, 1e-9)
}

func TestGenerate_Deterministic(t *testing.T) {
	a, _, _ := generate(t, Config{Count: 10, Seed: 7})
	b, _, _ := generate(t, Config{Count: 10, Seed: 7})
	c, _, _ := generate(t, Config{Count: 10, Seed: 8})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerate_Layout(t *testing.T) {
	data, _, _ := generate(t, Config{Count: 2, Seed: 1})

	lines := bytes.Split(bytes.TrimSuffix(data, []byte("\n")), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, `{"pairs": [`, string(lines[0]))
	assert.True(t, bytes.HasSuffix(lines[1], []byte("},")))
	assert.True(t, bytes.HasSuffix(lines[2], []byte("}")))
	assert.Equal(t, "]}", string(lines[3]))
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Count: 1, Radius: haversine.EarthRadius}
	require.NoError(t, valid.Validate())

	for name, cfg := range map[string]Config{
		"zero count":      {Count: 0, Radius: 1},
		"too many":        {Count: MaxCount + 1, Radius: 1},
		"negative radius": {Count: 1, Radius: -1},
		"bad compression": {Count: 1, Radius: 1, Compression: "lz4"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGenerateFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := Config{Count: 50, Seed: 3, OutDir: "/out", Compression: string(fileio.Zstd), Radius: haversine.EarthRadius}

	summary, err := GenerateFiles(fs, cfg)
	require.NoError(t, err)
	assert.Equal(t, "/out/haversine_50.json.zst", summary.JSONPath)
	assert.Equal(t, "/out/haversine_50.f64", summary.DistancePath)

	data, err := fileio.ReadFile(fs, summary.JSONPath)
	require.NoError(t, err)
	v, err := jsonparse.ParseBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 50, v.Get("pairs").Len())

	size, err := fileio.Size(fs, summary.DistancePath)
	require.NoError(t, err)
	n, err := distfile.Count(size)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}
