package haversine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/haversine/jsonparse"
)

func TestReference(t *testing.T) {
	testCases := []struct {
		name string
		pair Pair
		want float64
	}{
		{"same point", Pair{X0: 10, Y0: 20, X1: 10, Y1: 20}, 0},
		{"quarter meridian", Pair{X0: 0, Y0: 0, X1: 0, Y1: 90}, math.Pi / 2 * EarthRadius},
		{"antipodes on equator", Pair{X0: 0, Y0: 0, X1: 180, Y1: 0}, math.Pi * EarthRadius},
		{"pole to pole", Pair{X0: -45, Y0: 90, X1: 135, Y1: -90}, math.Pi * EarthRadius},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.pair.Distance(EarthRadius), 1e-9)
		})
	}
}

func TestReference_Symmetric(t *testing.T) {
	d1 := Reference(-0.1278, 51.5074, 2.3522, 48.8566, EarthRadius)
	d2 := Reference(2.3522, 48.8566, -0.1278, 51.5074, EarthRadius)
	assert.InDelta(t, d1, d2, 1e-9)
	// London to Paris is roughly 343 km.
	assert.InDelta(t, 343.5, d1, 1.0)
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil, EarthRadius))

	pairs := []Pair{
		{X0: 0, Y0: 0, X1: 0, Y1: 90},
		{X0: 0, Y0: 0, X1: 0, Y1: 0},
	}
	assert.InDelta(t, math.Pi/4*EarthRadius, Average(pairs, EarthRadius), 1e-9)
}

func TestPairsFromValue(t *testing.T) {
	v, err := jsonparse.ParseString(`{"pairs": [
		{"x0": 1, "y0": 2, "x1": 3, "y1": 4},
		{"y1": -4, "x1": -3, "y0": -2, "x0": -1, "extra": 9}
	]}`)
	require.NoError(t, err)

	pairs, err := PairsFromValue(v)
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{X0: 1, Y0: 2, X1: 3, Y1: 4},
		{X0: -1, Y0: -2, X1: -3, Y1: -4},
	}, pairs)
}

func TestPairsFromValue_Empty(t *testing.T) {
	v, err := jsonparse.ParseString(`{"pairs": []}`)
	require.NoError(t, err)

	pairs, err := PairsFromValue(v)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestPairsFromValue_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"not an object", `[1]`, "document"},
		{"no pairs", `{"points": []}`, `no "pairs" member`},
		{"pairs not array", `{"pairs": 1}`, `"pairs"`},
		{"pair not object", `{"pairs": [1]}`, "pair 0"},
		{"missing key", `{"pairs": [{"x0": 1, "y0": 2, "x1": 3}]}`, `pair 0: missing "y1"`},
		{"wrong type", `{"pairs": [{"x0": 1, "y0": 2, "x1": 3, "y1": 4}, {"x0": [], "y0": 2, "x1": 3, "y1": 4}]}`, `pair 1: "x0"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := jsonparse.ParseString(tc.input)
			require.NoError(t, err)

			_, err = PairsFromValue(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
