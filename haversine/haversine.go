// Package haversine computes great-circle distances between coordinate pairs
// and extracts those pairs from parsed JSON documents.
package haversine

import (
	"fmt"
	"math"

	"github.com/Neumenon/haversine/jsonparse"
)

// EarthRadius is the sphere radius, in kilometers, used for reference
// distances.
const EarthRadius = 6372.8

// Pair is one pair of points. X is longitude and Y is latitude, in degrees.
type Pair struct {
	X0, Y0 float64
	X1, Y1 float64
}

// Distance returns the haversine distance between the two points.
func (p Pair) Distance(radius float64) float64 {
	return Reference(p.X0, p.Y0, p.X1, p.Y1, radius)
}

func radians(deg float64) float64 {
	return deg * (math.Pi / 180)
}

func square(x float64) float64 {
	return x * x
}

// Reference is the reference haversine formula.
func Reference(x0, y0, x1, y1, radius float64) float64 {
	lat1 := y0
	lat2 := y1
	lon1 := x0
	lon2 := x1

	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	lat1 = radians(lat1)
	lat2 = radians(lat2)

	a := square(math.Sin(dLat/2)) + math.Cos(lat1)*math.Cos(lat2)*square(math.Sin(dLon/2))
	c := 2 * math.Asin(math.Sqrt(a))

	return radius * c
}

// Average returns the mean distance over pairs, or 0 when there are none.
func Average(pairs []Pair, radius float64) float64 {
	if len(pairs) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range pairs {
		sum += p.Distance(radius)
	}
	return sum / float64(len(pairs))
}

// PairsKey is the top-level member holding the pair array.
const PairsKey = "pairs"

// PairsFromValue extracts pairs from a document shaped like
//
//	{"pairs": [{"x0": n, "y0": n, "x1": n, "y1": n}, ...]}
//
// Extra members are ignored; missing or non-numeric coordinates are errors.
func PairsFromValue(v *jsonparse.Value) ([]Pair, error) {
	if _, err := v.AsObject(); err != nil {
		return nil, fmt.Errorf("haversine: document: %w", err)
	}
	list := v.Get(PairsKey)
	if list == nil {
		return nil, fmt.Errorf("haversine: document has no %q member", PairsKey)
	}
	elems, err := list.AsArray()
	if err != nil {
		return nil, fmt.Errorf("haversine: %q: %w", PairsKey, err)
	}

	pairs := make([]Pair, len(elems))
	for i, elem := range elems {
		if _, err := elem.AsObject(); err != nil {
			return nil, fmt.Errorf("haversine: pair %d: %w", i, err)
		}
		p := &pairs[i]
		for _, f := range []struct {
			key string
			dst *float64
		}{
			{"x0", &p.X0}, {"y0", &p.Y0}, {"x1", &p.X1}, {"y1", &p.Y1},
		} {
			member := elem.Get(f.key)
			if member == nil {
				return nil, fmt.Errorf("haversine: pair %d: missing %q", i, f.key)
			}
			n, err := member.AsNumber()
			if err != nil {
				return nil, fmt.Errorf("haversine: pair %d: %q: %w", i, f.key, err)
			}
			*f.dst = n
		}
	}
	return pairs, nil
}
