// Package crosscheck decodes haversine pair documents with independent JSON
// parsers so their results can be compared against jsonparse.
package crosscheck

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/Neumenon/haversine/haversine"
	"github.com/Neumenon/haversine/jsonparse"
)

// Decoder extracts pairs from a JSON document.
type Decoder interface {
	Name() string
	Decode(data []byte) ([]haversine.Pair, error)
}

// Native is the name of the jsonparse-backed decoder.
const Native = "jsonparse"

var registry = map[string]Decoder{}

func register(d Decoder) {
	registry[d.Name()] = d
}

func init() {
	register(nativeDecoder{})
	register(gjsonDecoder{})
	register(fastjsonDecoder{})
	register(jsonparserDecoder{})
	register(jsoniterDecoder{})
	register(gabsDecoder{})
}

// Names returns the registered decoder names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the decoder registered under name.
func Lookup(name string) (Decoder, error) {
	d, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("unknown decoder %q (known: %v)", name, Names())
	}
	return d, nil
}

// MismatchError reports the first pair on which two decoders disagree.
type MismatchError struct {
	Decoder string
	Index   int
	Field   string
	Want    float64
	Got     float64
}

func (e *MismatchError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: decoded %d pairs, want %d", e.Decoder, int(e.Got), int(e.Want))
	}
	return fmt.Sprintf("%s: pair %d %s = %v, want %v", e.Decoder, e.Index, e.Field, e.Got, e.Want)
}

// Compare checks that got matches want within tolerance on every coordinate.
// A zero tolerance requires bit-identical values.
//
// Decoders disagree on duplicate keys: jsonparse, jsoniter and gabs keep the
// last occurrence, gjson, fastjson and jsonparser the first. A pair with a
// repeated coordinate key is reported as a mismatch.
func Compare(decoder string, want, got []haversine.Pair, tolerance float64) error {
	if len(want) != len(got) {
		return &MismatchError{Decoder: decoder, Want: float64(len(want)), Got: float64(len(got))}
	}
	for i := range want {
		w, g := want[i], got[i]
		for _, f := range []struct {
			name string
			w, g float64
		}{
			{"x0", w.X0, g.X0}, {"y0", w.Y0, g.Y0}, {"x1", w.X1, g.X1}, {"y1", w.Y1, g.Y1},
		} {
			if !closeEnough(f.w, f.g, tolerance) {
				return &MismatchError{Decoder: decoder, Index: i, Field: f.name, Want: f.w, Got: f.g}
			}
		}
	}
	return nil
}

func closeEnough(a, b, tolerance float64) bool {
	if tolerance == 0 {
		return math.Float64bits(a) == math.Float64bits(b)
	}
	return math.Abs(a-b) <= tolerance
}

// nativeDecoder decodes with this module's own parser.
type nativeDecoder struct{}

func (nativeDecoder) Name() string { return Native }

func (nativeDecoder) Decode(data []byte) ([]haversine.Pair, error) {
	v, err := jsonparse.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return haversine.PairsFromValue(v)
}

// pairBuilder collects coordinates by key for the callback-style decoders.
type pairBuilder struct {
	pair haversine.Pair
	seen uint8
}

func (b *pairBuilder) set(key string, v float64) bool {
	switch key {
	case "x0":
		b.pair.X0 = v
		b.seen |= 1
	case "y0":
		b.pair.Y0 = v
		b.seen |= 2
	case "x1":
		b.pair.X1 = v
		b.seen |= 4
	case "y1":
		b.pair.Y1 = v
		b.seen |= 8
	default:
		return false
	}
	return true
}

func (b *pairBuilder) done(index int) (haversine.Pair, error) {
	if b.seen != 15 {
		return haversine.Pair{}, errors.Errorf("pair %d: missing coordinates", index)
	}
	return b.pair, nil
}

var coordinateKeys = []string{"x0", "y0", "x1", "y1"}
