package crosscheck

import (
	"encoding/json"

	"github.com/Jeffail/gabs/v2"
	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/valyala/fastjson"

	"github.com/Neumenon/haversine/haversine"
)

// ============================================================
// gjson
// ============================================================

type gjsonDecoder struct{}

func (gjsonDecoder) Name() string { return "gjson" }

func (gjsonDecoder) Decode(data []byte) ([]haversine.Pair, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("gjson: invalid json")
	}
	list := gjson.GetBytes(data, haversine.PairsKey)
	if !list.IsArray() {
		return nil, errors.Errorf("gjson: %q is not an array", haversine.PairsKey)
	}

	var (
		pairs []haversine.Pair
		err   error
	)
	list.ForEach(func(_, elem gjson.Result) bool {
		var b pairBuilder
		for _, key := range coordinateKeys {
			r := elem.Get(key)
			if r.Type != gjson.Number {
				err = errors.Errorf("gjson: pair %d: %q is not a number", len(pairs), key)
				return false
			}
			b.set(key, r.Float())
		}
		p, perr := b.done(len(pairs))
		if perr != nil {
			err = perr
			return false
		}
		pairs = append(pairs, p)
		return true
	})
	return pairs, err
}

// ============================================================
// fastjson
// ============================================================

type fastjsonDecoder struct{}

func (fastjsonDecoder) Name() string { return "fastjson" }

func (fastjsonDecoder) Decode(data []byte) ([]haversine.Pair, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "fastjson")
	}
	if v.Get(haversine.PairsKey) == nil {
		return nil, errors.Errorf("fastjson: no %q member", haversine.PairsKey)
	}
	elems, err := v.Get(haversine.PairsKey).Array()
	if err != nil {
		return nil, errors.Wrapf(err, "fastjson: %q", haversine.PairsKey)
	}

	pairs := make([]haversine.Pair, 0, len(elems))
	for i, elem := range elems {
		var b pairBuilder
		for _, key := range coordinateKeys {
			n := elem.Get(key)
			if n == nil {
				return nil, errors.Errorf("fastjson: pair %d: missing %q", i, key)
			}
			f, err := n.Float64()
			if err != nil {
				return nil, errors.Wrapf(err, "fastjson: pair %d: %q", i, key)
			}
			b.set(key, f)
		}
		pair, err := b.done(i)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// ============================================================
// jsonparser
// ============================================================

type jsonparserDecoder struct{}

func (jsonparserDecoder) Name() string { return "jsonparser" }

func (jsonparserDecoder) Decode(data []byte) ([]haversine.Pair, error) {
	var (
		pairs   []haversine.Pair
		elemErr error
	)
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if elemErr != nil {
			return
		}
		if err != nil {
			elemErr = err
			return
		}
		if dataType != jsonparser.Object {
			elemErr = errors.Errorf("pair %d is a %s", len(pairs), dataType)
			return
		}
		var b pairBuilder
		for _, key := range coordinateKeys {
			f, err := jsonparser.GetFloat(value, key)
			if err != nil {
				elemErr = errors.Wrapf(err, "pair %d: %q", len(pairs), key)
				return
			}
			b.set(key, f)
		}
		p, err := b.done(len(pairs))
		if err != nil {
			elemErr = err
			return
		}
		pairs = append(pairs, p)
	}, haversine.PairsKey)
	if err != nil {
		return nil, errors.Wrap(err, "jsonparser")
	}
	if elemErr != nil {
		return nil, errors.Wrap(elemErr, "jsonparser")
	}
	return pairs, nil
}

// ============================================================
// json-iterator
// ============================================================

type jsoniterDecoder struct{}

func (jsoniterDecoder) Name() string { return "jsoniter" }

type iterDocument struct {
	Pairs *[]struct {
		X0 *float64 `json:"x0"`
		Y0 *float64 `json:"y0"`
		X1 *float64 `json:"x1"`
		Y1 *float64 `json:"y1"`
	} `json:"pairs"`
}

func (jsoniterDecoder) Decode(data []byte) ([]haversine.Pair, error) {
	var doc iterDocument
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "jsoniter")
	}
	if doc.Pairs == nil {
		return nil, errors.Errorf("jsoniter: no %q member", haversine.PairsKey)
	}

	pairs := make([]haversine.Pair, 0, len(*doc.Pairs))
	for i, p := range *doc.Pairs {
		if p.X0 == nil || p.Y0 == nil || p.X1 == nil || p.Y1 == nil {
			return nil, errors.Errorf("jsoniter: pair %d: missing coordinates", i)
		}
		pairs = append(pairs, haversine.Pair{X0: *p.X0, Y0: *p.Y0, X1: *p.X1, Y1: *p.Y1})
	}
	return pairs, nil
}

// ============================================================
// gabs
// ============================================================

type gabsDecoder struct{}

func (gabsDecoder) Name() string { return "gabs" }

func (gabsDecoder) Decode(data []byte) ([]haversine.Pair, error) {
	container, err := gabs.ParseJSON(data)
	if err != nil {
		return nil, errors.Wrap(err, "gabs")
	}
	list := container.S(haversine.PairsKey)
	if _, ok := list.Data().([]interface{}); !ok {
		return nil, errors.Errorf("gabs: %q is not an array", haversine.PairsKey)
	}

	children := list.Children()
	pairs := make([]haversine.Pair, 0, len(children))
	for i, child := range children {
		var b pairBuilder
		for _, key := range coordinateKeys {
			f, err := gabsNumber(child.S(key).Data())
			if err != nil {
				return nil, errors.Wrapf(err, "gabs: pair %d: %q", i, key)
			}
			b.set(key, f)
		}
		pair, err := b.done(i)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func gabsNumber(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case nil:
		return 0, errors.New("missing")
	}
	return 0, errors.Errorf("not a number: %T", v)
}
