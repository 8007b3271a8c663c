package jsonparse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind represents the value types this grammar produces.
type Kind uint8

const (
	KindNumber Kind = iota
	KindArray
	KindObject
	KindInvalid // returned by Kind on a nil *Value
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Value is a parsed JSON number, array or object.
//
// Object keys are substrings of the parsed input, so a Value tree keeps the
// whole input alive. Values are not mutated after parsing.
type Value struct {
	kind Kind

	num float64
	arr []*Value
	obj map[string]*Value
}

// ============================================================
// Constructors
// ============================================================

// Number creates a number value.
func Number(v float64) *Value {
	return &Value{kind: KindNumber, num: v}
}

// Array creates an array value.
func Array(values ...*Value) *Value {
	if values == nil {
		values = []*Value{}
	}
	return &Value{kind: KindArray, arr: values}
}

// Object creates an object value. A nil map yields an empty object.
func Object(members map[string]*Value) *Value {
	if members == nil {
		members = map[string]*Value{}
	}
	return &Value{kind: KindObject, obj: members}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind, or KindInvalid for a nil value.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindInvalid
	}
	return v.kind
}

// AsNumber returns the numeric value.
func (v *Value) AsNumber() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("jsonparse: nil value")
	}
	if v.kind != KindNumber {
		return 0, fmt.Errorf("jsonparse: expected number, got %s", v.kind)
	}
	return v.num, nil
}

// AsArray returns the array elements.
func (v *Value) AsArray() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("jsonparse: nil value")
	}
	if v.kind != KindArray {
		return nil, fmt.Errorf("jsonparse: expected array, got %s", v.kind)
	}
	return v.arr, nil
}

// AsObject returns the object members.
func (v *Value) AsObject() (map[string]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("jsonparse: nil value")
	}
	if v.kind != KindObject {
		return nil, fmt.Errorf("jsonparse: expected object, got %s", v.kind)
	}
	return v.obj, nil
}

// Get returns the member for key, or nil if v is not an object or has no
// such member.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != KindObject {
		return nil
	}
	return v.obj[key]
}

// Index returns the i-th array element, or nil if out of range or v is not
// an array.
func (v *Value) Index(i int) *Value {
	if v == nil || v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return nil
	}
	return v.arr[i]
}

// Len returns the element count of an array or the member count of an
// object, and 0 for numbers.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	}
	return 0
}

// Keys returns the object's keys in sorted order.
func (v *Value) Keys() []string {
	if v == nil || v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether two values are structurally equal. Object member
// order does not matter.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == other.num
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, a := range v.obj {
			b, ok := other.obj[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns a compact debug representation with keys sorted.
func (v *Value) String() string {
	var sb strings.Builder
	v.writeDebug(&sb)
	return sb.String()
}

func (v *Value) writeDebug(sb *strings.Builder) {
	if v == nil {
		sb.WriteString("<nil>")
		return
	}
	switch v.kind {
	case KindNumber:
		sb.WriteString(strconv.FormatFloat(v.num, 'g', -1, 64))
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				sb.WriteByte(' ')
			}
			e.writeDebug(sb)
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(k)
			sb.WriteByte(':')
			v.obj[k].writeDebug(sb)
		}
		sb.WriteByte('}')
	}
}
