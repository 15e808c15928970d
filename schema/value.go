package schema

import (
	"encoding/json"
	"math"
)

// ToFloat converts any Go numeric value (including json.Number) to float64.
// The second result is false for non-numeric values.
func ToFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// IsScalar reports whether v can be used as a literal or enum value:
// nil, a string, a bool or a finite number.
func IsScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool:
		return true
	}
	f, ok := ToFloat(v)
	return ok && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Equal reports whether two scalar values are identical by value. Numbers
// compare by numeric value regardless of their Go type, so a literal 1
// equals the float64(1) produced by a JSON decoder.
func Equal(a, b any) bool {
	if fa, ok := ToFloat(a); ok {
		fb, ok := ToFloat(b)
		return ok && fa == fb
	}
	switch a := a.(type) {
	case nil:
		return b == nil
	case string:
		s, ok := b.(string)
		return ok && s == a
	case bool:
		x, ok := b.(bool)
		return ok && x == a
	default:
		return false
	}
}

// Normalize returns the canonical form of a scalar: numbers become
// float64, everything else is returned unchanged.
func Normalize(v any) any {
	if f, ok := ToFloat(v); ok {
		return f
	}
	return v
}
