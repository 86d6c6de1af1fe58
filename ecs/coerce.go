package ecs

import (
	"math"

	"github.com/bittoy/idlecore/types"
)

// coerce converts v to the Go representation matching ft. Integer fields
// truncate toward zero; integer and number fields both fold NaN/Inf to 0 on
// write, so an IEEE-754 division by zero upstream in expr never leaves a NaN
// sitting in store state. Values that don't fit the declared type at all are passed
// through unchanged rather than dropped, so a malformed IR value surfaces
// later as a type error instead of disappearing silently.
func coerce(ft types.FieldType, v any) any {
	switch ft {
	case types.FieldInteger:
		f, ok := toFloat(v)
		if !ok {
			return v
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return int64(0)
		}
		return int64(f)
	case types.FieldNumber:
		f, ok := toFloat(v)
		if !ok {
			return v
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return float64(0)
		}
		return f
	case types.FieldBoolean:
		if b, ok := v.(bool); ok {
			return b
		}
		return v
	case types.FieldString:
		if s, ok := v.(string); ok {
			return s
		}
		return v
	default:
		return v
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
