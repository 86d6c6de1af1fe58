package expr

import "github.com/bittoy/idlecore/types"

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) != 0
	default:
		return true
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
	case types.EntityID:
		return float64(n), true
	default:
		return 0, false
	}
}

func asEntityID(v any) (types.EntityID, bool) {
	switch n := v.(type) {
	case types.EntityID:
		return n, true
	case int64:
		return types.EntityID(n), true
	case int:
		return types.EntityID(n), true
	case float64:
		return types.EntityID(n), true
	default:
		return types.NoEntity, false
	}
}

func equal(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}
