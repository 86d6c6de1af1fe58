package expr

import (
	"fmt"
	"math"

	"github.com/bittoy/idlecore/types"
)

// builtinFunc is a call handler for a fixed-name builtin; args are already
// evaluated.
type builtinFunc func(ctx *types.ExecutionContext, args []any) (any, error)

var builtins = map[string]builtinFunc{
	"min":              bMin,
	"max":              bMax,
	"floor":            bFloor,
	"ceil":             bCeil,
	"round":            bRound,
	"abs":              bAbs,
	"random":           bRandom,
	"random_range":     bRandomRange,
	"len":              bLen,
	"list":             bList,
	"entities_having":  bEntitiesHaving,
	"get":              bGet,
}

func bMin(_ *types.ExecutionContext, args []any) (any, error) {
	return reduceNumeric(args, "min", func(a, b float64) float64 { return math.Min(a, b) })
}

func bMax(_ *types.ExecutionContext, args []any) (any, error) {
	return reduceNumeric(args, "max", func(a, b float64) float64 { return math.Max(a, b) })
}

func reduceNumeric(args []any, name string, op func(a, b float64) float64) (any, error) {
	if len(args) == 0 {
		return nil, &types.ReferenceError{Context: name, Reason: "requires at least one argument"}
	}
	acc, ok := toFloat(args[0])
	if !ok {
		return nil, &types.ReferenceError{Context: name, Reason: "arguments must be numeric"}
	}
	for _, a := range args[1:] {
		f, ok := toFloat(a)
		if !ok {
			return nil, &types.ReferenceError{Context: name, Reason: "arguments must be numeric"}
		}
		acc = op(acc, f)
	}
	return acc, nil
}

func bFloor(_ *types.ExecutionContext, args []any) (any, error) { return unaryMath("floor", args, math.Floor) }
func bCeil(_ *types.ExecutionContext, args []any) (any, error)  { return unaryMath("ceil", args, math.Ceil) }
func bRound(_ *types.ExecutionContext, args []any) (any, error) { return unaryMath("round", args, math.Round) }
func bAbs(_ *types.ExecutionContext, args []any) (any, error)   { return unaryMath("abs", args, math.Abs) }

func unaryMath(name string, args []any, fn func(float64) float64) (any, error) {
	if len(args) != 1 {
		return nil, &types.ReferenceError{Context: name, Reason: "requires exactly one argument"}
	}
	f, ok := toFloat(args[0])
	if !ok {
		return nil, &types.ReferenceError{Context: name, Reason: "argument must be numeric"}
	}
	return fn(f), nil
}

func bRandom(ctx *types.ExecutionContext, args []any) (any, error) {
	if len(args) != 0 {
		return nil, &types.ReferenceError{Context: "random", Reason: "takes no arguments"}
	}
	return rng(ctx)(), nil
}

func bRandomRange(ctx *types.ExecutionContext, args []any) (any, error) {
	if len(args) != 2 {
		return nil, &types.ReferenceError{Context: "random_range", Reason: "requires (min, max)"}
	}
	lo, ok1 := toFloat(args[0])
	hi, ok2 := toFloat(args[1])
	if !ok1 || !ok2 {
		return nil, &types.ReferenceError{Context: "random_range", Reason: "arguments must be numeric"}
	}
	return lo + rng(ctx)()*(hi-lo), nil
}

// rng returns the execution context's seeded draw function. dispatch always
// populates ctx.Rand from the dispatcher's one *rand.Rand, seeded from
// Config.RandSeed, so replaying the same seed against the same events draws
// the same sequence. A constant fallback only applies to contexts built
// outside dispatch (e.g. ad hoc expr.Evaluate calls in example commands).
func rng(ctx *types.ExecutionContext) func() float64 {
	if ctx.Rand != nil {
		return ctx.Rand
	}
	return func() float64 { return 0.5 }
}

func bLen(_ *types.ExecutionContext, args []any) (any, error) {
	if len(args) != 1 {
		return nil, &types.ReferenceError{Context: "len", Reason: "requires exactly one argument"}
	}
	switch v := args[0].(type) {
	case []any:
		return int64(len(v)), nil
	case string:
		return int64(len(v)), nil
	case map[string]any:
		return int64(len(v)), nil
	default:
		return nil, &types.ReferenceError{Context: "len", Reason: "argument has no length"}
	}
}

func bList(_ *types.ExecutionContext, args []any) (any, error) {
	out := make([]any, len(args))
	copy(out, args)
	return out, nil
}

func bEntitiesHaving(ctx *types.ExecutionContext, args []any) (any, error) {
	components := make([]string, 0, len(args))
	for _, a := range args {
		s, ok := a.(string)
		if !ok {
			return nil, &types.ReferenceError{Context: "entities_having", Reason: "arguments must be component-name strings"}
		}
		components = append(components, s)
	}
	ids := ctx.Store.Query(components...)
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out, nil
}

func bGet(_ *types.ExecutionContext, args []any) (any, error) {
	if len(args) != 2 {
		return nil, &types.ReferenceError{Context: "get", Reason: "requires (list, index)"}
	}
	list, ok := args[0].([]any)
	if !ok {
		return nil, &types.ReferenceError{Context: "get", Reason: "first argument must be a list"}
	}
	idx, ok := toFloat(args[1])
	if !ok {
		return nil, &types.ReferenceError{Context: "get", Reason: "index must be numeric"}
	}
	i := int(idx)
	if i < 0 || i >= len(list) {
		return nil, &types.ReferenceError{Context: "get", Reason: fmt.Sprintf("index %d out of range for list of length %d", i, len(list))}
	}
	return list[i], nil
}
