// Package expr implements the tree-walking evaluator for the IR's
// expression language: the small set of literal/var/field/binary/unary/
// if/call nodes, plus a fixed table of built-in functions and an opt-in
// bridge to github.com/expr-lang/expr through the "script(...)" built-in
// call.
package expr

import (
	"fmt"
	"math"

	"github.com/bittoy/idlecore/types"
)

// Evaluate walks e against ctx and returns its value. A node of a Kind this
// build doesn't recognize records a warning on ctx and evaluates to nil,
// rather than failing the evaluation or panicking.
func Evaluate(ctx *types.ExecutionContext, e *types.Expr) (any, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Kind {
	case types.ExprLiteral:
		return e.Value, nil

	case types.ExprVar:
		if v, ok := ctx.Locals[e.Name]; ok {
			return v, nil
		}
		if v, ok := ctx.Params[e.Name]; ok {
			return v, nil
		}
		if id, ok := ctx.Bindings[e.Name]; ok {
			return id, nil
		}
		return nil, &types.ReferenceError{Context: "var", Reason: fmt.Sprintf("unbound name %q", e.Name)}

	case types.ExprParam:
		v, ok := ctx.Params[e.Name]
		if !ok {
			return nil, &types.ReferenceError{Context: "param", Reason: fmt.Sprintf("unbound parameter %q", e.Name)}
		}
		return v, nil

	case types.ExprField:
		return evalField(ctx, e)

	case types.ExprBinary:
		return evalBinary(ctx, e)

	case types.ExprUnary:
		return evalUnary(ctx, e)

	case types.ExprIf:
		cond, err := Evaluate(ctx, e.Condition)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return Evaluate(ctx, e.Then)
		}
		return Evaluate(ctx, e.Else)

	case types.ExprCall:
		return evalCall(ctx, e)

	default:
		ctx.Warnf("expr", "unknown expression kind %q; ignored", e.Kind)
		return nil, nil
	}
}

func evalField(ctx *types.ExecutionContext, e *types.Expr) (any, error) {
	entity, err := resolveEntity(ctx, e)
	if err != nil {
		return nil, err
	}
	v, ok := ctx.Store.GetField(entity, e.Component, e.Field)
	if !ok {
		return nil, &types.ReferenceError{
			Context: "field",
			Reason:  fmt.Sprintf("entity %d has no %s.%s", entity, e.Component, e.Field),
		}
	}
	return v, nil
}

func resolveEntity(ctx *types.ExecutionContext, e *types.Expr) (types.EntityID, error) {
	if e.EntityExpr != nil {
		v, err := Evaluate(ctx, e.EntityExpr)
		if err != nil {
			return types.NoEntity, err
		}
		id, ok := asEntityID(v)
		if !ok {
			return types.NoEntity, &types.ReferenceError{Context: "field", Reason: "entity expression did not evaluate to an entity id"}
		}
		return id, nil
	}
	if id, ok := ctx.Bindings[e.EntityName]; ok {
		return id, nil
	}
	if v, ok := ctx.Locals[e.EntityName]; ok {
		if id, ok := asEntityID(v); ok {
			return id, nil
		}
	}
	return types.NoEntity, &types.ReferenceError{Context: "field", Reason: fmt.Sprintf("unbound entity reference %q", e.EntityName)}
}

func evalBinary(ctx *types.ExecutionContext, e *types.Expr) (any, error) {
	left, err := Evaluate(ctx, e.Left)
	if err != nil {
		return nil, err
	}
	// Short-circuit and/or before evaluating the right side.
	switch types.BinaryOp(e.Op) {
	case types.OpAnd:
		if !truthy(left) {
			return false, nil
		}
		right, err := Evaluate(ctx, e.Right)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	case types.OpOr:
		if truthy(left) {
			return true, nil
		}
		right, err := Evaluate(ctx, e.Right)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	}

	right, err := Evaluate(ctx, e.Right)
	if err != nil {
		return nil, err
	}

	switch types.BinaryOp(e.Op) {
	case types.OpEq:
		return equal(left, right), nil
	case types.OpNeq:
		return !equal(left, right), nil
	}

	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, &types.ReferenceError{Context: "binary", Reason: fmt.Sprintf("operator %q requires numeric operands", e.Op)}
	}

	switch types.BinaryOp(e.Op) {
	case types.OpAdd:
		return lf + rf, nil
	case types.OpSubtract:
		return lf - rf, nil
	case types.OpMultiply:
		return lf * rf, nil
	case types.OpDivide:
		// IEEE-754 division: x/0 produces +/-Inf or NaN rather than
		// erroring. Any NaN/Inf is folded to zero only when the result is
		// later written into an integer or number field (see ecs.coerce); here the
		// raw float is returned unchanged.
		return lf / rf, nil
	case types.OpModulo:
		return math.Mod(lf, rf), nil
	case types.OpLt:
		return lf < rf, nil
	case types.OpLte:
		return lf <= rf, nil
	case types.OpGt:
		return lf > rf, nil
	case types.OpGte:
		return lf >= rf, nil
	default:
		return nil, &types.LoadError{Path: "expr", Reason: fmt.Sprintf("unknown binary operator %q", e.Op)}
	}
}

func evalUnary(ctx *types.ExecutionContext, e *types.Expr) (any, error) {
	inner, err := Evaluate(ctx, e.Inner)
	if err != nil {
		return nil, err
	}
	switch types.UnaryOp(e.Op) {
	case types.OpNot:
		return !truthy(inner), nil
	case types.OpNeg:
		f, ok := toFloat(inner)
		if !ok {
			return nil, &types.ReferenceError{Context: "unary", Reason: "neg requires a numeric operand"}
		}
		return -f, nil
	default:
		return nil, &types.LoadError{Path: "expr", Reason: fmt.Sprintf("unknown unary operator %q", e.Op)}
	}
}

func evalCall(ctx *types.ExecutionContext, e *types.Expr) (any, error) {
	args := make([]any, len(e.Args))
	for i, a := range e.Args {
		v, err := Evaluate(ctx, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if fn, ok := builtins[e.Function]; ok {
		return fn(ctx, args)
	}

	if e.Function == "script" {
		return callScript(ctx, args)
	}

	if fn, ok := ctx.Functions[e.Function]; ok {
		return callFunctionDecl(ctx, fn, args)
	}

	if ctx.Choices != nil {
		if len(args) == 0 {
			return nil, &types.ReferenceError{Context: "call", Reason: fmt.Sprintf("bound function %q needs an entity argument", e.Function)}
		}
		entity, ok := asEntityID(args[0])
		if ok {
			return ctx.Choices.Call(ctx, entity, e.Function, args[1:])
		}
	}

	return nil, &types.ReferenceError{Context: "call", Reason: fmt.Sprintf("unknown function %q", e.Function)}
}

func callFunctionDecl(ctx *types.ExecutionContext, fn *types.FunctionDecl, args []any) (any, error) {
	params := map[string]any{}
	for i, p := range fn.Params {
		if i < len(args) {
			params[p.Name] = args[i]
		}
	}
	child := ctx.Child(params)
	v, err := Evaluate(child, fn.Body)
	ctx.Warnings = append(ctx.Warnings, child.Warnings...)
	return v, err
}
