package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/idlecore/ecs"
	"github.com/bittoy/idlecore/expr"
	"github.com/bittoy/idlecore/types"
)

func freshCtx() *types.ExecutionContext {
	return &types.ExecutionContext{
		Store:    ecs.NewStore(),
		Logger:   types.NopLogger{},
		Bindings: map[string]types.EntityID{},
		Locals:   map[string]any{},
		Params:   map[string]any{},
	}
}

func TestEvaluateLiteralAndBinary(t *testing.T) {
	ctx := freshCtx()
	e := &types.Expr{
		Kind: types.ExprBinary,
		Op:   string(types.OpAdd),
		Left: &types.Expr{Kind: types.ExprLiteral, Value: 2.0},
		Right: &types.Expr{
			Kind: types.ExprBinary,
			Op:   string(types.OpMultiply),
			Left: &types.Expr{Kind: types.ExprLiteral, Value: 3.0},
			Right: &types.Expr{Kind: types.ExprLiteral, Value: 4.0},
		},
	}
	v, err := expr.Evaluate(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, 14.0, v)
}

func TestEvaluateFieldLookup(t *testing.T) {
	store := ecs.NewStore()
	store.RegisterSchema(types.NewComponentSchema(types.ComponentDecl{
		Name:   "health",
		Fields: []types.FieldDecl{{Name: "hp", Type: types.FieldInteger}},
	}))
	entity := store.CreateEntity()
	require.NoError(t, store.AddComponent(entity, "health", map[string]any{"hp": int64(55)}))

	ctx := freshCtx()
	ctx.Store = store
	ctx.Bindings["actor"] = entity

	e := &types.Expr{Kind: types.ExprField, EntityName: "actor", Component: "health", Field: "hp"}
	v, err := expr.Evaluate(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, int64(55), v)
}

func TestEvaluateIfShortCircuits(t *testing.T) {
	ctx := freshCtx()
	e := &types.Expr{
		Kind:      types.ExprIf,
		Condition: &types.Expr{Kind: types.ExprLiteral, Value: true},
		Then:      &types.Expr{Kind: types.ExprLiteral, Value: "yes"},
		// An unbound name errors if evaluated, so success proves Else was skipped.
		Else:      &types.Expr{Kind: types.ExprVar, Name: "unbound"},
	}
	v, err := expr.Evaluate(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, "yes", v)
}

func TestEvaluateBuiltinMax(t *testing.T) {
	ctx := freshCtx()
	e := &types.Expr{
		Kind:     types.ExprCall,
		Function: "max",
		Args: []*types.Expr{
			{Kind: types.ExprLiteral, Value: 3.0},
			{Kind: types.ExprLiteral, Value: 9.0},
			{Kind: types.ExprLiteral, Value: 5.0},
		},
	}
	v, err := expr.Evaluate(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)
}

func TestEvaluateUnboundVarIsReferenceError(t *testing.T) {
	ctx := freshCtx()
	_, err := expr.Evaluate(ctx, &types.Expr{Kind: types.ExprVar, Name: "nope"})
	require.Error(t, err)
	var refErr *types.ReferenceError
	assert.ErrorAs(t, err, &refErr)
}
