package choice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/idlecore/choice"
	"github.com/bittoy/idlecore/ecs"
	"github.com/bittoy/idlecore/types"
)

func TestCallExprBoundFunction(t *testing.T) {
	store := ecs.NewStore()
	entity := store.CreateEntity()
	require.NoError(t, store.SetBoundFunction(entity, "greeting", types.BoundFunctionDecl{
		Body: &types.Expr{Kind: types.ExprLiteral, Value: "hi"},
	}))

	registry := choice.NewRegistry(store)
	ctx := &types.ExecutionContext{Store: store, Logger: types.NopLogger{}, Locals: map[string]any{}, Params: map[string]any{}}

	v, err := registry.Call(ctx, entity, "greeting", nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", v)
}

func TestCallScriptBoundFunction(t *testing.T) {
	store := ecs.NewStore()
	entity := store.CreateEntity()
	require.NoError(t, store.SetBoundFunction(entity, "pick", types.BoundFunctionDecl{
		Source: "function pick(self, n) { return n * 2; }",
	}))

	registry := choice.NewRegistry(store)
	ctx := &types.ExecutionContext{Store: store, Logger: types.NopLogger{}}

	v, err := registry.Call(ctx, entity, "pick", []any{int64(21)})
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)
}

func TestCallUnknownBoundFunctionIsReferenceError(t *testing.T) {
	store := ecs.NewStore()
	entity := store.CreateEntity()
	registry := choice.NewRegistry(store)
	ctx := &types.ExecutionContext{Store: store, Logger: types.NopLogger{}}

	_, err := registry.Call(ctx, entity, "missing", nil)
	require.Error(t, err)
	var refErr *types.ReferenceError
	assert.ErrorAs(t, err, &refErr)
}
