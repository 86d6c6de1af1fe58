package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/idlecore/dispatch"
	"github.com/bittoy/idlecore/ecs"
	"github.com/bittoy/idlecore/timeline"
	"github.com/bittoy/idlecore/types"
)

func TestDispatchFiresOnSourceBinding(t *testing.T) {
	store := ecs.NewStore()
	store.RegisterSchema(types.NewComponentSchema(types.ComponentDecl{
		Name:   "health",
		Fields: []types.FieldDecl{{Name: "hp", Type: types.FieldInteger}},
	}))
	entity := store.CreateEntity()
	require.NoError(t, store.AddComponent(entity, "health", map[string]any{"hp": int64(10)}))

	rules := []types.RuleDecl{{
		Name:    "heal",
		Trigger: types.Trigger{Event: "heal", Bindings: map[string]string{"actor": "source"}},
		Actions: []types.Action{{
			Kind:      types.ActionModify,
			Entity:    &types.Expr{Kind: types.ExprVar, Name: "actor"},
			Component: "health",
			Field:     "hp",
			ModifyOp:  types.ModifyAdd,
			Value:     &types.Expr{Kind: types.ExprLiteral, Value: 5.0},
		}},
	}}

	tl := timeline.New()
	d := dispatch.New(rules, store, tl, nil, nil, types.NewConfig())
	notification, err := d.Dispatch(&types.ScheduledEvent{Name: "heal", Source: entity, Target: types.NoEntity})
	require.NoError(t, err)
	assert.Equal(t, []string{"heal"}, notification.FiredRules)

	hp, _ := store.GetField(entity, "health", "hp")
	assert.Equal(t, int64(15), hp)
}

func TestDispatchFiresOnExplicitFieldBinding(t *testing.T) {
	store := ecs.NewStore()
	store.RegisterSchema(types.NewComponentSchema(types.ComponentDecl{
		Name:   "health",
		Fields: []types.FieldDecl{{Name: "hp", Type: types.FieldInteger}},
	}))
	a := store.CreateEntity()
	b := store.CreateEntity()
	require.NoError(t, store.AddComponent(a, "health", map[string]any{"hp": int64(10)}))
	require.NoError(t, store.AddComponent(b, "health", map[string]any{"hp": int64(10)}))

	rules := []types.RuleDecl{{
		Name:    "hit",
		Trigger: types.Trigger{Event: "hit", Bindings: map[string]string{"target": "targetId"}},
		Actions: []types.Action{{
			Kind:      types.ActionModify,
			Entity:    &types.Expr{Kind: types.ExprVar, Name: "target"},
			Component: "health",
			Field:     "hp",
			ModifyOp:  types.ModifySubtract,
			Value:     &types.Expr{Kind: types.ExprLiteral, Value: 3.0},
		}},
	}}

	tl := timeline.New()
	d := dispatch.New(rules, store, tl, nil, nil, types.NewConfig())
	notification, err := d.Dispatch(&types.ScheduledEvent{
		Name:   "hit",
		Source: types.NoEntity,
		Target: types.NoEntity,
		Fields: map[string]any{"targetId": b},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hit"}, notification.FiredRules)

	hpA, _ := store.GetField(a, "health", "hp")
	hpB, _ := store.GetField(b, "health", "hp")
	assert.Equal(t, int64(10), hpA, "only the bound field's entity is visited")
	assert.Equal(t, int64(7), hpB)
}

func TestDispatchFallsBackToFilterQuery(t *testing.T) {
	store := ecs.NewStore()
	store.RegisterSchema(types.NewComponentSchema(types.ComponentDecl{
		Name:   "tag",
		Fields: []types.FieldDecl{{Name: "seen", Type: types.FieldBoolean, Default: false}},
	}))
	a := store.CreateEntity()
	b := store.CreateEntity()
	require.NoError(t, store.AddComponent(a, "tag", nil))
	require.NoError(t, store.AddComponent(b, "tag", nil))

	rules := []types.RuleDecl{{
		Name:    "mark",
		Trigger: types.Trigger{Event: "tick"},
		Filter:  types.Filter{Components: []string{"tag"}},
		Actions: []types.Action{{
			Kind:      types.ActionModify,
			Entity:    &types.Expr{Kind: types.ExprVar, Name: "entity"},
			Component: "tag",
			Field:     "seen",
			ModifyOp:  types.ModifySet,
			Value:     &types.Expr{Kind: types.ExprLiteral, Value: true},
		}},
	}}

	tl := timeline.New()
	d := dispatch.New(rules, store, tl, nil, nil, types.NewConfig())
	_, err := d.Dispatch(&types.ScheduledEvent{Name: "tick", Source: types.NoEntity, Target: types.NoEntity})
	require.NoError(t, err)

	seenA, _ := store.GetField(a, "tag", "seen")
	seenB, _ := store.GetField(b, "tag", "seen")
	assert.Equal(t, true, seenA)
	assert.Equal(t, true, seenB)
}

func TestDispatchRunsRulesInDeclarationOrder(t *testing.T) {
	store := ecs.NewStore()
	store.RegisterSchema(types.NewComponentSchema(types.ComponentDecl{
		Name:   "log",
		Fields: []types.FieldDecl{{Name: "value", Type: types.FieldString, Default: ""}},
	}))
	e := store.CreateEntity()
	require.NoError(t, store.AddComponent(e, "log", nil))

	appendRule := func(name string, v string) types.RuleDecl {
		return types.RuleDecl{
			Name:    name,
			Trigger: types.Trigger{Event: "go", Bindings: map[string]string{"actor": "source"}},
			Actions: []types.Action{{
				Kind:      types.ActionModify,
				Entity:    &types.Expr{Kind: types.ExprVar, Name: "actor"},
				Component: "log",
				Field:     "value",
				ModifyOp:  types.ModifySet,
				Value:     &types.Expr{Kind: types.ExprLiteral, Value: v},
			}},
		}
	}
	rules := []types.RuleDecl{appendRule("first", "a"), appendRule("second", "b")}

	tl := timeline.New()
	d := dispatch.New(rules, store, tl, nil, nil, types.NewConfig())
	notification, err := d.Dispatch(&types.ScheduledEvent{Name: "go", Source: e, Target: types.NoEntity})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, notification.FiredRules)

	value, _ := store.GetField(e, "log", "value")
	assert.Equal(t, "b", value, "rules run in declaration order, so the later rule's write wins")
}
