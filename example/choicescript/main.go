// Command choicescript demonstrates a bound choice function backed by a
// JavaScript source body, invoked through the expression evaluator's
// function-call path.
package main

import (
	"fmt"
	"log"

	"github.com/bittoy/idlecore/choice"
	"github.com/bittoy/idlecore/ecs"
	"github.com/bittoy/idlecore/expr"
	"github.com/bittoy/idlecore/types"
)

func main() {
	store := ecs.NewStore()
	store.RegisterSchema(types.NewComponentSchema(types.ComponentDecl{
		Name:   "npc",
		Fields: []types.FieldDecl{{Name: "mood", Type: types.FieldString, Default: "neutral"}},
	}))
	entity := store.CreateEntity()
	if err := store.AddComponent(entity, "npc", nil); err != nil {
		log.Fatal(err)
	}
	if err := store.SetBoundFunction(entity, "choose_action", types.BoundFunctionDecl{
		Source: `function choose_action(self, energy) {
			if (energy > 50) { return "explore"; }
			return "rest";
		}`,
	}); err != nil {
		log.Fatal(err)
	}

	registry := choice.NewRegistry(store)
	ctx := &types.ExecutionContext{
		Store:    store,
		Choices:  registry,
		Logger:   types.NopLogger{},
		Bindings: map[string]types.EntityID{"npc": entity},
		Locals:   map[string]any{},
		Params:   map[string]any{},
	}

	call := &types.Expr{
		Kind:     types.ExprCall,
		Function: "choose_action",
		Args: []*types.Expr{
			{Kind: types.ExprVar, Name: "npc"},
			{Kind: types.ExprLiteral, Value: 75.0},
		},
	}
	result, err := expr.Evaluate(ctx, call)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("chosen action: %v\n", result)
}
