// Command exprscript demonstrates the "script" builtin, which hands an
// expression off to github.com/expr-lang/expr for surface-language authors
// who want a full arithmetic/boolean expression grammar inline in their IR
// instead of composing the tree-walking evaluator's node types by hand.
package main

import (
	"fmt"
	"log"

	"github.com/bittoy/idlecore/ecs"
	"github.com/bittoy/idlecore/expr"
	"github.com/bittoy/idlecore/types"
)

func main() {
	store := ecs.NewStore()
	ctx := &types.ExecutionContext{
		Store:  store,
		Logger: types.NopLogger{},
		Locals: map[string]any{"level": 4.0, "base_damage": 10.0},
		Params: map[string]any{},
	}

	call := &types.Expr{
		Kind:     types.ExprCall,
		Function: "script",
		Args: []*types.Expr{
			{Kind: types.ExprLiteral, Value: "base_damage * (1 + level * 0.1)"},
		},
	}
	result, err := expr.Evaluate(ctx, call)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("computed damage: %v\n", result)
}
