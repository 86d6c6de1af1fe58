// Package choice implements the bound (choice) function registry: per-
// entity functions invoked by name during rule evaluation, backed either
// by an IR expression tree or by a JavaScript source body executed through
// the embedded goja engine.
package choice

import (
	"fmt"
	"sync"

	"github.com/bittoy/idlecore/expr"
	"github.com/bittoy/idlecore/types"
	"github.com/bittoy/idlecore/utils/js"
)

// Registry resolves and invokes bound functions against the store,
// satisfying types.ChoiceCaller.
type Registry struct {
	store types.StoreAccessor

	mu      sync.Mutex
	engines map[string]*js.Engine // keyed by entity id + function name
}

// NewRegistry returns a Registry that looks up bound functions on store.
func NewRegistry(store types.StoreAccessor) *Registry {
	return &Registry{store: store, engines: map[string]*js.Engine{}}
}

// storeWithBoundFunctions is the slice of ecs.Store a Registry needs beyond
// types.StoreAccessor: looking up a bound function declaration by entity.
type storeWithBoundFunctions interface {
	BoundFunction(id types.EntityID, name string) (types.BoundFunctionDecl, bool)
}

// Call resolves the bound function named name on entity and invokes it with
// args, dispatching to the expression evaluator or the script engine
// depending on which the declaration carries.
func (r *Registry) Call(ctx *types.ExecutionContext, entity types.EntityID, name string, args []any) (any, error) {
	withFns, ok := r.store.(storeWithBoundFunctions)
	if !ok {
		return nil, &types.ReferenceError{Context: "choice", Reason: "store does not support bound functions"}
	}
	decl, ok := withFns.BoundFunction(entity, name)
	if !ok {
		return nil, &types.ReferenceError{Context: "choice", Reason: fmt.Sprintf("entity %d has no bound function %q", entity, name)}
	}

	if decl.Source != "" {
		return r.callScript(entity, name, decl, args)
	}
	return r.callExpr(ctx, entity, decl, args)
}

func (r *Registry) callExpr(ctx *types.ExecutionContext, entity types.EntityID, decl types.BoundFunctionDecl, args []any) (any, error) {
	params := map[string]any{"self": entity}
	for i, p := range decl.Params {
		if i < len(args) {
			params[p.Name] = args[i]
		}
	}
	child := ctx.Child(params)
	child.Bindings = map[string]types.EntityID{"self": entity}
	v, err := expr.Evaluate(child, decl.Body)
	ctx.Warnings = append(ctx.Warnings, child.Warnings...)
	return v, err
}

func (r *Registry) callScript(entity types.EntityID, name string, decl types.BoundFunctionDecl, args []any) (any, error) {
	key := fmt.Sprintf("%d:%s", entity, name)
	r.mu.Lock()
	engine, ok := r.engines[key]
	if !ok {
		var err error
		engine, err = js.New(decl.Source)
		if err != nil {
			r.mu.Unlock()
			return nil, &types.ReferenceError{Context: "choice", Reason: err.Error()}
		}
		r.engines[key] = engine
	}
	r.mu.Unlock()

	callArgs := make([]any, 0, len(args)+1)
	callArgs = append(callArgs, int64(entity))
	callArgs = append(callArgs, args...)
	return engine.Call(name, callArgs...)
}
