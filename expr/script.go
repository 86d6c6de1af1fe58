package expr

import (
	"sync"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/bittoy/idlecore/types"
)

// programCache memoizes compiled expr-lang programs by source text.
// Compilation happens lazily, on first use of a given source string, since
// scripts can appear inline in IR expression trees rather than only at
// load time.
var (
	programCacheMu sync.Mutex
	programCache   = map[string]*vm.Program{}
)

// callScript implements the "script" builtin: script(source, [env]). It
// compiles source with github.com/expr-lang/expr and runs it against an
// environment built from the current locals, params, and bindings, with
// expr.AllowUndefinedVariables() so a script may reference names that
// happen not to be bound without erroring.
func callScript(ctx *types.ExecutionContext, args []any) (any, error) {
	if len(args) == 0 {
		return nil, &types.ReferenceError{Context: "script", Reason: "requires a source string argument"}
	}
	source, ok := args[0].(string)
	if !ok {
		return nil, &types.ReferenceError{Context: "script", Reason: "source must be a string"}
	}

	env := map[string]any{}
	for k, v := range ctx.Locals {
		env[k] = v
	}
	for k, v := range ctx.Params {
		env[k] = v
	}
	for k, v := range ctx.Bindings {
		env[k] = v
	}
	if len(args) > 1 {
		if extra, ok := args[1].(map[string]any); ok {
			for k, v := range extra {
				env[k] = v
			}
		}
	}

	program, err := compiledProgram(source, env)
	if err != nil {
		return nil, &types.ReferenceError{Context: "script", Reason: err.Error()}
	}

	out, err := exprlang.Run(program, env)
	if err != nil {
		return nil, &types.ReferenceError{Context: "script", Reason: err.Error()}
	}
	return out, nil
}

func compiledProgram(source string, env map[string]any) (*vm.Program, error) {
	programCacheMu.Lock()
	defer programCacheMu.Unlock()
	if p, ok := programCache[source]; ok {
		return p, nil
	}
	p, err := exprlang.Compile(source, exprlang.Env(env), exprlang.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	programCache[source] = p
	return p, nil
}
