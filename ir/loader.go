// Package ir loads and validates IR modules, wiring a types.Module's
// declarations into a ready-to-run ecs.Store, timeline.Timeline,
// choice.Registry, and dispatch.Dispatcher.
package ir

import (
	"fmt"

	"github.com/bittoy/idlecore/choice"
	"github.com/bittoy/idlecore/dispatch"
	"github.com/bittoy/idlecore/ecs"
	"github.com/bittoy/idlecore/timeline"
	"github.com/bittoy/idlecore/types"
	"github.com/bittoy/idlecore/utils/maps"
)

// Loaded bundles the subsystems wired from one IR module.
type Loaded struct {
	Module     *types.Module
	Store      *ecs.Store
	Timeline   *timeline.Timeline
	Choices    *choice.Registry
	Dispatcher *dispatch.Dispatcher
	Functions  map[string]*types.FunctionDecl
}

// Load validates and wires raw IR bytes into a Loaded bundle.
func Load(raw []byte, cfg types.Config) (*Loaded, error) {
	module, err := types.ParseModule(raw)
	if err != nil {
		return nil, &types.LoadError{Path: "module", Reason: err.Error()}
	}
	return build(module, cfg)
}

// LoadFromMap wires a module already parsed into a generic map (e.g. by a
// YAML front-end), using mapstructure to decode it directly instead of
// round-tripping through JSON bytes.
func LoadFromMap(raw map[string]any, cfg types.Config) (*Loaded, error) {
	var module types.Module
	if err := maps.Map2Struct(raw, &module); err != nil {
		return nil, &types.LoadError{Path: "module", Reason: err.Error()}
	}
	return build(&module, cfg)
}

func build(module *types.Module, cfg types.Config) (*Loaded, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = types.DefaultLogger()
	}

	store := ecs.NewStore()
	seen := map[string]bool{}
	for _, c := range module.Components {
		if seen[c.Name] {
			return nil, &types.LoadError{Path: "components", Reason: fmt.Sprintf("duplicate component %q", c.Name)}
		}
		seen[c.Name] = true
		store.RegisterSchema(types.NewComponentSchema(c))
	}

	for _, e := range module.InitialState.Entities {
		if err := store.CreateEntityWithID(types.EntityID(e.ID)); err != nil {
			return nil, err
		}
		for component, fields := range e.Components {
			if _, ok := store.Schema(component); !ok {
				return nil, &types.LoadError{Path: fmt.Sprintf("initial_state.entities[%d]", e.ID), Reason: fmt.Sprintf("unknown component %q", component)}
			}
			if err := store.AddComponent(types.EntityID(e.ID), component, fields); err != nil {
				return nil, err
			}
		}
		for name, decl := range e.BoundFunctions {
			if err := store.SetBoundFunction(types.EntityID(e.ID), name, decl); err != nil {
				return nil, err
			}
		}
	}

	functions := map[string]*types.FunctionDecl{}
	for i := range module.Functions {
		fn := &module.Functions[i]
		if functions[fn.Name] != nil {
			return nil, &types.LoadError{Path: "functions", Reason: fmt.Sprintf("duplicate function %q", fn.Name)}
		}
		functions[fn.Name] = fn
	}

	for _, r := range module.Rules {
		for _, comp := range r.Filter.Components {
			if _, ok := store.Schema(comp); !ok {
				return nil, &types.LoadError{Path: fmt.Sprintf("rules[%s].filter", r.Name), Reason: fmt.Sprintf("unknown component %q", comp)}
			}
		}
	}

	tl := timeline.New()
	registry := choice.NewRegistry(store)
	dispatcher := dispatch.New(module.Rules, store, tl, registry, functions, cfg)

	logger.Infof("loaded module %q: %d components, %d rules, %d functions, %d entities",
		module.ModuleName, len(module.Components), len(module.Rules), len(module.Functions), len(module.InitialState.Entities))

	return &Loaded{
		Module:     module,
		Store:      store,
		Timeline:   tl,
		Choices:    registry,
		Dispatcher: dispatcher,
		Functions:  functions,
	}, nil
}
