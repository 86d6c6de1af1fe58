// Package ecs implements the entity/component store: dense entity ids,
// per-component field bags, type coercion against a declared schema, and
// multi-component queries. The store is the single owner of simulation
// state; everything else (expr, action, dispatch) reads and writes through
// it via types.StoreAccessor.
package ecs

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bittoy/idlecore/types"
)

// Store holds all entities and their component data for one simulation.
// The facade's execution model is single-threaded cooperative, so mu is not
// load-bearing on the hot path — it exists so Snapshot can safely be called
// from a concurrent debug/inspection goroutine between Step() calls.
type Store struct {
	mu      sync.Mutex
	schemas map[string]types.ComponentSchema
	// entities maps entity id -> component name -> field name -> value.
	entities map[types.EntityID]map[string]map[string]any
	// boundFunctions maps entity id -> function name -> declaration, kept
	// alongside component data since clone/dangling-ref rules apply to it.
	boundFunctions map[types.EntityID]map[string]types.BoundFunctionDecl
	order          []types.EntityID // insertion order, for deterministic Query iteration
	nextID         types.EntityID
}

// NewStore returns an empty Store with no registered component schemas.
func NewStore() *Store {
	return &Store{
		schemas:        map[string]types.ComponentSchema{},
		entities:       map[types.EntityID]map[string]map[string]any{},
		boundFunctions: map[types.EntityID]map[string]types.BoundFunctionDecl{},
	}
}

// RegisterSchema records a component's field types and defaults, used by
// AddComponent to coerce and seed field values.
func (s *Store) RegisterSchema(schema types.ComponentSchema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[schema.Name] = schema
}

// Schema returns the registered schema for a component, if any.
func (s *Store) Schema(component string) (types.ComponentSchema, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schemas[component]
	return sc, ok
}

// CreateEntity allocates a new entity with the next dense id.
func (s *Store) CreateEntity() types.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createEntityLocked()
}

func (s *Store) createEntityLocked() types.EntityID {
	id := s.nextID
	s.nextID++
	s.entities[id] = map[string]map[string]any{}
	s.order = append(s.order, id)
	return id
}

// CreateEntityWithID allocates an entity at an explicit id. A request for an
// id already in use is rejected rather than silently reassigned or
// overwritten.
func (s *Store) CreateEntityWithID(id types.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entities[id]; exists {
		return &types.LoadError{Path: fmt.Sprintf("entity %d", id), Reason: "duplicate entity id"}
	}
	s.entities[id] = map[string]map[string]any{}
	s.order = append(s.order, id)
	if id >= s.nextID {
		s.nextID = id + 1
	}
	return nil
}

// HasEntity reports whether id currently exists in the store.
func (s *Store) HasEntity(id types.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entities[id]
	return ok
}

// DeleteEntity removes an entity and its component/bound-function data. It
// reports whether the entity existed. Other entities' fields that
// referenced this id are left untouched — the store never auto-nulls
// dangling entity references; callers who need that can query and null
// them explicitly via NullDanglingRefs.
func (s *Store) DeleteEntity(id types.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; !ok {
		return false
	}
	delete(s.entities, id)
	delete(s.boundFunctions, id)
	for i, e := range s.order {
		if e == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// CloneEntity creates a new entity at a fresh id with a deep copy of id's
// component data. Bound functions are copied by reference: cloning an
// entity's choice function carries the same *types.Expr body / script
// source rather than re-parsing it, since bound function bodies are
// immutable once loaded.
func (s *Store) CloneEntity(id types.EntityID) (types.EntityID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.entities[id]
	if !ok {
		return types.NoEntity, &types.ReferenceError{Context: "CloneEntity", Reason: fmt.Sprintf("entity %d does not exist", id)}
	}
	newID := s.createEntityLocked()
	s.entities[newID] = deepCloneComponents(src)
	if fns, ok := s.boundFunctions[id]; ok {
		cloned := make(map[string]types.BoundFunctionDecl, len(fns))
		for name, decl := range fns {
			cloned[name] = decl // reference copy: Body/*Expr and Source are immutable
		}
		s.boundFunctions[newID] = cloned
	}
	return newID, nil
}

// AddComponent attaches a component to id, seeding any field omitted from
// fields with its schema default and coercing every provided value to its
// declared type.
func (s *Store) AddComponent(id types.EntityID, component string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entities[id]
	if !ok {
		return &types.ReferenceError{Context: "AddComponent", Reason: fmt.Sprintf("entity %d does not exist", id)}
	}
	schema, hasSchema := s.schemas[component]
	data := map[string]any{}
	if hasSchema {
		for name, def := range schema.Default {
			data[name] = def
		}
	}
	for name, v := range fields {
		if hasSchema {
			if ft, ok := schema.Types[name]; ok {
				data[name] = coerce(ft, v)
				continue
			}
		}
		data[name] = v
	}
	ent[component] = data
	return nil
}

// HasComponent reports whether id carries component.
func (s *Store) HasComponent(id types.EntityID, component string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entities[id]
	if !ok {
		return false
	}
	_, ok = ent[component]
	return ok
}

// GetComponent returns the raw field map for id's component, if present.
// The returned map is owned by the store; callers must not mutate it.
func (s *Store) GetComponent(id types.EntityID, component string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	data, ok := ent[component]
	return data, ok
}

// GetField reads one field of one component on one entity.
func (s *Store) GetField(id types.EntityID, component, field string) (any, bool) {
	data, ok := s.GetComponent(id, component)
	if !ok {
		return nil, false
	}
	v, ok := data[field]
	return v, ok
}

// SetField writes one field of one component on one entity, coercing the
// value to the component's declared field type if a schema is registered.
// If the entity lacks the component, it is first added with its schema
// defaults.
func (s *Store) SetField(id types.EntityID, component, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entities[id]
	if !ok {
		return &types.ReferenceError{Context: "SetField", Reason: fmt.Sprintf("entity %d does not exist", id)}
	}
	data, ok := ent[component]
	if !ok {
		data = map[string]any{}
		if schema, ok := s.schemas[component]; ok {
			for name, def := range schema.Default {
				data[name] = def
			}
		}
		ent[component] = data
	}
	if schema, ok := s.schemas[component]; ok {
		if ft, ok := schema.Types[field]; ok {
			data[field] = coerce(ft, value)
			return nil
		}
	}
	data[field] = value
	return nil
}

// Query returns, in insertion order, every entity that carries all of the
// given components. With zero components it returns every entity.
func (s *Store) Query(components ...string) []types.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.EntityID
	for _, id := range s.order {
		ent := s.entities[id]
		match := true
		for _, c := range components {
			if _, ok := ent[c]; !ok {
				match = false
				break
			}
		}
		if match {
			out = append(out, id)
		}
	}
	return out
}

// SetBoundFunction attaches a choice function to an entity.
func (s *Store) SetBoundFunction(id types.EntityID, name string, decl types.BoundFunctionDecl) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; !ok {
		return &types.ReferenceError{Context: "SetBoundFunction", Reason: fmt.Sprintf("entity %d does not exist", id)}
	}
	fns, ok := s.boundFunctions[id]
	if !ok {
		fns = map[string]types.BoundFunctionDecl{}
		s.boundFunctions[id] = fns
	}
	fns[name] = decl
	return nil
}

// BoundFunction looks up a choice function bound to an entity.
func (s *Store) BoundFunction(id types.EntityID, name string) (types.BoundFunctionDecl, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fns, ok := s.boundFunctions[id]
	if !ok {
		return types.BoundFunctionDecl{}, false
	}
	decl, ok := fns[name]
	return decl, ok
}

// NullDanglingRefs scans every entity's component.field named by pairs and
// sets it to NoEntity wherever it currently points at an id that no longer
// exists. This is an opt-in sweep — the store never runs it on its own —
// for callers who want auto-nulling after a batch of despawns.
func (s *Store) NullDanglingRefs(pairs ...[2]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		ent := s.entities[id]
		for _, pair := range pairs {
			component, field := pair[0], pair[1]
			data, ok := ent[component]
			if !ok {
				continue
			}
			v, ok := data[field]
			if !ok {
				continue
			}
			ref, ok := asEntityID(v)
			if !ok {
				continue
			}
			if _, exists := s.entities[ref]; !exists {
				data[field] = types.NoEntity
			}
		}
	}
}

func asEntityID(v any) (types.EntityID, bool) {
	switch n := v.(type) {
	case types.EntityID:
		return n, true
	case int64:
		return types.EntityID(n), true
	case float64:
		return types.EntityID(n), true
	default:
		return types.NoEntity, false
	}
}

// Snapshot returns a deep-cloned view of every entity's component data,
// keyed by entity id (a Go map, so iterating it has no defined order) —
// used by debug tooling and tests, never on the hot execution path.
func (s *Store) Snapshot() map[types.EntityID]map[string]map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[types.EntityID]map[string]map[string]any, len(s.entities))
	ids := make([]types.EntityID, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		out[id] = deepCloneComponents(s.entities[id])
	}
	return out
}

func deepCloneComponents(src map[string]map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(src))
	for comp, fields := range src {
		clone := make(map[string]any, len(fields))
		for k, v := range fields {
			clone[k] = deepCloneValue(v)
		}
		out[comp] = clone
	}
	return out
}

func deepCloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = deepCloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = deepCloneValue(vv)
		}
		return out
	default:
		return v
	}
}
