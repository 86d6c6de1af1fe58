// Package dispatch implements the rule dispatcher: matching a fired event
// against the module's rules in IR declaration order, resolving which
// entity (or entities) each matching rule fires for, evaluating its
// condition, and running its actions.
package dispatch

import (
	"fmt"
	"math/rand"

	uuid "github.com/gofrs/uuid/v5"

	"github.com/bittoy/idlecore/action"
	"github.com/bittoy/idlecore/expr"
	"github.com/bittoy/idlecore/types"
)

// debugNamespace seeds the deterministic UUIDv5 span ids attached to debug
// notifications, so two identical replays produce byte-identical traces —
// a random UUIDv4 would break that invariant.
var debugNamespace = uuid.NewV5(uuid.NamespaceOID, "idlecore.dispatch")

// Dispatcher matches events against rules, in the exact order the IR
// declared them, and runs whichever rules match.
type Dispatcher struct {
	rules     []types.RuleDecl
	store     types.StoreAccessor
	timeline  types.TimelineAccessor
	choices   types.ChoiceCaller
	functions map[string]*types.FunctionDecl
	logger    types.Logger
	config    types.Config
	rng       *rand.Rand

	debugSeq uint64
	onDebug  func(types.DebugNotification)
}

// New builds a Dispatcher over rules, evaluated in the order given —
// callers must pass rules in IR declaration order since that order is the
// dispatcher's only tie-breaker between rules that match the same event.
// The dispatcher owns one *rand.Rand, seeded from cfg.RandSeed, shared by
// every execution context it builds: the RNG is part of a loaded module's
// state, so replaying the same seed against the same event sequence draws
// the same random/random_range results every time.
func New(rules []types.RuleDecl, store types.StoreAccessor, tl types.TimelineAccessor, choices types.ChoiceCaller, functions map[string]*types.FunctionDecl, cfg types.Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = types.DefaultLogger()
	}
	seed := cfg.RandSeed
	if seed == 0 {
		seed = types.DefaultRandSeed
	}
	return &Dispatcher{
		rules:     rules,
		store:     store,
		timeline:  tl,
		choices:   choices,
		functions: functions,
		logger:    logger,
		config:    cfg,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// OnDebug registers a callback invoked for every dispatch attempt, matched
// or not.
func (d *Dispatcher) OnDebug(fn func(types.DebugNotification)) {
	d.onDebug = fn
}

// Dispatch matches ev against every rule in declaration order and runs the
// actions of each rule that matches. A rule's failure to fire (condition
// false, entity set empty, condition or action error) does not stop
// evaluation of subsequent rules — dispatch always attempts every rule once
// per event. Each error is also recorded as a warning, and the first one is
// returned once every rule has been attempted.
func (d *Dispatcher) Dispatch(ev *types.ScheduledEvent) (types.StepNotification, error) {
	notification := types.StepNotification{Time: ev.Time, Event: ev}

	var firstErr error
	for i := range d.rules {
		rule := &d.rules[i]
		if rule.Trigger.Event != ev.Name {
			continue
		}
		if err := d.tryRule(rule, ev, &notification); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return notification, firstErr
}

func (d *Dispatcher) tryRule(rule *types.RuleDecl, ev *types.ScheduledEvent, notification *types.StepNotification) error {
	entities := d.resolveEntitySet(rule, ev)
	if len(entities) == 0 {
		d.emitDebug(rule, types.NoEntity, false, false, nil)
		return nil
	}

	var firstErr error
	for _, entity := range entities {
		ctx := d.buildContext(rule, ev, entity)
		matched := true
		if rule.Condition != nil {
			cond, err := expr.Evaluate(ctx, rule.Condition)
			if err != nil {
				d.emitDebug(rule, entity, true, false, err)
				notification.Warnings = append(notification.Warnings, types.EvaluationWarning{Rule: rule.Name, Reason: err.Error()})
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			matched = truthy(cond)
		}
		if !matched {
			d.emitDebug(rule, entity, true, false, nil)
			continue
		}

		err := action.Execute(ctx, rule.Actions)
		notification.Warnings = append(notification.Warnings, ctx.Warnings...)
		if err != nil {
			d.emitDebug(rule, entity, true, false, err)
			notification.Warnings = append(notification.Warnings, types.EvaluationWarning{Rule: rule.Name, Reason: err.Error()})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		d.emitDebug(rule, entity, true, true, nil)
		notification.FiredRules = append(notification.FiredRules, rule.Name)
	}
	return firstErr
}

// resolveEntitySet picks the entities a rule fires for, in strict
// precedence order:
//  1. an explicit "source" trigger binding — fire once, for ev.Source
//  2. an explicit "target" trigger binding — fire once, for ev.Target
//  3. any other trigger binding value — it names a key in ev.Fields; fire
//     once, for the entity id carried there
//  4. a filter.components store query — fire for every entity the query
//     returns, in store insertion order
//  5. fallback: every entity currently in the store
func (d *Dispatcher) resolveEntitySet(rule *types.RuleDecl, ev *types.ScheduledEvent) []types.EntityID {
	for _, value := range rule.Trigger.Bindings {
		if value == "source" && ev.Source != types.NoEntity {
			return []types.EntityID{ev.Source}
		}
	}
	for _, value := range rule.Trigger.Bindings {
		if value == "target" && ev.Target != types.NoEntity {
			return []types.EntityID{ev.Target}
		}
	}
	for _, value := range rule.Trigger.Bindings {
		if value == "source" || value == "target" {
			continue
		}
		if v, ok := ev.Fields[value]; ok {
			if id, ok := asEntityID(v); ok {
				return []types.EntityID{id}
			}
		}
	}
	if len(rule.Filter.Components) > 0 {
		return d.store.Query(rule.Filter.Components...)
	}
	return d.store.Query()
}

func (d *Dispatcher) buildContext(rule *types.RuleDecl, ev *types.ScheduledEvent, entity types.EntityID) *types.ExecutionContext {
	bindings := map[string]types.EntityID{"entity": entity}
	for name, value := range rule.Trigger.Bindings {
		switch value {
		case "source":
			if ev.Source != types.NoEntity {
				bindings[name] = ev.Source
			}
		case "target":
			if ev.Target != types.NoEntity {
				bindings[name] = ev.Target
			}
		default:
			if v, ok := ev.Fields[value]; ok {
				if id, ok := asEntityID(v); ok {
					bindings[name] = id
				}
			}
		}
	}
	if ev.Source != types.NoEntity {
		bindings["source"] = ev.Source
	}
	if ev.Target != types.NoEntity {
		bindings["target"] = ev.Target
	}

	return &types.ExecutionContext{
		Store:     d.store,
		Timeline:  d.timeline,
		Choices:   d.choices,
		Logger:    d.logger,
		Config:    d.config,
		Functions: d.functions,
		Event:     ev,
		Bindings:  bindings,
		Locals:    map[string]any{},
		Params:    map[string]any{},
		Rand:      d.rng.Float64,
	}
}

func (d *Dispatcher) emitDebug(rule *types.RuleDecl, entity types.EntityID, matched, fired bool, err error) {
	if d.onDebug == nil {
		return
	}
	d.debugSeq++
	spanID := uuid.NewV5(debugNamespace, fmt.Sprintf("%s:%d", rule.Name, d.debugSeq)).String()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	d.onDebug(types.DebugNotification{
		SpanID:  spanID,
		Rule:    rule.Name,
		Entity:  entity,
		Matched: matched,
		Fired:   fired,
		Error:   msg,
	})
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
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
