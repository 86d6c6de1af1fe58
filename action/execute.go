// Package action implements the action executor: the statement-level
// control flow (let/if/loop/while) and simulation-mutating actions
// (modify/schedule/emit/spawn/despawn/clone/call).
package action

import (
	"github.com/bittoy/idlecore/expr"
	"github.com/bittoy/idlecore/types"
)

// Execute runs a sequence of actions against ctx in order, stopping at the
// first action that returns an error.
func Execute(ctx *types.ExecutionContext, actions []types.Action) error {
	for i := range actions {
		if err := execOne(ctx, &actions[i]); err != nil {
			return err
		}
	}
	return nil
}

func execOne(ctx *types.ExecutionContext, a *types.Action) error {
	switch a.Kind {
	case types.ActionModify:
		return execModify(ctx, a)
	case types.ActionSchedule:
		return execSchedule(ctx, a)
	case types.ActionEmit:
		return execEmit(ctx, a)
	case types.ActionSpawn:
		return execSpawn(ctx, a)
	case types.ActionDespawn:
		return execDespawn(ctx, a)
	case types.ActionClone:
		return execClone(ctx, a)
	case types.ActionLet:
		return execLet(ctx, a)
	case types.ActionIf:
		return execIf(ctx, a)
	case types.ActionLoop:
		return execLoop(ctx, a)
	case types.ActionWhile:
		return execWhile(ctx, a)
	case types.ActionCall:
		_, err := expr.Evaluate(ctx, a.Call)
		return err
	default:
		ctx.Warnf("action", "unknown action kind %q; ignored", a.Kind)
		return nil
	}
}

func execModify(ctx *types.ExecutionContext, a *types.Action) error {
	entity, err := evalEntity(ctx, a.Entity)
	if err != nil {
		return err
	}
	newValue, err := expr.Evaluate(ctx, a.Value)
	if err != nil {
		return err
	}
	if a.ModifyOp != types.ModifySet && a.ModifyOp != "" {
		current, ok := ctx.Store.GetField(entity, a.Component, a.Field)
		if !ok || current == nil {
			current = 0.0
		}
		newValue = applyModifyOp(a.ModifyOp, current, newValue)
	}
	return ctx.Store.SetField(entity, a.Component, a.Field, newValue)
}

func applyModifyOp(op types.ModifyOp, current, delta any) any {
	cf, cok := toFloat(current)
	df, dok := toFloat(delta)
	if !cok || !dok {
		return delta
	}
	switch op {
	case types.ModifyAdd:
		return cf + df
	case types.ModifySubtract:
		return cf - df
	case types.ModifyMultiply:
		return cf * df
	case types.ModifyDivide:
		return cf / df
	default:
		return delta
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func execSchedule(ctx *types.ExecutionContext, a *types.Action) error {
	ev, err := buildEvent(ctx, a)
	if err != nil {
		return err
	}
	if a.Recurring != nil {
		recurring, err := expr.Evaluate(ctx, a.Recurring)
		if err != nil {
			return err
		}
		if truthy(recurring) {
			interval := 0.0
			if a.Interval != nil {
				iv, err := expr.Evaluate(ctx, a.Interval)
				if err != nil {
					return err
				}
				interval, _ = toFloat(iv)
			}
			id := ctx.Timeline.ScheduleRecurring(ev, interval)
			if a.Name != "" {
				ctx.Locals[a.Name] = id
			}
			return nil
		}
	}
	id := ctx.Timeline.Schedule(ev)
	if a.Name != "" {
		ctx.Locals[a.Name] = id
	}
	return nil
}

// execEmit schedules an event at the current time (fire immediately on the
// next dispatch pass), distinguishing it from "schedule" only by the
// implicit zero delay.
func execEmit(ctx *types.ExecutionContext, a *types.Action) error {
	ev, err := buildEvent(ctx, a)
	if err != nil {
		return err
	}
	ev.Time = ctx.Timeline.Now()
	ctx.Timeline.Schedule(ev)
	return nil
}

func buildEvent(ctx *types.ExecutionContext, a *types.Action) (*types.ScheduledEvent, error) {
	ev := &types.ScheduledEvent{Name: a.Event, Source: types.NoEntity, Target: types.NoEntity}
	if a.Source != nil {
		id, err := evalEntity(ctx, a.Source)
		if err != nil {
			return nil, err
		}
		ev.Source = id
	}
	if a.Target != nil {
		id, err := evalEntity(ctx, a.Target)
		if err != nil {
			return nil, err
		}
		ev.Target = id
	}
	if len(a.Fields) > 0 {
		ev.Fields = map[string]any{}
		for k, e := range a.Fields {
			v, err := expr.Evaluate(ctx, e)
			if err != nil {
				return nil, err
			}
			ev.Fields[k] = v
		}
	}
	if a.Delay != nil {
		delay, err := expr.Evaluate(ctx, a.Delay)
		if err != nil {
			return nil, err
		}
		df, _ := toFloat(delay)
		ev.Time = ctx.Timeline.Now() + df
	} else {
		ev.Time = ctx.Timeline.Now()
	}
	return ev, nil
}

func execSpawn(ctx *types.ExecutionContext, a *types.Action) error {
	id := ctx.Store.CreateEntity()
	for component, fields := range a.Components {
		data := map[string]any{}
		for field, e := range fields {
			v, err := expr.Evaluate(ctx, e)
			if err != nil {
				return err
			}
			data[field] = v
		}
		if err := ctx.Store.AddComponent(id, component, data); err != nil {
			return err
		}
	}
	if a.Name != "" {
		ctx.Locals[a.Name] = id
	}
	return nil
}

func execDespawn(ctx *types.ExecutionContext, a *types.Action) error {
	entity, err := evalEntity(ctx, a.Entity)
	if err != nil {
		return err
	}
	ctx.Store.DeleteEntity(entity)
	return nil
}

func execClone(ctx *types.ExecutionContext, a *types.Action) error {
	entity, err := evalEntity(ctx, a.Entity)
	if err != nil {
		return err
	}
	clone, err := ctx.Store.CloneEntity(entity)
	if err != nil {
		return err
	}
	if a.Name != "" {
		ctx.Locals[a.Name] = clone
	}
	if len(a.Overrides) > 0 {
		overrideCtx := *ctx
		overrideCtx.Locals = map[string]any{a.Name: clone}
		for k, v := range ctx.Locals {
			overrideCtx.Locals[k] = v
		}
		for i := range a.Overrides {
			if a.Overrides[i].Entity == nil {
				a.Overrides[i].Entity = &types.Expr{Kind: types.ExprVar, Name: a.Name}
			}
		}
		return Execute(&overrideCtx, a.Overrides)
	}
	return nil
}

func execLet(ctx *types.ExecutionContext, a *types.Action) error {
	v, err := expr.Evaluate(ctx, a.Value)
	if err != nil {
		return err
	}
	if ctx.Locals == nil {
		ctx.Locals = map[string]any{}
	}
	ctx.Locals[a.Name] = v
	return nil
}

func execIf(ctx *types.ExecutionContext, a *types.Action) error {
	cond, err := expr.Evaluate(ctx, a.Condition)
	if err != nil {
		return err
	}
	if truthy(cond) {
		return Execute(ctx, a.ThenActions)
	}
	return Execute(ctx, a.ElseActions)
}

func execLoop(ctx *types.ExecutionContext, a *types.Action) error {
	v, err := expr.Evaluate(ctx, a.Iterable)
	if err != nil {
		return err
	}
	list, ok := v.([]any)
	if !ok {
		ctx.Warnf(a.Variable, "loop over non-list value; skipped")
		return nil
	}
	for _, item := range list {
		ctx.Locals[a.Variable] = item
		if err := Execute(ctx, a.Body); err != nil {
			return err
		}
	}
	return nil
}

func execWhile(ctx *types.ExecutionContext, a *types.Action) error {
	limit := ctx.Config.MaxWhileIterations
	if limit <= 0 {
		limit = types.DefaultMaxWhileIterations
	}
	for i := 0; i < limit; i++ {
		cond, err := expr.Evaluate(ctx, a.Condition)
		if err != nil {
			return err
		}
		if !truthy(cond) {
			return nil
		}
		if err := Execute(ctx, a.Body); err != nil {
			return err
		}
	}
	ctx.Warnf("while", "iteration cap (%d) reached; loop terminated", limit)
	return nil
}

func evalEntity(ctx *types.ExecutionContext, e *types.Expr) (types.EntityID, error) {
	v, err := expr.Evaluate(ctx, e)
	if err != nil {
		return types.NoEntity, err
	}
	switch n := v.(type) {
	case types.EntityID:
		return n, nil
	case int64:
		return types.EntityID(n), nil
	case float64:
		return types.EntityID(n), nil
	default:
		return types.NoEntity, &types.ReferenceError{Context: "entity", Reason: "expression did not evaluate to an entity id"}
	}
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
