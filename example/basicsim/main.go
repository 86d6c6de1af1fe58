// Command basicsim loads a small IR module and runs it to completion,
// printing each step's fired rules to stdout.
package main

import (
	"fmt"
	"log"

	"github.com/bittoy/idlecore/facade"
	"github.com/bittoy/idlecore/types"
)

const module = `{
	"version": "1",
	"module": "basicsim",
	"components": [
		{"id": 1, "name": "health", "fields": [{"name": "hp", "type": "integer", "default": 100}]}
	],
	"rules": [
		{
			"id": 1, "name": "regen",
			"trigger": {"type": "event", "event": "tick", "bindings": {"actor": "source"}},
			"actions": [
				{"type": "modify", "entity": {"type": "var", "name": "actor"}, "component": "health", "field": "hp", "op": "add", "value": {"type": "literal", "value": 1}}
			]
		}
	],
	"functions": [],
	"initial_state": {
		"entities": [{"id": 0, "components": {"health": {"hp": 90}}}]
	}
}`

func main() {
	f := facade.New(types.WithLogger(types.DefaultLogger()))
	if err := f.LoadIR([]byte(module)); err != nil {
		log.Fatalf("load: %v", err)
	}

	f.OnStep(func(n types.StepNotification) {
		fmt.Printf("t=%.0f fired=%v warnings=%v\n", n.Time, n.FiredRules, n.Warnings)
	})

	if _, err := f.ScheduleEvent(&types.ScheduledEvent{Name: "tick", Source: 0, Target: types.NoEntity}); err != nil {
		log.Fatalf("schedule: %v", err)
	}

	if _, err := f.RunUntilComplete(); err != nil {
		log.Fatalf("run: %v", err)
	}

	hp, _ := f.Store().GetField(0, "health", "hp")
	fmt.Printf("final hp: %v\n", hp)
}
