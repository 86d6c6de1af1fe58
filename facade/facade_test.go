package facade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/idlecore/facade"
	"github.com/bittoy/idlecore/types"
)

const ringModule = `{
	"version": "1",
	"module": "ring",
	"components": [
		{"id": 1, "name": "counter", "fields": [{"name": "n", "type": "integer", "default": 0}]}
	],
	"rules": [
		{
			"id": 1, "name": "increment",
			"trigger": {"type": "event", "event": "tick", "bindings": {"actor": "source"}},
			"actions": [
				{"type": "modify", "entity": {"type": "var", "name": "actor"}, "component": "counter", "field": "n", "op": "add", "value": {"type": "literal", "value": 1}}
			]
		}
	],
	"functions": [],
	"initial_state": {
		"entities": [{"id": 0, "components": {"counter": {"n": 0}}}]
	}
}`

func TestFacadeLoadAndStep(t *testing.T) {
	f := facade.New()
	require.NoError(t, f.LoadIR([]byte(ringModule)))

	var notifications []types.StepNotification
	f.OnStep(func(n types.StepNotification) { notifications = append(notifications, n) })

	store := f.Store()
	require.NotNil(t, store)

	// The sample module schedules nothing itself, so this exercises Step's
	// "nothing pending" path.
	_, ok, err := f.Step()
	require.NoError(t, err)
	assert.False(t, ok, "a freshly loaded module with no scheduled events has nothing to step")
	assert.Empty(t, notifications)
}

func TestFacadeScheduleEventDrivesDispatch(t *testing.T) {
	f := facade.New()
	require.NoError(t, f.LoadIR([]byte(ringModule)))

	_, err := f.ScheduleEvent(&types.ScheduledEvent{Name: "tick", Source: 0, Target: types.NoEntity})
	require.NoError(t, err)

	notifications, err := f.RunUntilComplete()
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, []string{"increment"}, notifications[0].FiredRules)

	n, ok := f.Store().GetField(0, "counter", "n")
	require.True(t, ok)
	assert.Equal(t, int64(1), n)
}

func TestFacadeStepErrorsWithoutLoadedModule(t *testing.T) {
	f := facade.New()
	_, _, err := f.Step()
	require.Error(t, err)
	var loadErr *types.LoadError
	assert.ErrorAs(t, err, &loadErr)
}
