package timeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/idlecore/timeline"
	"github.com/bittoy/idlecore/types"
)

func TestPopOrdersByTimeThenSequence(t *testing.T) {
	tl := timeline.New()
	tl.Schedule(&types.ScheduledEvent{Name: "b", Time: 5})
	tl.Schedule(&types.ScheduledEvent{Name: "a", Time: 1})
	tl.Schedule(&types.ScheduledEvent{Name: "c", Time: 5})

	first, ok := tl.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", first.Name)

	second, ok := tl.Pop()
	require.True(t, ok)
	assert.Equal(t, "b", second.Name, "ties on time resolve by scheduling order")

	third, ok := tl.Pop()
	require.True(t, ok)
	assert.Equal(t, "c", third.Name)

	assert.False(t, tl.HasEvents())
}

func TestCancelRemovesPendingEvent(t *testing.T) {
	tl := timeline.New()
	id := tl.Schedule(&types.ScheduledEvent{Name: "x", Time: 10})
	tl.Schedule(&types.ScheduledEvent{Name: "y", Time: 20})

	assert.Equal(t, types.Cancelled, tl.Cancel(id))
	assert.Equal(t, types.NotCancelled, tl.Cancel(id), "cancelling twice reports not-cancelled")

	ev, ok := tl.Pop()
	require.True(t, ok)
	assert.Equal(t, "y", ev.Name)
}

func TestNowAdvancesToPoppedEventTime(t *testing.T) {
	tl := timeline.New()
	tl.Schedule(&types.ScheduledEvent{Name: "tick", Time: 42})
	assert.Equal(t, float64(0), tl.Now())
	tl.Pop()
	assert.Equal(t, float64(42), tl.Now())
}

func TestRecurringEventKeepsIDAcrossReschedule(t *testing.T) {
	tl := timeline.New()
	ev := &types.ScheduledEvent{Name: "tick", Time: 1}
	id := tl.ScheduleRecurring(ev, 1)

	popped, ok := tl.Pop()
	require.True(t, ok)
	assert.Equal(t, id, popped.ID)

	tl.Reschedule(popped, popped.Time+popped.Interval)
	poppedAgain, ok := tl.Pop()
	require.True(t, ok)
	assert.Equal(t, id, poppedAgain.ID, "recurring events retain their id across reschedule")
	assert.Equal(t, float64(2), poppedAgain.Time)
}
