// Package timeline implements the deterministic event scheduler: a min-heap
// of ScheduledEvents ordered by (time, sequence), so that two events due at
// the same logical time always fire in the order they were scheduled.
package timeline

import (
	"container/heap"

	"github.com/bittoy/idlecore/types"
)

// Timeline is a priority queue of pending events, plus bookkeeping to let
// Cancel remove an event by id in O(log n) instead of a linear scan.
type Timeline struct {
	pq      eventHeap
	byID    map[int64]*heapEntry
	nextID  int64
	nextSeq uint64
	now     float64
}

// New returns an empty Timeline starting at logical time 0.
func New() *Timeline {
	t := &Timeline{byID: map[int64]*heapEntry{}}
	heap.Init(&t.pq)
	return t
}

// Now returns the logical time of the most recently popped event (the
// "current" simulation time as far as the timeline is concerned).
func (t *Timeline) Now() float64 { return t.now }

// Schedule enqueues ev at ev.Time, assigning it a fresh id and insertion
// sequence, and returns that id. Recurring events should go through
// ScheduleRecurring instead so their id survives reschedule.
func (t *Timeline) Schedule(ev *types.ScheduledEvent) int64 {
	t.nextID++
	ev.ID = t.nextID
	ev.Seq = t.nextSeq
	t.nextSeq++
	entry := &heapEntry{event: ev}
	t.byID[ev.ID] = entry
	heap.Push(&t.pq, entry)
	return ev.ID
}

// ScheduleRecurring enqueues ev like Schedule, but marks it recurring with
// the given interval: when it is popped, the caller is expected to call
// Reschedule to re-arm it under the same id rather than scheduling a new
// event.
func (t *Timeline) ScheduleRecurring(ev *types.ScheduledEvent, interval float64) int64 {
	ev.Recurring = true
	ev.Interval = interval
	return t.Schedule(ev)
}

// Reschedule re-arms a recurring event at a new time, keeping its id and
// sequence bookkeeping so Cancel still finds it under the original id.
func (t *Timeline) Reschedule(ev *types.ScheduledEvent, at float64) {
	ev.Time = at
	ev.Seq = t.nextSeq
	t.nextSeq++
	entry := &heapEntry{event: ev}
	t.byID[ev.ID] = entry
	heap.Push(&t.pq, entry)
}

// Cancel removes a pending event by id. Cancelling an event already popped,
// or an id that was never scheduled, is reported as NotCancelled rather
// than an error.
func (t *Timeline) Cancel(id int64) types.CancellationResult {
	entry, ok := t.byID[id]
	if !ok || entry.index < 0 {
		return types.NotCancelled
	}
	heap.Remove(&t.pq, entry.index)
	delete(t.byID, id)
	return types.Cancelled
}

// HasEvents reports whether any event is still pending.
func (t *Timeline) HasEvents() bool { return t.pq.Len() > 0 }

// Len returns the number of events currently pending.
func (t *Timeline) Len() int { return t.pq.Len() }

// Peek returns the next event without removing it.
func (t *Timeline) Peek() (*types.ScheduledEvent, bool) {
	if t.pq.Len() == 0 {
		return nil, false
	}
	return t.pq[0].event, true
}

// Pop removes and returns the earliest-due event, advancing Now() to its
// time. Ties on Time are broken by scheduling order (Seq), guaranteeing
// deterministic replay for identical input.
func (t *Timeline) Pop() (*types.ScheduledEvent, bool) {
	if t.pq.Len() == 0 {
		return nil, false
	}
	entry := heap.Pop(&t.pq).(*heapEntry)
	delete(t.byID, entry.event.ID)
	t.now = entry.event.Time
	return entry.event, true
}

type heapEntry struct {
	event *types.ScheduledEvent
	index int
}

type eventHeap []*heapEntry

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].event.Time != h[j].event.Time {
		return h[i].event.Time < h[j].event.Time
	}
	return h[i].event.Seq < h[j].event.Seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	entry := x.(*heapEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*h = old[:n-1]
	return entry
}
