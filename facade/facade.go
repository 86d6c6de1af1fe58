// Package facade implements the Game Facade: the single control surface
// over Store+Timeline+Dispatcher (LoadIR, Step, RunUntilComplete,
// Start/Stop/Pause/Resume) and the synchronous OnStep/OnDebug
// notification subscriptions.
package facade

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bittoy/idlecore/ir"
	"github.com/bittoy/idlecore/types"
)

type driverState int32

const (
	stateStopped driverState = iota
	stateRunning
	statePaused
)

// Facade is the engine's top-level entry point. It owns exactly one loaded
// module's Store and Timeline at a time; LoadIR replaces the previous
// state wholesale rather than merging into it — a hot-reload-by-swap at the
// granularity of "replace the whole simulation".
type Facade struct {
	cfg types.Config

	mu      sync.RWMutex
	loaded  *ir.Loaded
	state   atomic.Int32
	pauseMu sync.Mutex

	stepSubs  []func(types.StepNotification)
	debugSubs []func(types.DebugNotification)

	stopCh chan struct{}
	doneCh chan struct{}
}

// New returns an unloaded Facade. Call LoadIR before Step/Start.
func New(opts ...types.Option) *Facade {
	return &Facade{cfg: types.NewConfig(opts...)}
}

// LoadIR parses and wires raw IR bytes, replacing any previously loaded
// module. It is safe to call while the facade is stopped; call Stop first
// if a real-time driver loop is running.
func (f *Facade) LoadIR(raw []byte) error {
	loaded, err := ir.Load(raw, f.cfg)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = loaded
	f.loaded.Dispatcher.OnDebug(f.notifyDebug)
	return nil
}

// Step pops and dispatches exactly one event from the timeline. It reports
// false when the timeline has nothing pending.
func (f *Facade) Step() (types.StepNotification, bool, error) {
	f.mu.RLock()
	loaded := f.loaded
	f.mu.RUnlock()
	if loaded == nil {
		return types.StepNotification{}, false, &types.LoadError{Reason: "no module loaded"}
	}

	start := time.Now()
	ev, ok := loaded.Timeline.Pop()
	if !ok {
		return types.StepNotification{}, false, nil
	}

	notification, err := loaded.Dispatcher.Dispatch(ev)
	if ev.Recurring {
		loaded.Timeline.Reschedule(ev, ev.Time+ev.Interval)
	}

	stepsTotal.Inc()
	rulesFiredTotal.Add(float64(len(notification.FiredRules)))
	stepDuration.Observe(time.Since(start).Seconds())

	f.notifyStep(notification)
	return notification, true, err
}

// RunUntilComplete calls Step repeatedly until the timeline is drained or
// an error occurs, returning every notification produced along the way.
func (f *Facade) RunUntilComplete() ([]types.StepNotification, error) {
	var all []types.StepNotification
	for {
		n, ok, err := f.Step()
		if err != nil {
			if ok {
				all = append(all, n)
			}
			return all, err
		}
		if !ok {
			return all, nil
		}
		all = append(all, n)
	}
}

// Start launches a cooperative real-time driver goroutine that processes
// events in batches, yielding with runtime.Gosched() between batches
// rather than pegging a core.
func (f *Facade) Start() {
	if !f.state.CompareAndSwap(int32(stateStopped), int32(stateRunning)) {
		return
	}
	f.stopCh = make(chan struct{})
	f.doneCh = make(chan struct{})
	go f.driverLoop(f.stopCh, f.doneCh)
}

// Stop halts the driver loop and blocks until it has exited.
func (f *Facade) Stop() {
	if driverState(f.state.Load()) == stateStopped {
		return
	}
	f.Resume()
	close(f.stopCh)
	<-f.doneCh
	f.state.Store(int32(stateStopped))
}

// Pause suspends the driver loop after its current batch finishes, without
// stopping it — Resume picks back up where it left off.
func (f *Facade) Pause() {
	f.pauseMu.Lock()
	f.state.CompareAndSwap(int32(stateRunning), int32(statePaused))
}

// Resume releases a Pause.
func (f *Facade) Resume() {
	if driverState(f.state.Load()) == statePaused {
		f.state.Store(int32(stateRunning))
		f.pauseMu.Unlock()
	}
}

func (f *Facade) driverLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	batch := f.cfg.DriverBatchSize
	if batch <= 0 {
		batch = types.DefaultBatchSize
	}
	for {
		select {
		case <-stop:
			return
		default:
		}
		if driverState(f.state.Load()) == statePaused {
			// Blocks until Resume releases the gate Pause acquired.
			f.pauseMu.Lock()
			f.pauseMu.Unlock()
			runtime.Gosched()
			continue
		}
		// The gate is held for the whole batch, so Pause waits for it.
		f.pauseMu.Lock()
		for i := 0; i < batch; i++ {
			_, ok, err := f.Step()
			if err != nil {
				f.mu.RLock()
				logger := f.cfg.Logger
				f.mu.RUnlock()
				if logger != nil {
					logger.Errorf("step error: %v", err)
				}
			}
			if !ok {
				break
			}
		}
		f.pauseMu.Unlock()
		runtime.Gosched()
	}
}

// OnStep registers a synchronous subscriber invoked after every Step.
func (f *Facade) OnStep(fn func(types.StepNotification)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stepSubs = append(f.stepSubs, fn)
}

// OnDebug registers a synchronous subscriber invoked on every rule dispatch
// attempt.
func (f *Facade) OnDebug(fn func(types.DebugNotification)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.debugSubs = append(f.debugSubs, fn)
}

func (f *Facade) notifyStep(n types.StepNotification) {
	f.mu.RLock()
	subs := f.stepSubs
	loaded := f.loaded
	f.mu.RUnlock()
	if loaded != nil {
		pendingEvents.Set(float64(pendingCount(loaded)))
	}
	for _, sub := range subs {
		sub(n)
	}
}

func (f *Facade) notifyDebug(n types.DebugNotification) {
	f.mu.RLock()
	subs := f.debugSubs
	f.mu.RUnlock()
	for _, sub := range subs {
		sub(n)
	}
}

func pendingCount(loaded *ir.Loaded) int {
	return loaded.Timeline.Len()
}

// ScheduleEvent enqueues an externally-sourced event onto the loaded
// module's timeline, returning its id so callers can later CancelEvent it.
func (f *Facade) ScheduleEvent(ev *types.ScheduledEvent) (int64, error) {
	f.mu.RLock()
	loaded := f.loaded
	f.mu.RUnlock()
	if loaded == nil {
		return 0, &types.LoadError{Reason: "no module loaded"}
	}
	return loaded.Timeline.Schedule(ev), nil
}

// CancelEvent cancels a previously scheduled event by id.
func (f *Facade) CancelEvent(id int64) (types.CancellationResult, error) {
	f.mu.RLock()
	loaded := f.loaded
	f.mu.RUnlock()
	if loaded == nil {
		return types.NotCancelled, &types.LoadError{Reason: "no module loaded"}
	}
	return loaded.Timeline.Cancel(id), nil
}

// Store exposes the loaded module's store for read-only inspection (e.g.
// a UI layer polling entity state between steps).
func (f *Facade) Store() types.StoreAccessor {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.loaded == nil {
		return nil
	}
	return f.loaded.Store
}
