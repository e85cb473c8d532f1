package tagtimer

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Task is one scheduling request. It is created by Builder.Start and is
// controlled either directly or through the Scheduler by its tag.
//
// remaining is only written by the execution goroutine. Control calls from
// other goroutines touch state and gen under mu and the queue's bookkeeping,
// never the countdown itself.
type Task struct {
	s            *Scheduler
	id           string
	tag          string
	mode         Mode
	initialDelay time.Duration
	period       time.Duration
	bound        int64
	onTick       func(remaining int64)
	onComplete   func()
	invoke       InvokeFunc

	remaining atomic.Int64
	fires     atomic.Uint64

	mu    sync.Mutex
	state State
	gen   uint64
	err   error
}

// ID returns the unique identifier assigned at build time.
func (t *Task) ID() string { return t.id }

// Tag returns the task's tag.
func (t *Task) Tag() string { return t.tag }

// Mode returns the task's mode.
func (t *Task) Mode() Mode { return t.mode }

// Period returns the normalized period.
func (t *Task) Period() time.Duration { return t.period }

// InitialDelay returns the normalized delay before the first firing.
func (t *Task) InitialDelay() time.Duration { return t.initialDelay }

// Remaining returns the countdown value the next tick will report.
func (t *Task) Remaining() int64 { return t.remaining.Load() }

// Fires returns how many firings have been executed.
func (t *Task) Fires() uint64 { return t.fires.Load() }

// State returns the current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the validation error that kept the task from starting, or nil.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Started reports whether the task passed validation and was scheduled.
func (t *Task) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err == nil && t.state != StateIdle
}

func (t *Task) validate() error {
	switch {
	case t.mode == ModeNone:
		return ErrMissingMode
	case t.tag == "":
		return ErrMissingTag
	case t.mode == ModeCountDown && t.onTick == nil:
		return ErrMissingTick
	case (t.mode == ModeLoop || t.mode == ModeDelay) && t.onComplete == nil:
		return ErrMissingComplete
	}
	return nil
}

// submitLocked arms the next firing. Call with t.mu held.
func (t *Task) submitLocked(delay time.Duration) {
	t.gen++
	gen := t.gen
	if delay < 0 {
		delay = 0
	}
	t.s.q.Submit(t, delay, func() { t.fire(gen) })
	t.state = StateScheduled
}

// fire runs on the execution goroutine. A firing whose generation no longer
// matches was superseded by pause, resume or cancel and is dropped.
func (t *Task) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state != StateScheduled {
		t.mu.Unlock()
		return
	}
	t.state = StateFiring
	t.fires.Add(1)

	if t.mode == ModeLoop {
		// re-arm before the callback so a cancel from inside it sticks
		t.submitLocked(t.period)
		t.mu.Unlock()
		t.call(EventComplete, 0)
		return
	}
	t.mu.Unlock()

	switch t.mode {
	case ModeDelay:
		t.call(EventComplete, 0)
		t.finish()
	case ModeCountDown:
		rem := t.remaining.Load()
		t.call(EventTick, rem)
		if rem > 0 {
			t.remaining.Store(rem - 1)
			t.mu.Lock()
			if t.state == StateFiring {
				t.submitLocked(t.period)
			}
			t.mu.Unlock()
			return
		}
		t.mu.Lock()
		cancelled := t.state == StateDone
		t.mu.Unlock()
		if cancelled {
			return
		}
		t.call(EventComplete, 0)
		t.finish()
	}
}

// call invokes the user callback through the middleware chain. Panics are
// contained here so the queue and later firings are unaffected.
func (t *Task) call(kind EventKind, rem int64) {
	inv := Invocation{TaskID: t.id, Tag: t.tag, Mode: t.mode, Kind: kind, Remaining: rem}
	defer func() {
		if r := recover(); r != nil {
			t.s.log.Errorf("callback panicked: tag=%s id=%s kind=%s err=%v\n%s", t.tag, t.id, kind, r, debug.Stack())
			t.emit(EventPanic, fmt.Sprint(r))
			return
		}
		t.emit(kind, "")
	}()
	t.invoke(inv)
}

func (t *Task) baseInvoke(inv Invocation) {
	switch inv.Kind {
	case EventTick:
		if t.onTick != nil {
			t.onTick(inv.Remaining)
		}
	case EventComplete:
		if t.onComplete != nil {
			t.onComplete()
		}
	}
}

// finish retires a task whose work is over.
func (t *Task) finish() {
	t.mu.Lock()
	if t.state == StateDone {
		t.mu.Unlock()
		return
	}
	t.state = StateDone
	t.gen++
	t.s.q.Cancel(t)
	t.mu.Unlock()

	t.s.reg.CompareAndDelete(t.tag, t)
	t.s.log.Debugf("task done: tag=%s id=%s fires=%d", t.tag, t.id, t.Fires())
	t.emit(EventDone, "")
}

// Cancel stops the task for good. An in-progress callback is not interrupted.
// Cancelling a finished or never-started task is a no-op.
func (t *Task) Cancel() {
	t.mu.Lock()
	if t.state == StateDone || t.state == StateIdle {
		t.mu.Unlock()
		return
	}
	t.state = StateDone
	t.gen++
	t.s.q.Cancel(t)
	t.mu.Unlock()

	t.s.reg.CompareAndDelete(t.tag, t)
	t.s.log.Debugf("task cancelled: tag=%s id=%s", t.tag, t.id)
	t.emit(EventCancel, "")
}

// Pause drops the pending firing but keeps the task's state and registration.
func (t *Task) Pause() {
	t.mu.Lock()
	if t.state != StateScheduled && t.state != StateFiring {
		t.mu.Unlock()
		return
	}
	t.state = StatePaused
	t.gen++
	t.s.q.Cancel(t)
	t.mu.Unlock()

	t.s.log.Debugf("task paused: tag=%s id=%s", t.tag, t.id)
	t.emit(EventPause, "")
}

// Resume re-arms a paused task. The next firing happens one period after the
// call (the full initial delay for delay tasks). It is a no-op unless the task
// is paused with nothing pending.
func (t *Task) Resume() {
	t.mu.Lock()
	if t.state != StatePaused || t.s.q.HasPending(t) {
		t.mu.Unlock()
		return
	}
	delay := t.period
	if t.mode == ModeDelay {
		delay = t.initialDelay
	}
	t.submitLocked(delay)
	t.mu.Unlock()

	t.s.log.Debugf("task resumed: tag=%s id=%s next_in=%s", t.tag, t.id, delay)
	t.emit(EventResume, "")
}

// Pending reports whether a firing is queued for the task.
func (t *Task) Pending() bool { return t.s.q.HasPending(t) }

func (t *Task) emit(kind EventKind, errText string) {
	if len(t.s.observers) == 0 {
		return
	}
	ev := Event{
		Kind:      kind,
		TaskID:    t.id,
		Tag:       t.tag,
		Mode:      t.mode,
		State:     t.State(),
		Remaining: t.remaining.Load(),
		Fires:     t.fires.Load(),
		AtMs:      t.s.q.Now().UnixMilli(),
		Err:       errText,
	}
	t.s.notify(ev)
}
