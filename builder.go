package tagtimer

import (
	"time"

	"github.com/google/uuid"
)

// Builder accumulates a task configuration. Every method returns the builder
// so calls can be chained; Start validates and schedules.
type Builder struct {
	s            *Scheduler
	tag          string
	mode         Mode
	initialDelay time.Duration
	delaySet     bool
	period       time.Duration
	takeWhile    int64
	onTick       func(remaining int64)
	onComplete   func()
}

// Tag sets the key used to cancel, pause or resume the task later.
func (b *Builder) Tag(tag string) *Builder {
	b.tag = tag
	return b
}

// InitialDelay sets the delay before the first firing.
func (b *Builder) InitialDelay(d time.Duration) *Builder {
	b.initialDelay = d
	b.delaySet = true
	return b
}

// Period sets the interval between firings. Unless InitialDelay is set, a
// loop task waits one period before its first firing and a countdown task
// ticks immediately.
func (b *Builder) Period(d time.Duration) *Builder {
	b.period = d
	return b
}

// PeriodDelay sets both the interval and the delay before the first firing.
func (b *Builder) PeriodDelay(period, initialDelay time.Duration) *Builder {
	b.period = period
	return b.InitialDelay(initialDelay)
}

// TakeWhile sets the countdown bound: the first tick reports n, the last 0.
func (b *Builder) TakeWhile(n int64) *Builder {
	b.takeWhile = n
	return b
}

// OnTick sets the countdown callback.
func (b *Builder) OnTick(fn func(remaining int64)) *Builder {
	b.onTick = fn
	return b
}

// OnComplete sets the callback run when the task's work is done (every
// firing for loop tasks).
func (b *Builder) OnComplete(fn func()) *Builder {
	b.onComplete = fn
	return b
}

// Accept sets both callbacks at once.
func (b *Builder) Accept(tick func(remaining int64), complete func()) *Builder {
	b.onTick = tick
	b.onComplete = complete
	return b
}

// CountDown selects countdown mode.
func (b *Builder) CountDown() *Builder {
	b.mode = ModeCountDown
	return b
}

// LoopExecute selects loop mode.
func (b *Builder) LoopExecute() *Builder {
	b.mode = ModeLoop
	return b
}

// DelayExecute selects delay mode.
func (b *Builder) DelayExecute() *Builder {
	b.mode = ModeDelay
	return b
}

// Start validates the configuration, registers the task under its tag and
// arms its first firing. It always returns the task; a task that failed
// validation is inert and reports the reason through Err.
func (b *Builder) Start() *Task {
	t := b.build()
	b.s.start(t)
	return t
}

func (b *Builder) build() *Task {
	period := b.period
	if period < 0 {
		period = 0
	}
	delay := b.initialDelay
	if !b.delaySet {
		switch b.mode {
		case ModeLoop:
			delay = period
		default:
			delay = 0
		}
	}
	if delay < 0 {
		delay = 0
	}
	bound := b.takeWhile
	if bound < 0 {
		bound = 0
	}

	t := &Task{
		s:            b.s,
		id:           uuid.NewString(),
		tag:          b.tag,
		mode:         b.mode,
		initialDelay: delay,
		period:       period,
		bound:        bound,
		onTick:       b.onTick,
		onComplete:   b.onComplete,
		state:        StateIdle,
	}
	t.remaining.Store(bound)
	t.invoke = b.s.wrapInvoke(t.baseInvoke)
	return t
}
