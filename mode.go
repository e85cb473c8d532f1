package tagtimer

// Mode selects how a task fires. Use the exported constants instead of raw
// strings to avoid typos.
type Mode string

const (
	// ModeNone is the zero value; a task without a mode never starts.
	ModeNone Mode = ""
	// ModeCountDown ticks with a decreasing counter every period, then completes.
	ModeCountDown Mode = "countdown"
	// ModeLoop runs the complete callback every period until cancelled.
	ModeLoop Mode = "loop"
	// ModeDelay runs the complete callback once after the initial delay.
	ModeDelay Mode = "delay"
)

// AllModes lists every valid mode in a stable order.
var AllModes = []Mode{ModeCountDown, ModeLoop, ModeDelay}

// String returns the raw string value of the mode.
func (m Mode) String() string { return string(m) }

// ParseMode converts a string into a Mode, returning an error for unknown values.
func ParseMode(s string) (Mode, error) {
	switch s {
	case string(ModeCountDown):
		return ModeCountDown, nil
	case string(ModeLoop):
		return ModeLoop, nil
	case string(ModeDelay):
		return ModeDelay, nil
	default:
		return ModeNone, ErrUnknownMode
	}
}

// State is the lifecycle position of a task.
type State string

const (
	// StateIdle: built but not started (or refused by validation).
	StateIdle State = "idle"
	// StateScheduled: a firing is pending in the timer queue.
	StateScheduled State = "scheduled"
	// StateFiring: a callback is executing.
	StateFiring State = "firing"
	// StatePaused: no firing is pending but all task state is kept.
	StatePaused State = "paused"
	// StateDone: cancelled or finished; the task never fires again.
	StateDone State = "done"
)

// AllStates lists every valid task state in a stable order.
var AllStates = []State{StateIdle, StateScheduled, StateFiring, StatePaused, StateDone}

// String returns the raw string value of the state.
func (s State) String() string { return string(s) }

// ParseState converts a string into a State, returning an error for unknown values.
func ParseState(s string) (State, error) {
	switch s {
	case string(StateIdle):
		return StateIdle, nil
	case string(StateScheduled):
		return StateScheduled, nil
	case string(StateFiring):
		return StateFiring, nil
	case string(StatePaused):
		return StatePaused, nil
	case string(StateDone):
		return StateDone, nil
	default:
		return "", ErrUnknownState
	}
}
