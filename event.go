package tagtimer

import "time"

// EventKind names a task lifecycle event.
type EventKind string

const (
	EventStart    EventKind = "start"
	EventReject   EventKind = "reject"
	EventReplace  EventKind = "replace"
	EventTick     EventKind = "tick"
	EventComplete EventKind = "complete"
	EventPause    EventKind = "pause"
	EventResume   EventKind = "resume"
	EventCancel   EventKind = "cancel"
	EventDone     EventKind = "done"
	EventPanic    EventKind = "panic"
)

// Event describes something that happened to a task. Firing events (tick,
// complete, done, panic) are emitted on the execution goroutine; control
// events are emitted on the goroutine that issued the call.
type Event struct {
	Kind      EventKind `json:"kind"`
	TaskID    string    `json:"task_id"`
	Tag       string    `json:"tag"`
	Mode      Mode      `json:"mode"`
	State     State     `json:"state"`
	Remaining int64     `json:"remaining"`
	Fires     uint64    `json:"fires"`
	AtMs      int64     `json:"at_ms"`
	Err       string    `json:"err,omitempty"`
}

// At returns the event time.
func (e Event) At() time.Time { return time.UnixMilli(e.AtMs) }

// Observer receives task events. Implementations must not block; the
// execution goroutine waits for Observe to return.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }
