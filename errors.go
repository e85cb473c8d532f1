package tagtimer

import "errors"

// ErrMissingTag is recorded on a task started without a tag.
var ErrMissingTag = errors.New("tagtimer: missing tag")

// ErrMissingMode is recorded on a task started without choosing CountDown, LoopExecute or DelayExecute.
var ErrMissingMode = errors.New("tagtimer: missing mode")

// ErrMissingTick is recorded on a countdown task started without a tick callback.
var ErrMissingTick = errors.New("tagtimer: countdown requires a tick callback")

// ErrMissingComplete is recorded on a loop or delay task started without a complete callback.
var ErrMissingComplete = errors.New("tagtimer: loop and delay require a complete callback")

// ErrUnknownMode is returned when an invalid mode name is parsed.
var ErrUnknownMode = errors.New("tagtimer: unknown mode")

// ErrUnknownState is returned when an invalid state name is parsed.
var ErrUnknownState = errors.New("tagtimer: unknown state")

// ErrTagNotFound is returned by the Inspector when no journal exists for a tag.
var ErrTagNotFound = errors.New("tagtimer: tag not found")
