package tagtimer

import "github.com/jonboulle/clockwork"

// ReplacePolicy decides what happens to a running task when another task is
// started under the same tag.
type ReplacePolicy int

const (
	// ReplaceCancel cancels the previous task before registering the new one.
	ReplaceCancel ReplacePolicy = iota
	// ReplaceShadow only replaces the lookup entry. The previous task keeps
	// its pending firing and keeps running, unreachable by tag.
	ReplaceShadow
)

type options struct {
	logger      Logger
	observers   []Observer
	middlewares []Middleware
	replace     ReplacePolicy

	// injected by tests
	clock clockwork.Clock
}

// Option configures a Scheduler during New.
type Option func(*options)

// WithLogger sets the logger. A nil logger falls back to FmtLogger.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver adds an observer notified of every task lifecycle event.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithMiddleware wraps every callback invocation. Middlewares run in the order they are added.
func WithMiddleware(mw Middleware) Option {
	return func(o *options) {
		if mw != nil {
			o.middlewares = append(o.middlewares, mw)
		}
	}
}

// WithReplacePolicy sets how duplicate tags are handled. Default is ReplaceCancel.
func WithReplacePolicy(p ReplacePolicy) Option {
	return func(o *options) {
		o.replace = p
	}
}

func withClock(c clockwork.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}
