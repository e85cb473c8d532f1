package tagtimer

// Invocation describes one callback call: a tick with the current remaining
// value, or a complete.
type Invocation struct {
	TaskID    string
	Tag       string
	Mode      Mode
	Kind      EventKind
	Remaining int64
}

// InvokeFunc runs the user callback for an invocation.
type InvokeFunc func(inv Invocation)

// Middleware is a function that wraps an InvokeFunc to provide cross-cutting concerns.
type Middleware func(InvokeFunc) InvokeFunc

func (s *Scheduler) wrapInvoke(h InvokeFunc) InvokeFunc {
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		h = s.middlewares[i](h)
	}
	return h
}
