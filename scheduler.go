package tagtimer

import (
	"runtime/debug"
	"sync"

	"github.com/UniQw/tagtimer/internal/queue"
	"github.com/UniQw/tagtimer/internal/registry"
)

// Scheduler owns one execution goroutine and the tag registry. Create one per
// owning component with New; independent schedulers share nothing.
type Scheduler struct {
	q           *queue.Queue
	reg         *registry.Registry[*Task]
	log         Logger
	observers   []Observer
	middlewares []Middleware
	replace     ReplacePolicy

	mu      sync.Mutex
	started bool
}

// New creates a scheduler. Tasks may be started right away; they fire once
// Start launches the execution goroutine.
func New(opts ...Option) *Scheduler {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	l := cfg.logger
	if l == nil {
		l = NewFmtLogger()
	}
	return &Scheduler{
		q:           queue.New(queue.Config{Clock: cfg.clock, Logger: l}),
		reg:         registry.New[*Task](),
		log:         l,
		observers:   cfg.observers,
		middlewares: cfg.middlewares,
		replace:     cfg.replace,
	}
}

// Start launches the execution goroutine. It is idempotent and non-blocking.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.log.Warnf("scheduler already started; ignoring Start()")
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()
	s.log.Infof("starting scheduler: tasks=%d", s.reg.Len())
	s.q.Start()
}

// Stop cancels every task and halts the execution goroutine. A callback that
// is running finishes first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.log.Warnf("scheduler not started; ignoring Stop()")
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()
	s.log.Infof("stopping scheduler: tasks=%d", s.reg.Len())

	// no callback runs past this point
	s.q.Stop()
	for _, t := range s.reg.Drain() {
		t.Cancel()
	}
	// shadowed tasks still hold queue entries but no tag
	for _, k := range s.q.Keys() {
		t, ok := k.(*Task)
		if !ok {
			continue
		}
		if cur, ok := s.reg.Get(t.tag); ok && cur == t {
			continue
		}
		t.Cancel()
	}
}

// NewTask begins configuring a task.
func (s *Scheduler) NewTask() *Builder {
	return &Builder{s: s}
}

func (s *Scheduler) start(t *Task) {
	if err := t.validate(); err != nil {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		s.log.Warnf("task not started: tag=%q mode=%q err=%v", t.tag, t.mode, err)
		t.emit(EventReject, err.Error())
		return
	}

	t.mu.Lock()
	prev, replaced := s.reg.Put(t.tag, t)
	t.state = StateScheduled
	t.mu.Unlock()

	if replaced && prev != t {
		switch s.replace {
		case ReplaceShadow:
			s.log.Warnf("tag %q re-registered; previous task %s left running", t.tag, prev.id)
		default:
			s.log.Debugf("tag %q re-registered; cancelling previous task %s", t.tag, prev.id)
			prev.Cancel()
		}
		t.emit(EventReplace, "")
	}
	s.log.Debugf("task started: tag=%s id=%s mode=%s delay=%s period=%s take_while=%d",
		t.tag, t.id, t.mode, t.initialDelay, t.period, t.bound)
	t.emit(EventStart, "")

	// arm only after EventStart so no firing is observed before it
	t.mu.Lock()
	if t.state == StateScheduled && !s.q.HasPending(t) {
		t.submitLocked(t.initialDelay)
	}
	t.mu.Unlock()
}

// Lookup returns the task currently registered under tag.
func (s *Scheduler) Lookup(tag string) (*Task, bool) {
	if tag == "" {
		return nil, false
	}
	return s.reg.Get(tag)
}

// Cancel stops the task registered under tag. Unknown tags are ignored.
func (s *Scheduler) Cancel(tag string) *Scheduler {
	if t, ok := s.Lookup(tag); ok {
		t.Cancel()
	}
	return s
}

// Pause suspends the task registered under tag. Unknown tags are ignored.
func (s *Scheduler) Pause(tag string) *Scheduler {
	if t, ok := s.Lookup(tag); ok {
		t.Pause()
	}
	return s
}

// Resume re-arms the paused task registered under tag. Unknown tags are ignored.
func (s *Scheduler) Resume(tag string) *Scheduler {
	if t, ok := s.Lookup(tag); ok {
		t.Resume()
	}
	return s
}

// Tags returns the registered tags in sorted order.
func (s *Scheduler) Tags() []string { return s.reg.Keys() }

// Len returns the number of registered tasks.
func (s *Scheduler) Len() int { return s.reg.Len() }

// Running reports whether the execution goroutine is active.
func (s *Scheduler) Running() bool { return s.q.Running() }

func (s *Scheduler) notify(ev Event) {
	for _, o := range s.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Errorf("observer panicked: kind=%s tag=%s err=%v\n%s", ev.Kind, ev.Tag, r, debug.Stack())
				}
			}()
			o.Observe(ev)
		}()
	}
}
