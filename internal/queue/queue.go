package queue

import (
	"container/heap"
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Logger is a minimal logging interface used internally by the queue.
// It mirrors the public logger in the root package to avoid an import cycle.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

type Config struct {
	Clock  clockwork.Clock
	Logger Logger
}

type entry struct {
	key   any
	when  time.Time
	seq   uint64
	fn    func()
	index int
}

// entryHeap orders entries by due time, then by submission order.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Queue delivers callbacks after a delay on a single goroutine. Every key has
// at most one pending delivery; submitting again for the same key replaces it.
type Queue struct {
	mu    sync.Mutex
	h     entryHeap
	byKey map[any]*entry
	seq   uint64

	clk  clockwork.Clock
	log  Logger
	wake chan struct{}

	lifeMu  sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an idle queue. Call Start to launch the delivery goroutine, or
// drive it manually with RunDue.
func New(cfg Config) *Queue {
	clk := cfg.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	lg := cfg.Logger
	if lg == nil {
		lg = noopLogger{}
	}
	return &Queue{
		byKey: make(map[any]*entry),
		clk:   clk,
		log:   lg,
		wake:  make(chan struct{}, 1),
	}
}

// Now returns the queue's notion of the current time.
func (q *Queue) Now() time.Time { return q.clk.Now() }

// Submit schedules fn to run after delay under key. A negative delay is
// rejected and nothing is scheduled.
func (q *Queue) Submit(key any, delay time.Duration, fn func()) bool {
	if delay < 0 || fn == nil {
		return false
	}
	q.mu.Lock()
	q.seq++
	when := q.clk.Now().Add(delay)
	if e, ok := q.byKey[key]; ok {
		e.when = when
		e.seq = q.seq
		e.fn = fn
		heap.Fix(&q.h, e.index)
	} else {
		e := &entry{key: key, when: when, seq: q.seq, fn: fn}
		heap.Push(&q.h, e)
		q.byKey[key] = e
	}
	q.mu.Unlock()
	q.notify()
	return true
}

// Cancel drops the pending delivery for key. It reports whether one existed.
func (q *Queue) Cancel(key any) bool {
	q.mu.Lock()
	e, ok := q.byKey[key]
	if ok {
		heap.Remove(&q.h, e.index)
		delete(q.byKey, key)
	}
	q.mu.Unlock()
	if ok {
		q.notify()
	}
	return ok
}

// HasPending reports whether key has an outstanding delivery.
func (q *Queue) HasPending(key any) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.byKey[key]
	return ok
}

// Len returns the number of pending deliveries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}

// NextDue returns the due time of the earliest pending delivery.
func (q *Queue) NextDue() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 {
		return time.Time{}, false
	}
	return q.h[0].when, true
}

// Keys returns the keys that have a pending delivery, in no particular order.
func (q *Queue) Keys() []any {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]any, 0, len(q.byKey))
	for k := range q.byKey {
		out = append(out, k)
	}
	return out
}

// RunDue executes every delivery that is due at the moment of the call, in
// (due time, submission) order, on the calling goroutine. Deliveries submitted
// while running are left for the next call. It returns how many ran.
func (q *Queue) RunDue() int {
	q.mu.Lock()
	limit := q.seq
	q.mu.Unlock()

	n := 0
	for {
		q.mu.Lock()
		if len(q.h) == 0 {
			q.mu.Unlock()
			return n
		}
		e := q.h[0]
		if e.when.After(q.clk.Now()) || e.seq > limit {
			q.mu.Unlock()
			return n
		}
		heap.Pop(&q.h)
		delete(q.byKey, e.key)
		q.mu.Unlock()

		q.deliver(e)
		n++
	}
}

func (q *Queue) deliver(e *entry) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Errorf("queue: delivery panicked: %v\n%s", r, debug.Stack())
		}
	}()
	e.fn()
}

// Start launches the delivery goroutine. It is idempotent.
func (q *Queue) Start() {
	q.lifeMu.Lock()
	defer q.lifeMu.Unlock()
	if q.started {
		q.log.Warnf("queue already started; ignoring Start()")
		return
	}
	q.started = true
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.loop(ctx)
	}()
}

// Stop halts the delivery goroutine and waits for it to exit. Pending
// deliveries are kept.
func (q *Queue) Stop() {
	q.lifeMu.Lock()
	if !q.started {
		q.lifeMu.Unlock()
		return
	}
	q.started = false
	cancel := q.cancel
	q.lifeMu.Unlock()

	cancel()
	q.wg.Wait()
}

// Running reports whether the delivery goroutine is active.
func (q *Queue) Running() bool {
	q.lifeMu.Lock()
	defer q.lifeMu.Unlock()
	return q.started
}

func (q *Queue) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		next, ok := q.NextDue()
		var tc <-chan time.Time
		var tm clockwork.Timer
		if ok {
			d := next.Sub(q.clk.Now())
			if d <= 0 {
				q.RunDue()
				continue
			}
			tm = q.clk.NewTimer(d)
			tc = tm.Chan()
		}

		select {
		case <-ctx.Done():
			if tm != nil {
				tm.Stop()
			}
			return
		case <-q.wake:
			if tm != nil {
				tm.Stop()
			}
		case <-tc:
			q.RunDue()
		}
	}
}

func (q *Queue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
