package tagtimer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/UniQw/tagtimer/internal/journal"
	ikeys "github.com/UniQw/tagtimer/internal/keys"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// DefaultEventsChannel is the Pub/Sub channel used when RecorderConfig.Publish is set.
var DefaultEventsChannel = ikeys.Events()

// RecorderConfig defines the configuration for a Recorder.
type RecorderConfig struct {
	// HistorySize caps the per-tag event history. Zero means 100; negative keeps everything.
	HistorySize int64
	// Buffer is the number of events queued before new ones are dropped. Zero means 1024.
	Buffer int
	// Publish enables live Pub/Sub of every event on Channel.
	Publish bool
	// Channel overrides DefaultEventsChannel.
	Channel string
	// WriteTimeout bounds each Redis round trip. Zero means 2s.
	WriteTimeout time.Duration
	// Logger is used for write failures and drops.
	Logger Logger
}

// Recorder is an Observer that journals task events to Redis. Observe never
// blocks the execution goroutine: events are queued and written by a single
// background goroutine, and dropped when the queue is full.
type Recorder struct {
	rdb     redis.UniversalClient
	cfg     RecorderConfig
	encoder Encoder
	log     Logger
	warn    *rate.Limiter

	ch      chan Event
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewRecorder creates a recorder and starts its writer goroutine.
func NewRecorder(rdb redis.UniversalClient, cfg RecorderConfig) *Recorder {
	if cfg.HistorySize == 0 {
		cfg.HistorySize = 100
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1024
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 2 * time.Second
	}
	if cfg.Publish && cfg.Channel == "" {
		cfg.Channel = DefaultEventsChannel
	}
	l := cfg.Logger
	if l == nil {
		l = NewFmtLogger()
	}
	r := &Recorder{
		rdb:     rdb,
		cfg:     cfg,
		encoder: &JSONEncoder{},
		log:     l,
		// at most one warning per second, so a dead Redis cannot flood the log
		warn: rate.NewLimiter(rate.Every(time.Second), 1),
		ch:   make(chan Event, cfg.Buffer),
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for ev := range r.ch {
			r.write(ev)
		}
	}()
	return r
}

// Observe queues ev for writing.
func (r *Recorder) Observe(ev Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.ch <- ev:
	default:
		n := r.dropped.Add(1)
		if r.warn.Allow() {
			r.log.Warnf("recorder: buffer full, dropping events: tag=%s kind=%s dropped=%d", ev.Tag, ev.Kind, n)
		}
	}
}

// Close stops accepting events, flushes the queue and waits for the writer.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()
	r.wg.Wait()
}

// Dropped returns how many events were discarded because the buffer was full.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

// Failed returns how many events could not be written to Redis.
func (r *Recorder) Failed() uint64 { return r.failed.Load() }

func (r *Recorder) write(ev Event) {
	raw, err := r.encoder.Encode(ev)
	if err != nil {
		r.failed.Add(1)
		r.log.Errorf("recorder: encode failed: tag=%s kind=%s err=%v", ev.Tag, ev.Kind, err)
		return
	}
	rec := &journal.Record{
		Kind:      string(ev.Kind),
		TaskID:    ev.TaskID,
		Tag:       ev.Tag,
		Mode:      string(ev.Mode),
		State:     string(ev.State),
		Remaining: ev.Remaining,
		Fires:     ev.Fires,
		AtMs:      ev.AtMs,
		Err:       ev.Err,
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
	defer cancel()
	channel := ""
	if r.cfg.Publish {
		channel = r.cfg.Channel
	}
	if err := journal.Write(ctx, r.rdb, ikeys.For(ev.Tag), rec, raw, r.cfg.HistorySize, channel); err != nil {
		n := r.failed.Add(1)
		if r.warn.Allow() {
			r.log.Warnf("recorder: write failed: tag=%s kind=%s failed=%d err=%v", ev.Tag, ev.Kind, n, err)
		}
	}
}
