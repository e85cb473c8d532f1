// Package plan loads task schedules from YAML and starts them on a scheduler.
//
//	tasks:
//	  - tag: heartbeat
//	    mode: loop
//	    period: 30s
//	  - tag: launch
//	    mode: countdown
//	    period: 1s
//	    take_while: 10
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/UniQw/tagtimer"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a Go duration string ("1m30s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler. Negative durations are rejected.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, raw, err)
	}
	if v < 0 {
		return fmt.Errorf("line %d: duration must be >= 0", node.Line)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Entry describes one task.
type Entry struct {
	Tag          string    `yaml:"tag"`
	Mode         string    `yaml:"mode"`
	Period       Duration  `yaml:"period"`
	InitialDelay *Duration `yaml:"initial_delay"`
	TakeWhile    int64     `yaml:"take_while"`
}

// Plan is a parsed YAML document.
type Plan struct {
	Tasks []Entry `yaml:"tasks"`
}

// Callbacks are the functions bound to one entry when the plan is applied.
type Callbacks struct {
	OnTick     func(remaining int64)
	OnComplete func()
}

// Load reads and parses the plan at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a plan. Unknown fields, unknown modes, empty or duplicate
// tags and negative bounds are errors. An empty document is an empty plan.
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Plan) validate() error {
	seen := make(map[string]struct{}, len(p.Tasks))
	for i, e := range p.Tasks {
		if e.Tag == "" {
			return fmt.Errorf("tasks[%d]: %w", i, tagtimer.ErrMissingTag)
		}
		if _, dup := seen[e.Tag]; dup {
			return fmt.Errorf("tasks[%d]: duplicate tag %q", i, e.Tag)
		}
		seen[e.Tag] = struct{}{}
		if _, err := tagtimer.ParseMode(e.Mode); err != nil {
			return fmt.Errorf("tasks[%d] (%s): %w: %q", i, e.Tag, err, e.Mode)
		}
		if e.TakeWhile < 0 {
			return fmt.Errorf("tasks[%d] (%s): take_while must be >= 0", i, e.Tag)
		}
	}
	return nil
}

// Apply starts every entry on s in document order. bind supplies the
// callbacks for each entry; a task refused by the scheduler is still returned
// and reports the reason through Err.
func (p *Plan) Apply(s *tagtimer.Scheduler, bind func(Entry) Callbacks) []*tagtimer.Task {
	out := make([]*tagtimer.Task, 0, len(p.Tasks))
	for _, e := range p.Tasks {
		b := s.NewTask().Tag(e.Tag).Period(e.Period.Std()).TakeWhile(e.TakeWhile)
		if e.InitialDelay != nil {
			b.InitialDelay(e.InitialDelay.Std())
		}
		mode, _ := tagtimer.ParseMode(e.Mode)
		switch mode {
		case tagtimer.ModeCountDown:
			b.CountDown()
		case tagtimer.ModeLoop:
			b.LoopExecute()
		case tagtimer.ModeDelay:
			b.DelayExecute()
		}
		var cb Callbacks
		if bind != nil {
			cb = bind(e)
		}
		out = append(out, b.Accept(cb.OnTick, cb.OnComplete).Start())
	}
	return out
}
