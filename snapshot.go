package tagtimer

// TaskInfo is a point-in-time view of a registered task.
type TaskInfo struct {
	ID             string `json:"id"`
	Tag            string `json:"tag"`
	Mode           Mode   `json:"mode"`
	State          State  `json:"state"`
	Remaining      int64  `json:"remaining"`
	Fires          uint64 `json:"fires"`
	PeriodMs       int64  `json:"period_ms"`
	InitialDelayMs int64  `json:"initial_delay_ms"`
	Pending        bool   `json:"pending"`
}

// Info returns a view of the task.
func (t *Task) Info() TaskInfo {
	return TaskInfo{
		ID:             t.id,
		Tag:            t.tag,
		Mode:           t.mode,
		State:          t.State(),
		Remaining:      t.remaining.Load(),
		Fires:          t.fires.Load(),
		PeriodMs:       t.period.Milliseconds(),
		InitialDelayMs: t.initialDelay.Milliseconds(),
		Pending:        t.Pending(),
	}
}

// Snapshot lists every registered task ordered by tag.
func (s *Scheduler) Snapshot() []TaskInfo {
	tasks := s.reg.Values()
	out := make([]TaskInfo, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Info())
	}
	return out
}

// EncodeSnapshot returns the snapshot as JSON.
func (s *Scheduler) EncodeSnapshot() ([]byte, error) {
	var enc Encoder = &JSONEncoder{}
	return enc.Encode(s.Snapshot())
}
