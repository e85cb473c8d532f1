package tagtimer

import (
	"context"
	"strings"
	"time"

	"github.com/UniQw/tagtimer/internal/journal"
	ikeys "github.com/UniQw/tagtimer/internal/keys"
	"github.com/redis/go-redis/v9"
)

// Status is the latest journaled state of a tag.
type Status struct {
	TaskID    string
	Tag       string
	Mode      Mode
	State     State
	Remaining int64
	Fires     uint64
	LastKind  EventKind
	LastAt    time.Time
	LastErr   string
}

// Inspector reads the journal written by a Recorder.
type Inspector struct {
	rdb     redis.UniversalClient
	encoder Encoder
}

// NewInspector creates a new Inspector.
func NewInspector(rdb redis.UniversalClient) *Inspector {
	return &Inspector{rdb: rdb, encoder: &JSONEncoder{}}
}

// Tags returns every tag that has a journal, sorted.
func (i *Inspector) Tags(ctx context.Context) ([]string, error) {
	return journal.Tags(ctx, i.rdb)
}

// Status returns the latest state recorded for tag.
// It returns ErrTagNotFound if the tag was never journaled.
func (i *Inspector) Status(ctx context.Context, tag string) (*Status, error) {
	rec, err := journal.ReadStatus(ctx, i.rdb, ikeys.For(tag))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrTagNotFound
	}
	return &Status{
		TaskID:    rec.TaskID,
		Tag:       rec.Tag,
		Mode:      Mode(rec.Mode),
		State:     State(rec.State),
		Remaining: rec.Remaining,
		Fires:     rec.Fires,
		LastKind:  EventKind(rec.Kind),
		LastAt:    time.UnixMilli(rec.AtMs),
		LastErr:   rec.Err,
	}, nil
}

// History returns up to n events for tag, newest first. n <= 0 returns all
// retained events. Entries that fail to decode are skipped.
func (i *Inspector) History(ctx context.Context, tag string, n int64) ([]Event, error) {
	raws, err := journal.History(ctx, i.rdb, ikeys.For(tag), n)
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(raws))
	for _, s := range raws {
		var ev Event
		if err := i.encoder.Decode([]byte(s), &ev); err == nil {
			out = append(out, ev)
		}
	}
	return out, nil
}

// Forget removes everything journaled for tag.
func (i *Inspector) Forget(ctx context.Context, tag string) error {
	return journal.Forget(ctx, i.rdb, tag)
}

// ExtractTag parses a tag from a raw Redis key (e.g. "tagtimer:{fetch}:status").
// It returns an empty string if the format is invalid.
func ExtractTag(key string) string {
	start := strings.Index(key, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(key, "}")
	if end == -1 || end <= start+1 {
		return ""
	}
	return key[start+1 : end]
}
