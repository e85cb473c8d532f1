package journal

import (
	"context"
	"sort"
	"strconv"

	"github.com/UniQw/tagtimer/internal/keys"
	"github.com/redis/go-redis/v9"
)

// Record is the journal's view of one task event. Its JSON layout matches the
// public Event type so history entries decode into either.
type Record struct {
	Kind      string `json:"kind"`
	TaskID    string `json:"task_id"`
	Tag       string `json:"tag"`
	Mode      string `json:"mode"`
	State     string `json:"state"`
	Remaining int64  `json:"remaining"`
	Fires     uint64 `json:"fires"`
	AtMs      int64  `json:"at_ms"`
	Err       string `json:"err,omitempty"`
}

// Write stores rec as the tag's latest status, prepends raw to its history
// (trimmed to historySize when > 0), indexes the tag and optionally publishes
// raw on channel.
func Write(ctx context.Context, rdb redis.UniversalClient, k keys.Tag, rec *Record, raw []byte, historySize int64, channel string) error {
	_, err := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		fields := []any{
			"task_id", rec.TaskID,
			"tag", rec.Tag,
			"mode", rec.Mode,
			"state", rec.State,
			"remaining", rec.Remaining,
			"fires", strconv.FormatUint(rec.Fires, 10),
			"last_kind", rec.Kind,
			"last_at_ms", rec.AtMs,
			"last_err", rec.Err,
		}
		p.HSet(ctx, k.Status, fields...)
		p.LPush(ctx, k.History, raw)
		if historySize > 0 {
			p.LTrim(ctx, k.History, 0, historySize-1)
		}
		p.SAdd(ctx, keys.Tags(), rec.Tag)
		if channel != "" {
			p.Publish(ctx, channel, raw)
		}
		return nil
	})
	return err
}

// ReadStatus returns the latest status for a tag, or nil when none exists.
func ReadStatus(ctx context.Context, rdb redis.UniversalClient, k keys.Tag) (*Record, error) {
	m, err := rdb.HGetAll(ctx, k.Status).Result()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}
	rec := &Record{
		Kind:   m["last_kind"],
		TaskID: m["task_id"],
		Tag:    m["tag"],
		Mode:   m["mode"],
		State:  m["state"],
		Err:    m["last_err"],
	}
	// malformed numbers read as zero
	rec.Remaining, _ = strconv.ParseInt(m["remaining"], 10, 64)
	rec.Fires, _ = strconv.ParseUint(m["fires"], 10, 64)
	rec.AtMs, _ = strconv.ParseInt(m["last_at_ms"], 10, 64)
	return rec, nil
}

// History returns up to n raw entries, newest first. n <= 0 returns all.
func History(ctx context.Context, rdb redis.UniversalClient, k keys.Tag, n int64) ([]string, error) {
	stop := int64(-1)
	if n > 0 {
		stop = n - 1
	}
	return rdb.LRange(ctx, k.History, 0, stop).Result()
}

// Tags returns every journaled tag in sorted order.
func Tags(ctx context.Context, rdb redis.UniversalClient) ([]string, error) {
	tags, err := rdb.SMembers(ctx, keys.Tags()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(tags)
	return tags, nil
}

// Forget deletes a tag's status, history and index entry.
func Forget(ctx context.Context, rdb redis.UniversalClient, tag string) error {
	k := keys.For(tag)
	_, err := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, k.Status, k.History)
		p.SRem(ctx, keys.Tags(), tag)
		return nil
	})
	return err
}
