// Package keys centralizes Redis key construction for the firing journal.
// It is kept in internal to avoid leaking key formats to public API.
package keys

// Tags is the Set of every tag that has a journal.
func Tags() string { return "tagtimer:tags" }

// Events is the default Pub/Sub channel for live events.
func Events() string { return "tagtimer:events" }

// Tag holds all precomputed keys for a tag to avoid repeated concatenations.
type Tag struct {
	Status  string
	History string
}

// For returns a set of precomputed keys for the provided tag.
func For(tag string) Tag {
	prefix := "tagtimer:{" + tag + "}:"
	return Tag{
		Status:  prefix + "status",
		History: prefix + "history",
	}
}
