// Package registry holds the tag-addressed lookup table shared by callers and
// the execution goroutine.
package registry

import (
	"sort"
	"sync"
)

// Registry is a concurrency-safe map from tag to value.
type Registry[V comparable] struct {
	mu sync.RWMutex
	m  map[string]V
}

// New creates an empty registry.
func New[V comparable]() *Registry[V] {
	return &Registry[V]{m: make(map[string]V)}
}

// Put stores v under tag and returns the value it replaced, if any.
func (r *Registry[V]) Put(tag string, v V) (prev V, replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, replaced = r.m[tag]
	r.m[tag] = v
	return prev, replaced
}

// Get returns the value stored under tag.
func (r *Registry[V]) Get(tag string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[tag]
	return v, ok
}

// CompareAndDelete removes tag only while it still maps to v.
func (r *Registry[V]) CompareAndDelete(tag string, v V) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.m[tag]
	if !ok || cur != v {
		return false
	}
	delete(r.m, tag)
	return true
}

// Len returns the number of tags.
func (r *Registry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}

// Keys returns all tags in sorted order.
func (r *Registry[V]) Keys() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Values returns the stored values ordered by tag.
func (r *Registry[V]) Values() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.m))
	for k := range r.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.m[k])
	}
	return out
}

// Drain removes every entry and returns the removed values.
func (r *Registry[V]) Drain() []V {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]V, 0, len(r.m))
	for _, v := range r.m {
		out = append(out, v)
	}
	r.m = make(map[string]V)
	return out
}
