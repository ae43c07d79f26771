// File: internal/catalog/cache.go
package catalog

import (
	"sync/atomic"
	"time"
)

// snapshot is an immutable value with the time it was fetched.
type snapshot[T any] struct {
	value     T
	fetchedAt time.Time
}

func (s *snapshot[T]) fresh(now time.Time, ttl time.Duration) bool {
	return s != nil && now.Sub(s.fetchedAt) < ttl
}

// holder keeps one snapshot, replaced wholesale on refresh.
type holder[T any] struct {
	p atomic.Pointer[snapshot[T]]
}

func (h *holder[T]) load() *snapshot[T] { return h.p.Load() }

func (h *holder[T]) store(v T, at time.Time) {
	h.p.Store(&snapshot[T]{value: v, fetchedAt: at})
}

// keyedHolder is a bounded map of snapshots. Writers copy the map and swap it
// in; a concurrent writer may drop another's entry, which only costs a refetch.
type keyedHolder[T any] struct {
	p   atomic.Pointer[map[string]*snapshot[T]]
	max int
}

func newKeyedHolder[T any](limit int) *keyedHolder[T] {
	if limit <= 0 {
		limit = 1
	}
	h := &keyedHolder[T]{max: limit}
	empty := map[string]*snapshot[T]{}
	h.p.Store(&empty)
	return h
}

func (h *keyedHolder[T]) load(key string) *snapshot[T] {
	return (*h.p.Load())[key]
}

func (h *keyedHolder[T]) store(key string, v T, at time.Time) {
	cur := *h.p.Load()
	next := make(map[string]*snapshot[T], len(cur)+1)
	for k, s := range cur {
		next[k] = s
	}
	if _, exists := next[key]; !exists && len(next) >= h.max {
		oldestKey := ""
		var oldest time.Time
		for k, s := range next {
			if oldestKey == "" || s.fetchedAt.Before(oldest) {
				oldestKey, oldest = k, s.fetchedAt
			}
		}
		delete(next, oldestKey)
	}
	next[key] = &snapshot[T]{value: v, fetchedAt: at}
	h.p.Store(&next)
}

func (h *keyedHolder[T]) size() int {
	return len(*h.p.Load())
}
