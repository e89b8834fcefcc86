// Package dedupe tracks event ids already imported so a results file can be
// replayed without double counting rounds.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper records seen event ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if not. The check and the write happen under one lock.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a failed import can be retried.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of ids currently tracked.
	Size() int
}

// eventDeduper is an in-memory Deduper. In bounded mode the oldest id is
// evicted first.
type eventDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front is oldest
	maxSize int        // <= 0 means unbounded
	seed    []string
}

// NewDeduper creates an event id deduper. Unbounded by default.
func NewDeduper(opts ...Option) Deduper {
	d := &eventDeduper{
		seen:  make(map[string]*list.Element),
		order: list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, id := range d.seed {
		d.record(id)
	}
	d.seed = nil
	return d
}

func (d *eventDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[id]; ok {
		// Replays refresh the id so it outlives newer one-off ids.
		d.order.MoveToBack(el)
		return true
	}
	d.record(id)
	return false
}

func (d *eventDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[id]; ok {
		d.order.Remove(el)
		delete(d.seen, id)
	}
}

func (d *eventDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// record must be called with d.mu held or before d is shared.
func (d *eventDeduper) record(id string) {
	if _, ok := d.seen[id]; ok {
		return
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
	}
	d.seen[id] = d.order.PushBack(id)
}
