// Package dedupe tracks recently seen entry keys so an upload retried by the
// tracker is only ingested once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen entry keys to ensure at-most-once ingestion.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets a key so it can be retried, e.g. after the queue
	// rejected the entry it belonged to.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type slot struct {
	key  string
	live bool
}

// inMemoryDeduper keeps at most maxSize keys in a ring and evicts the oldest
// recorded key first. A maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // key -> ring slot, -1 when unbounded
	ring    []slot
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]slot, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.ring == nil {
		d.seen[key] = -1
		d.size.Add(1)
		return false
	}

	// The write cursor always points at the oldest slot.
	if old := d.ring[d.next]; old.live {
		delete(d.seen, old.key)
		d.size.Add(-1)
	}
	d.ring[d.next] = slot{key: key, live: true}
	d.seen[key] = d.next
	d.next = (d.next + 1) % len(d.ring)
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if i >= 0 {
		d.ring[i] = slot{}
	}
	d.size.Add(-1)
}

// Size returns the current number of remembered keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
