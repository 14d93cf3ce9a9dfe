// Package queue buffers uploaded entries between the HTTP handlers and the
// ingestion workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/aimtrack/internal/domain/model"
	"github.com/okian/aimtrack/pkg/metrics"
)

const defaultQueueCapacity = 100000

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an entry to the queue.
	// Returns false if the queue is full or closed and the entry was not enqueued.
	Enqueue(ctx context.Context, e model.Entry) bool

	// Dequeue returns a channel that receives entries as they become available.
	// The channel is closed when the queue is closed and drained or ctx ends.
	Dequeue(ctx context.Context) <-chan model.Entry

	// Len returns the current number of queued entries.
	Len(ctx context.Context) int

	// Close stops accepting entries; already queued entries can still be drained.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	entries  chan model.Entry
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.entries = make(chan model.Entry, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.observe()
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, e model.Entry) bool { //nolint:gocritic // hugeParam: Entry is passed by value over the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.reject("closed")
		return false
	}

	select {
	case <-ctx.Done():
		q.reject("context_cancelled")
		return false
	default:
	}

	select {
	case q.entries <- e:
		metrics.RecordQueueEnqueue()
		q.observe()
		return true
	default:
		q.reject("queue_full")
		return false
	}
}

func (q *InMemoryQueue) reject(reason string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.Entry {
	out := make(chan model.Entry)
	go func() {
		defer close(out)
		for {
			select {
			case e, ok := <-q.entries:
				if !ok {
					return
				}
				select {
				case out <- e:
					metrics.RecordQueueDequeue()
					q.observe()
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.observe()
}

func (q *InMemoryQueue) observe() int {
	size := len(q.entries)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Capacity returns the maximum number of queued entries.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.entries)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
