// Package queue defines the contract for fanning per-submission batches out
// to evaluation workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/peergrade/internal/domain/model"
	"github.com/okian/peergrade/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 1024
)

// Batch carries all grade records of a single submission. Batches are
// independent of each other, which is what makes cross-submission
// parallelism safe.
type Batch struct {
	SubmissionID string
	Records      []model.GradeRecord
}

// Queue provides blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a batch, blocking while the queue is full. Returns an
	// error when the queue is closed or ctx is done.
	Enqueue(ctx context.Context, b Batch) error

	// Dequeue returns the channel workers consume batches from. The
	// channel is closed when the queue is closed and drained.
	Dequeue() <-chan Batch

	// Len returns the current number of queued batches.
	Len() int

	// Close marks the end of input. After closing, Enqueue fails and the
	// dequeue channel is closed once drained.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	batches  chan Batch
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory batch queue with options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.batches = make(chan Batch, q.capacity)
	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a batch to the queue, blocking while full.
func (q *InMemoryQueue) Enqueue(ctx context.Context, b Batch) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrClosed
	}
	q.mu.RUnlock()

	select {
	case q.batches <- b:
		metrics.UpdateQueueSize(len(q.batches))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue returns the channel batches are consumed from.
func (q *InMemoryQueue) Dequeue() <-chan Batch {
	return q.batches
}

// Len returns the current number of queued batches.
func (q *InMemoryQueue) Len() int {
	return len(q.batches)
}

// Close marks the end of input.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.batches)
	q.closed = true
	return nil
}
