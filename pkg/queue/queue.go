// Package queue implements the bounded multi-producer/multi-consumer queue
// that couples input producers to output workers. Go's buffered channel is
// already the idiomatic MPMC primitive the design notes call for, so the
// queue is a thin wrapper that adds the one behavior a bare channel lacks:
// a safe, idempotent Close usable from any number of producers.
package queue

import "sync"

// DefaultCapacity matches the relay's documented default: ten million
// in-flight byte vectors before a producer starts blocking.
const DefaultCapacity = 10_000_000

// Queue is a bounded FIFO of encoded records. Enqueue blocks while full;
// Dequeue blocks while empty. Close may be called any number of times, from
// any goroutine, and causes blocked and future Dequeue calls to drain whatever
// remains and then return ok=false.
type Queue struct {
	ch        chan []byte
	closeOnce sync.Once
}

// New creates a queue with the given capacity. A capacity <= 0 falls back
// to DefaultCapacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{ch: make(chan []byte, capacity)}
}

// Enqueue blocks until there is room in the queue. Pushing after Close
// panics, matching a send on a closed channel — producers must stop
// enqueueing once they observe shutdown.
func (q *Queue) Enqueue(v []byte) {
	q.ch <- v
}

// Dequeue blocks until an item is available or the queue is closed and
// drained, in which case ok is false.
func (q *Queue) Dequeue() (v []byte, ok bool) {
	v, ok = <-q.ch
	return v, ok
}

// Len reports the number of items currently buffered, for diagnostics.
func (q *Queue) Len() int { return len(q.ch) }

// Cap reports the configured capacity.
func (q *Queue) Cap() int { return cap(q.ch) }

// Close signals that no more items will be enqueued. Safe to call more
// than once and from multiple goroutines.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.ch) })
}
