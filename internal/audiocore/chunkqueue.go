package audiocore

import (
	"sync/atomic"
)

// ChunkQueue is a bounded single-producer/single-consumer ring buffer that
// moves chunk ownership from the real-time capture callback to the consumer
// thread.
//
// Push is wait-free: it completes in a bounded number of steps and never
// blocks. A full queue drops the chunk rather than overwriting or waiting;
// that is the pipeline's overflow policy and not an error.
//
// Invariant: exactly one goroutine calls Push and exactly one (possibly
// different) goroutine calls DrainAll. The indices are monotonically
// increasing; slot positions are indices modulo capacity.
type ChunkQueue struct {
	slots    []AudioChunk
	capacity uint64
	head     atomic.Uint64 // next slot to drain, advanced by the consumer
	tail     atomic.Uint64 // next slot to fill, advanced by the producer
}

// NewChunkQueue creates a queue with the given capacity. A capacity of zero
// or less falls back to DefaultQueueSize.
func NewChunkQueue(capacity int) *ChunkQueue {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &ChunkQueue{
		slots:    make([]AudioChunk, capacity),
		capacity: uint64(capacity),
	}
}

// Push appends a chunk to the queue and reports whether it was accepted.
// When the queue is full the chunk is dropped and Push returns false.
// Producer-side only.
func (q *ChunkQueue) Push(chunk AudioChunk) bool {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail-head >= q.capacity {
		return false
	}
	q.slots[tail%q.capacity] = chunk
	// Publish after the slot write; the atomic store orders the payload
	// ahead of the index for the draining goroutine.
	q.tail.Store(tail + 1)
	return true
}

// DrainAll removes and returns every queued chunk in FIFO order, or nil if
// none are pending. Consumer-side only.
func (q *ChunkQueue) DrainAll() []AudioChunk {
	head := q.head.Load()
	tail := q.tail.Load()
	if head == tail {
		return nil
	}

	out := make([]AudioChunk, 0, tail-head)
	for i := head; i != tail; i++ {
		slot := &q.slots[i%q.capacity]
		out = append(out, *slot)
		// Drop the payload reference so the queue does not pin chunk
		// memory until the slot is overwritten.
		*slot = AudioChunk{}
	}
	q.head.Store(tail)
	return out
}

// Len returns the number of chunks currently queued. The value is
// a snapshot and may be stale by the time it is observed.
func (q *ChunkQueue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Capacity returns the fixed queue capacity.
func (q *ChunkQueue) Capacity() int {
	return int(q.capacity)
}
