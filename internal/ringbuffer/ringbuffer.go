// ringbuffer.go: bounded multi-producer, multi-consumer lock-free ring buffer
//
// Adapted from a simplified single-consumer (MPSC) ring buffer design: the
// producer side keeps the original claim-then-publish sequence protocol,
// and the consumer side gains its own CAS-guarded claim counter so that
// more than one goroutine may drain the ring concurrently without ever
// delivering the same slot twice.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringbuffer

import (
	"time"
)

// Stats is a point-in-time snapshot of ring buffer counters.
type Stats struct {
	Published   int64
	Consumed    int64
	BufferFull  int64
	CurrentSize int64
	Capacity    int64
}

// Ring is a bounded MPMC queue of T with power-of-two capacity.
type Ring[T any] struct {
	buffer   []T
	capacity int64
	mask     int64

	writerCursor PaddedInt64 // next producer claim sequence
	readerClaim  PaddedInt64 // next consumer claim sequence

	available []PaddedInt64 // per-slot publish marker; holds the sequence once written

	closed PaddedInt64

	published PaddedInt64
	consumed  PaddedInt64
	full      PaddedInt64
}

// New constructs a Ring with the given power-of-two capacity.
func New[T any](capacity int64) (*Ring[T], error) {
	if capacity <= 0 || (capacity&(capacity-1)) != 0 {
		return nil, ErrInvalidCapacity
	}
	r := &Ring[T]{
		buffer:    make([]T, capacity),
		capacity:  capacity,
		mask:      capacity - 1,
		available: make([]PaddedInt64, capacity),
	}
	for i := range r.available {
		r.available[i].Store(-1)
	}
	return r, nil
}

// Capacity returns the fixed ring size.
func (r *Ring[T]) Capacity() int64 { return r.capacity }

// Size returns the current number of published-but-unconsumed items.
func (r *Ring[T]) Size() int64 {
	size := r.writerCursor.Load() - r.readerClaim.Load()
	if size < 0 {
		return 0
	}
	return size
}

// IsEmpty reports whether the ring currently holds no items.
func (r *Ring[T]) IsEmpty() bool { return r.Size() == 0 }

// IsFull reports whether the ring is at capacity.
func (r *Ring[T]) IsFull() bool { return r.Size() >= r.capacity }

// IsClosed reports whether Close has been called.
func (r *Ring[T]) IsClosed() bool { return r.closed.Load() != 0 }

// Close marks the ring closed; further TryPublish/Publish calls fail.
// Idempotent.
func (r *Ring[T]) Close() { r.closed.Store(1) }

// TryPublish attempts a non-blocking publish. Returns false if the ring is
// full or closed; on failure, BufferFull is incremented (unless closed).
//
// The claim is a CAS loop rather than a fetch-add: under MPMC, a fetch-add
// claim that turns out to be over capacity cannot be undone safely (an
// Add(-1) rollback decrements whatever the cursor currently is, not "our"
// reservation, and a concurrent claimant can land in the gap — corrupting
// order or delivering a slot twice), and leaving it unused instead burns
// that sequence number permanently, which this ring's strictly-ordered
// Consume can never skip past. A CAS loop only advances writerCursor once
// space is confirmed, so no claim is ever made that has to be discarded.
// Space means both that the sequence is within capacity of the reader
// claim and that the slot's previous consumer has finished with it (its
// availability marker is back to -1).
func (r *Ring[T]) TryPublish(v T) bool {
	if r.IsClosed() {
		return false
	}
	for {
		cur := r.writerCursor.Load()
		if cur >= r.readerClaim.Load()+r.capacity || r.available[cur&r.mask].Load() != -1 {
			r.full.Add(1)
			return false
		}
		if r.writerCursor.CompareAndSwap(cur, cur+1) {
			r.buffer[cur&r.mask] = v
			r.available[cur&r.mask].Store(cur)
			r.published.Add(1)
			return true
		}
		// another producer claimed cur first; retry with a fresh read
	}
}

// Publish attempts a publish, retrying with a short backoff until space is
// available or timeout elapses. Returns false on timeout or if closed.
func (r *Ring[T]) Publish(v T, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if r.TryPublish(v) {
			return true
		}
		if r.IsClosed() {
			return false
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Microsecond)
	}
}

// Consume removes and returns the head-most published item, or the zero
// value and false if the ring is currently empty.
func (r *Ring[T]) Consume() (T, bool) {
	for {
		pos := r.readerClaim.Load()
		if pos >= r.writerCursor.Load() {
			var zero T
			return zero, false
		}
		if r.available[pos&r.mask].Load() != pos {
			var zero T
			return zero, false
		}
		if r.readerClaim.CompareAndSwap(pos, pos+1) {
			v := r.buffer[pos&r.mask]
			r.available[pos&r.mask].Store(-1)
			r.consumed.Add(1)
			return v, true
		}
		// another consumer claimed pos first; retry with the new position
	}
}

// ConsumeBatch drains up to len(out) items into out, in publish order,
// returning the count actually consumed.
func (r *Ring[T]) ConsumeBatch(out []T) int {
	n := 0
	for n < len(out) {
		v, ok := r.Consume()
		if !ok {
			break
		}
		out[n] = v
		n++
	}
	return n
}

// Stats returns a snapshot of the ring's counters.
func (r *Ring[T]) Stats() Stats {
	return Stats{
		Published:   r.published.Load(),
		Consumed:    r.consumed.Load(),
		BufferFull:  r.full.Load(),
		CurrentSize: r.Size(),
		Capacity:    r.capacity,
	}
}
