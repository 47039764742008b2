// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import "code.hybscloud.com/atomix"

// SPSC is a single-producer single-consumer bounded queue.
//
// Based on Lamport's ring buffer with cached index optimization: the
// producer caches the consumer's position and vice versa, so the common
// case touches only locally-owned memory instead of the peer's cursor.
type SPSC[T any] struct {
	lifecycle
	_            pad
	senderTaken  atomix.Uint64 // 0 = free, 1 = attached
	_            pad
	recvTaken    atomix.Uint64 // 0 = free, 1 = attached
	_            pad
	head         atomix.Uint64 // consumer position
	_            pad
	cachedTail   uint64 // consumer's cached view of tail
	_            pad
	tail         atomix.Uint64 // producer position
	_            pad
	cachedHead   uint64 // producer's cached view of head
	_            pad
	buffer       []T
	mask         uint64
}

// NewSPSC creates a new OPEN SPSC queue. Capacity rounds up to the next
// power of 2 and must be >= 2.
func NewSPSC[T any](capacity int) *SPSC[T] {
	if capacity < 2 {
		panic("queue: capacity must be >= 2")
	}
	n := uint64(roundToPow2(capacity))
	return &SPSC[T]{
		buffer: make([]T, n),
		mask:   n - 1,
	}
}

// Cap returns the queue capacity.
func (q *SPSC[T]) Cap() int {
	return int(q.mask + 1)
}

// Destroy closes the queue and blocks until the sole sender and
// receiver (if ever attached) have been closed, then releases storage.
func (q *SPSC[T]) Destroy() {
	q.destroy()
	q.buffer = nil
}

// SPSCSender is the single producer handle for an SPSC queue.
type SPSCSender[T any] struct {
	q      *SPSC[T]
	closed bool
}

// Sender returns the single producer handle. Panics if called more than
// once: SPSC's cached-cursor algorithm is only correct with exactly one
// producer goroutine.
func (q *SPSC[T]) Sender() *SPSCSender[T] {
	if !q.senderTaken.CompareAndSwapAcqRel(0, 1) {
		panic("queue: SPSC already has a sender")
	}
	q.attachSender()
	return &SPSCSender[T]{q: q}
}

// Close detaches this sender. Must be called once before discarding it.
func (s *SPSCSender[T]) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.q.detachSender()
}

// Send adds an element to the queue (producer only, non-blocking).
// Returns ErrClosed if the queue is closed, ErrFull if the ring has no
// free slot.
func (s *SPSCSender[T]) Send(elem *T) error {
	q := s.q
	if q.IsClosed() == Closed {
		return ErrClosed
	}
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead > q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead > q.mask {
			return ErrFull
		}
	}
	q.buffer[tail&q.mask] = *elem
	q.tail.StoreRelease(tail + 1)
	return nil
}

// SPSCReceiver is the single consumer handle for an SPSC queue.
type SPSCReceiver[T any] struct {
	q      *SPSC[T]
	closed bool
}

// Receiver returns the single consumer handle. Panics if called more
// than once.
func (q *SPSC[T]) Receiver() *SPSCReceiver[T] {
	if !q.recvTaken.CompareAndSwapAcqRel(0, 1) {
		panic("queue: SPSC already has a receiver")
	}
	q.attachReceiver()
	return &SPSCReceiver[T]{q: q}
}

// Close detaches this receiver. Must be called once before discarding it.
func (r *SPSCReceiver[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.q.detachReceiver()
}

// Recv removes and returns an element (consumer only, non-blocking).
// Returns ErrEmpty if nothing is buffered, or ErrClosed once the queue
// is closed and drained.
func (r *SPSCReceiver[T]) Recv() (T, error) {
	q := r.q
	var zero T
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			if q.IsClosed() == Closed {
				return zero, ErrClosed
			}
			return zero, ErrEmpty
		}
	}
	elem := q.buffer[head&q.mask]
	q.buffer[head&q.mask] = zero
	q.head.StoreRelease(head + 1)
	return elem, nil
}
