// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPSC is a multi-producer single-consumer bounded queue.
//
// Producers claim a slot by unconditionally fetch-adding the shared
// tail cursor, then busy-wait with a pause hint until the slot's
// sequence number confirms the consumer has vacated its prior
// revolution; the single consumer reads sequentially and never
// contends with anyone. There is no CAS and no retry: a claimed
// position is never relinquished, so producers never need to decrement
// the cursor on a failed claim.
type MPSC[T any] struct {
	lifecycle
	_        pad
	recvTaken atomix.Uint64
	_        pad
	head     atomix.Uint64 // consumer reads from here
	_        pad
	tail     atomix.Uint64 // producers fetch-add here
	_        pad
	buffer   []mpscSlot[T]
	mask     uint64
	capacity uint64
}

type mpscSlot[T any] struct {
	seq atomix.Uint64
	data T
	_   padShort
}

// NewMPSC creates a new OPEN MPSC queue. Capacity rounds up to the next
// power of 2 and must be >= 2.
func NewMPSC[T any](capacity int) *MPSC[T] {
	if capacity < 2 {
		panic("queue: capacity must be >= 2")
	}
	n := uint64(roundToPow2(capacity))
	q := &MPSC[T]{
		buffer:   make([]mpscSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}
	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}
	return q
}

// Cap returns the queue capacity.
func (q *MPSC[T]) Cap() int {
	return int(q.capacity)
}

// Destroy closes the queue and blocks until every attached sender and
// the sole receiver have been closed, then releases storage.
func (q *MPSC[T]) Destroy() {
	q.destroy()
	q.buffer = nil
}

// MPSCSender is one of possibly many producer handles for an MPSC queue.
type MPSCSender[T any] struct {
	q      *MPSC[T]
	closed bool
}

// Sender returns a new producer handle. Any number of senders may be
// attached concurrently.
func (q *MPSC[T]) Sender() *MPSCSender[T] {
	q.attachSender()
	return &MPSCSender[T]{q: q}
}

// Close detaches this sender.
func (s *MPSCSender[T]) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.q.detachSender()
}

// Send adds an element to the queue (safe across any number of
// producers). Returns ErrClosed without claiming a position if the
// queue is already closed. Otherwise each producer unconditionally
// claims the next logical position via fetch-add, then busy-waits with
// a pause hint until the consumer has vacated that slot's prior
// revolution. Returns ErrClosed if the queue closes while waiting.
func (s *MPSCSender[T]) Send(elem *T) error {
	q := s.q
	if q.IsClosed() == Closed {
		return ErrClosed
	}
	myTail := q.tail.AddAcqRel(1) - 1
	slot := &q.buffer[myTail&q.mask]
	sw := spin.Wait{}
	for {
		seq := slot.seq.LoadAcquire()
		if seq == myTail {
			slot.data = *elem
			slot.seq.StoreRelease(myTail + 1)
			return nil
		}
		if q.IsClosed() == Closed {
			return ErrClosed
		}
		sw.Once()
	}
}

// MPSCReceiver is the single consumer handle for an MPSC queue.
type MPSCReceiver[T any] struct {
	q      *MPSC[T]
	closed bool
}

// Receiver returns the single consumer handle. Panics if called more
// than once: the consumer side is sequential and assumes no contention.
func (q *MPSC[T]) Receiver() *MPSCReceiver[T] {
	if !q.recvTaken.CompareAndSwapAcqRel(0, 1) {
		panic("queue: MPSC already has a receiver")
	}
	q.attachReceiver()
	return &MPSCReceiver[T]{q: q}
}

// Close detaches this receiver.
func (r *MPSCReceiver[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.q.detachReceiver()
}

// Recv removes and returns an element (consumer only, non-blocking).
// Returns ErrEmpty if nothing is buffered yet, ErrClosed once the queue
// is closed and drained.
func (r *MPSCReceiver[T]) Recv() (T, error) {
	q := r.q
	var zero T
	head := q.head.LoadRelaxed()
	slot := &q.buffer[head&q.mask]
	seq := slot.seq.LoadAcquire()
	if seq != head+1 {
		if q.IsClosed() == Closed {
			return zero, ErrClosed
		}
		return zero, ErrEmpty
	}
	elem := slot.data
	slot.data = zero
	slot.seq.StoreRelease(head + q.capacity)
	q.head.StoreRelease(head + 1)
	return elem, nil
}
