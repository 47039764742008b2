// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPMC is a multi-producer multi-consumer bounded queue.
//
// Both sides claim a logical position with fetch-add over their own
// cursor, then busy-wait on the slot's sequence number. Producers and
// consumers never touch each other's cursor, only the shared slot
// array, so contention is limited to same-side callers racing for
// adjacent positions.
type MPMC[T any] struct {
	lifecycle
	_        pad
	head     atomix.Uint64 // consumers fetch-add here
	_        pad
	tail     atomix.Uint64 // producers fetch-add here
	_        pad
	buffer   []mpmcSlot[T]
	mask     uint64
	capacity uint64
}

type mpmcSlot[T any] struct {
	seq atomix.Uint64
	data T
	_    padShort
}

// NewMPMC creates a new OPEN MPMC queue. Capacity rounds up to the next
// power of 2 and must be >= 2.
func NewMPMC[T any](capacity int) *MPMC[T] {
	if capacity < 2 {
		panic("queue: capacity must be >= 2")
	}
	n := uint64(roundToPow2(capacity))
	q := &MPMC[T]{
		buffer:   make([]mpmcSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}
	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}
	return q
}

// Cap returns the queue capacity.
func (q *MPMC[T]) Cap() int {
	return int(q.capacity)
}

// Destroy closes the queue and blocks until every attached sender and
// receiver have been closed, then releases storage.
func (q *MPMC[T]) Destroy() {
	q.destroy()
	q.buffer = nil
}

// MPMCSender is one of possibly many producer handles for an MPMC queue.
type MPMCSender[T any] struct {
	q      *MPMC[T]
	closed bool
}

// Sender returns a new producer handle. Any number of senders may be
// attached concurrently.
func (q *MPMC[T]) Sender() *MPMCSender[T] {
	q.attachSender()
	return &MPMCSender[T]{q: q}
}

// Close detaches this sender.
func (s *MPMCSender[T]) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.q.detachSender()
}

// Send adds an element to the queue (safe across any number of
// producers). Returns ErrClosed without claiming a position if the
// queue is already closed. Otherwise claims the next logical position
// via fetch-add, then busy-waits with a pause hint until the slot's
// prior revolution has been consumed. Returns ErrClosed if the queue
// closes while waiting.
func (s *MPMCSender[T]) Send(elem *T) error {
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

// MPMCReceiver is one of possibly many consumer handles for an MPMC queue.
type MPMCReceiver[T any] struct {
	q      *MPMC[T]
	closed bool
}

// Receiver returns a new consumer handle. Any number of receivers may
// be attached concurrently.
func (q *MPMC[T]) Receiver() *MPMCReceiver[T] {
	q.attachReceiver()
	return &MPMCReceiver[T]{q: q}
}

// Close detaches this receiver.
func (r *MPMCReceiver[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.q.detachReceiver()
}

// Recv removes and returns an element (safe across any number of
// consumers). Claims the next logical position via fetch-add, then
// busy-waits with a pause hint until the producer has published it.
// Returns ErrClosed once the queue is closed and no element is left to
// claim.
func (r *MPMCReceiver[T]) Recv() (T, error) {
	q := r.q
	var zero T
	myHead := q.head.AddAcqRel(1) - 1
	slot := &q.buffer[myHead&q.mask]
	sw := spin.Wait{}
	for {
		seq := slot.seq.LoadAcquire()
		if seq == myHead+1 {
			elem := slot.data
			slot.data = zero
			slot.seq.StoreRelease(myHead + q.capacity)
			return elem, nil
		}
		if q.IsClosed() == Closed {
			return zero, ErrClosed
		}
		sw.Once()
	}
}
