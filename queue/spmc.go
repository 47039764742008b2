// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// SPMC is a single-producer multi-consumer bounded queue.
//
// The producer owns the tail cursor outright and never contends with
// anyone, so it advances it with a relaxed read instead of a CAS or
// fetch-add. Consumers share the head cursor and claim a position with
// fetch-add before busy-waiting for that slot to be published.
type SPMC[T any] struct {
	lifecycle
	_           pad
	senderTaken atomix.Uint64 // 0 = free, 1 = attached
	_           pad
	head        atomix.Uint64 // consumers fetch-add here
	_           pad
	tail        atomix.Uint64 // producer owns this outright
	_           pad
	buffer      []spmcSlot[T]
	mask        uint64
	capacity    uint64
}

type spmcSlot[T any] struct {
	seq atomix.Uint64
	data T
	_    padShort
}

// NewSPMC creates a new OPEN SPMC queue. Capacity rounds up to the next
// power of 2 and must be >= 2.
func NewSPMC[T any](capacity int) *SPMC[T] {
	if capacity < 2 {
		panic("queue: capacity must be >= 2")
	}
	n := uint64(roundToPow2(capacity))
	q := &SPMC[T]{
		buffer:   make([]spmcSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}
	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}
	return q
}

// Cap returns the queue capacity.
func (q *SPMC[T]) Cap() int {
	return int(q.capacity)
}

// Destroy closes the queue and blocks until the sole sender and every
// attached receiver have been closed, then releases storage.
func (q *SPMC[T]) Destroy() {
	q.destroy()
	q.buffer = nil
}

// SPMCSender is the single producer handle for an SPMC queue.
type SPMCSender[T any] struct {
	q      *SPMC[T]
	closed bool
}

// Sender returns the single producer handle. Panics if called more than
// once: the producer side owns the tail cursor without synchronization
// and assumes no contention.
func (q *SPMC[T]) Sender() *SPMCSender[T] {
	if !q.senderTaken.CompareAndSwapAcqRel(0, 1) {
		panic("queue: SPMC already has a sender")
	}
	q.attachSender()
	return &SPMCSender[T]{q: q}
}

// Close detaches this sender.
func (s *SPMCSender[T]) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.q.detachSender()
}

// Send adds an element to the queue (producer only). Returns ErrClosed
// if the queue is already closed. Otherwise busy-waits with a pause
// hint until the slot a full revolution behind has been drained by a
// consumer. Returns ErrClosed if the queue closes while waiting.
func (s *SPMCSender[T]) Send(elem *T) error {
	q := s.q
	if q.IsClosed() == Closed {
		return ErrClosed
	}
	tail := q.tail.LoadRelaxed()
	slot := &q.buffer[tail&q.mask]
	sw := spin.Wait{}
	for {
		seq := slot.seq.LoadAcquire()
		if seq == tail {
			slot.data = *elem
			slot.seq.StoreRelease(tail + 1)
			q.tail.StoreRelease(tail + 1)
			return nil
		}
		if q.IsClosed() == Closed {
			return ErrClosed
		}
		sw.Once()
	}
}

// SPMCReceiver is one of possibly many consumer handles for an SPMC queue.
type SPMCReceiver[T any] struct {
	q      *SPMC[T]
	closed bool
}

// Receiver returns a new consumer handle. Any number of receivers may
// be attached concurrently.
func (q *SPMC[T]) Receiver() *SPMCReceiver[T] {
	q.attachReceiver()
	return &SPMCReceiver[T]{q: q}
}

// Close detaches this receiver.
func (r *SPMCReceiver[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.q.detachReceiver()
}

// Recv removes and returns an element (safe across any number of
// consumers). Each consumer unconditionally claims the next logical
// position via fetch-add, then busy-waits with a pause hint until the
// producer has published it. Returns ErrClosed once the queue is closed
// and no element is left to claim.
func (r *SPMCReceiver[T]) Recv() (T, error) {
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
