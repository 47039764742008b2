// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pool provides a fixed-size worker pool dispatching over a
// bounded MPMC queue. It generalizes the two worker-loop shapes this
// module is grounded on — a plain callback loop and a scheduler-aware
// loop that re-enqueues continuations — into a single generic type:
// the handler receives both the dequeued task and a resend function
// bound to the calling worker's own sender, so a handler that needs to
// push follow-up work (like corelane/job's scheduler) can do so
// without the pool package knowing anything about jobs.
package pool

import (
	"errors"

	"github.com/korrelane/corelane/queue"
)

// Handler processes one dequeued task. resend lets the handler push a
// follow-up task onto the same queue using the calling worker's own
// sender, mirroring each worker owning a sender for re-enqueueing.
type Handler[T any] func(task T, resend func(T) error)

// Pool is a fixed-size pool of goroutine workers draining a shared
// bounded MPMC queue.
type Pool[T any] struct {
	q          *queue.MPMC[T]
	dispatcher *queue.MPMCSender[T]
}

// New creates a pool with numWorkers goroutines consuming a queue of
// the given capacity, each task processed by handle. Workers start
// immediately.
func New[T any](numWorkers, capacity int, handle Handler[T]) *Pool[T] {
	q := queue.NewMPMC[T](capacity)
	p := &Pool[T]{
		q:          q,
		dispatcher: q.Sender(),
	}
	for i := 0; i < numWorkers; i++ {
		go p.worker(handle)
	}
	return p
}

func (p *Pool[T]) worker(handle Handler[T]) {
	sender := p.q.Sender()
	receiver := p.q.Receiver()
	resend := func(v T) error { return sender.Send(&v) }
	for {
		v, err := receiver.Recv()
		if err == nil {
			handle(v, resend)
			continue
		}
		if errors.Is(err, queue.ErrClosed) {
			break
		}
	}
	sender.Close()
	receiver.Close()
}

// Submit enqueues a task for some worker to pick up. Blocks with a
// pause hint if the queue is momentarily full; returns ErrClosed if
// the pool has been (or is being) shut down.
func (p *Pool[T]) Submit(task T) error {
	return p.dispatcher.Send(&task)
}

// Shutdown closes the dispatcher and the queue, then blocks until
// every worker has drained the queue and exited. Safe to call once.
func (p *Pool[T]) Shutdown() {
	p.dispatcher.Close()
	p.q.Close()
	p.q.Destroy()
}
