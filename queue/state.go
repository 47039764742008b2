// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// lifecycle tracks the OPEN/CLOSED state of a queue plus the number of
// attached senders and receivers. It is embedded by value in every queue
// variant; its fields are written only on attach, detach and close (the
// hot send/recv path only reads the closed flag), so it does not need
// its own cache-line padding.
type lifecycle struct {
	closed         atomix.Bool
	sendersAlive   atomix.Int64
	receiversAlive atomix.Int64
}

// Close moves the queue to CLOSED. Safe to call more than once or
// concurrently with Send/Recv. Closing never drops buffered elements;
// it only stops new Sends and lets Recv observe Closed once the ring
// reports empty.
func (l *lifecycle) Close() {
	l.closed.StoreRelease(true)
}

// IsClosed reports the current lifecycle state.
func (l *lifecycle) IsClosed() State {
	if l.closed.LoadAcquire() {
		return Closed
	}
	return Open
}

// destroy closes the queue, then busy-waits for every attached sender
// and receiver to detach before the caller releases the backing buffer.
// Uses iox.Backoff rather than the hot-path spin helper: this is a
// teardown-time wait, not a per-element one, and may legitimately take
// longer than a bounded spin budget if a goroutine is slow to notice
// the close.
func (l *lifecycle) destroy() {
	l.Close()
	b := iox.Backoff{}
	for l.sendersAlive.LoadAcquire() != 0 || l.receiversAlive.LoadAcquire() != 0 {
		b.Wait()
	}
}

func (l *lifecycle) attachSender() {
	l.sendersAlive.AddAcqRel(1)
}

func (l *lifecycle) detachSender() {
	l.sendersAlive.AddAcqRel(-1)
}

func (l *lifecycle) attachReceiver() {
	l.receiversAlive.AddAcqRel(1)
}

func (l *lifecycle) detachReceiver() {
	l.receiversAlive.AddAcqRel(-1)
}
