// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package queue provides bounded lock-free FIFO queues in four
// producer/consumer cardinalities:
//
//   - SPSC: Single-Producer Single-Consumer
//   - MPSC: Multi-Producer Single-Consumer
//   - SPMC: Single-Producer Multi-Consumer
//   - MPMC: Multi-Producer Multi-Consumer
//
// Every variant shares the same slot/sequence protocol: each slot carries
// an atomic sequence number alongside its payload. A producer publishing
// to logical position p waits for seq==p, writes the payload, then
// publishes seq=p+1 with release ordering. A consumer at logical position
// c waits for seq==c+1, reads the payload, then republishes seq=c+capacity,
// rearming the slot exactly one revolution ahead. This makes the ring
// ABA-safe without any pointer tagging.
//
// # Open vs closed
//
// Queues are created OPEN. Call Close to move a queue to CLOSED with
// release ordering; Sender.Send and Receiver.Recv observe CLOSED with
// acquire ordering and return [ErrClosed]. Closing does not discard
// buffered elements — SPMC and MPMC consumers keep draining until the
// ring reports empty, at which point Recv also starts returning
// [ErrClosed]. Destroy busy-waits until every attached Sender and
// Receiver has been closed before releasing the backing storage, so it
// is always safe to call once producers and consumers have wound down.
//
// # Quick start
//
//	q := queue.NewMPMC[Job](4096)
//	defer q.Destroy()
//
//	tx := q.Sender()
//	defer tx.Close()
//	if err := tx.Send(&job); err != nil {
//	    // ErrClosed (a full MPMC queue blocks instead)
//	}
//
//	rx := q.Receiver()
//	defer rx.Close()
//	job, err := rx.Recv()
//
// SPSC exposes a single producer and single consumer only; calling
// Sender or Receiver more than once panics, since a second attachment
// would violate the single-producer/single-consumer contract the
// algorithm depends on for correctness.
//
// # Blocking discipline
//
// There are no OS-level waits anywhere in this package. SPSC is fully
// non-blocking on both ends: Send returns ErrFull and Recv returns
// ErrEmpty immediately rather than waiting.
//
// Every other variant claims its logical position unconditionally (a
// relaxed read for the lone producer or consumer, a fetch-add for a
// shared side) and then busy-waits with a pause hint
// ([code.hybscloud.com/spin]) until the slot protocol clears, rechecking
// CLOSED on every spin. Concretely: MPSC.Send, SPMC.Send, MPMC.Send and
// MPMC.Recv all block this way, as does SPMC.Recv; only MPSC.Recv stays
// non-blocking, since its single consumer never contends with anyone
// and ErrEmpty is cheap to report immediately. This matches the spec's
// split between producer-side backpressure, which SPSC reports
// immediately, and every other cardinality, where a full ring or an
// empty multi-consumer fan-out should simply be waited out.
package queue
