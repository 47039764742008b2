// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/korrelane/corelane/queue"
)

func TestMPSCBasic(t *testing.T) {
	q := queue.NewMPSC[int](3)
	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}

	tx := q.Sender()
	rx := q.Receiver()
	defer tx.Close()
	defer rx.Close()

	for i := range 4 {
		v := i + 100
		if err := tx.Send(&v); err != nil {
			t.Fatalf("Send(%d): %v", i, err)
		}
	}

	for i := range 4 {
		got, err := rx.Recv()
		if err != nil {
			t.Fatalf("Recv(%d): %v", i, err)
		}
		if got != i+100 {
			t.Fatalf("Recv(%d): got %d, want %d", i, got, i+100)
		}
	}

	if _, err := rx.Recv(); !errors.Is(err, queue.ErrEmpty) {
		t.Fatalf("Recv on empty: got %v, want ErrEmpty", err)
	}
}

func TestMPSCDoubleReceiverPanics(t *testing.T) {
	q := queue.NewMPSC[int](4)
	_ = q.Receiver()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on second Receiver()")
		}
	}()
	_ = q.Receiver()
}

// TestMPSCContention drives many producers against one consumer and
// checks that every item sent is received exactly once, with no loss
// or duplication under a blocking full queue.
func TestMPSCContention(t *testing.T) {
	const (
		numProducers  = 8
		itemsPerProd  = 5000
	)
	q := queue.NewMPSC[int](64)
	rx := q.Receiver()

	var wg sync.WaitGroup
	for p := range numProducers {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			tx := q.Sender()
			defer tx.Close()
			for i := range itemsPerProd {
				v := p*itemsPerProd + i
				for tx.Send(&v) != nil {
				}
			}
		}(p)
	}

	total := numProducers * itemsPerProd
	seen := make([]bool, total)
	consumed := 0
	go func() {
		wg.Wait()
		q.Close()
	}()

	for {
		v, err := rx.Recv()
		if err == nil {
			if seen[v] {
				t.Fatalf("duplicate value %d", v)
			}
			seen[v] = true
			consumed++
			continue
		}
		if errors.Is(err, queue.ErrClosed) {
			break
		}
	}
	rx.Close()

	if consumed != total {
		t.Fatalf("consumed %d items, want %d", consumed, total)
	}
	q.Destroy()
}
