// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wgroup_test

import (
	"sync/atomic"
	"testing"

	"github.com/korrelane/corelane/wgroup"
)

func TestWaitGroupBasic(t *testing.T) {
	wg := wgroup.New(0)
	var done int32

	const n = 100
	wg.Add(n)
	for range n {
		go func() {
			atomic.AddInt32(&done, 1)
			wg.Done()
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&done); got != n {
		t.Fatalf("done: got %d, want %d", got, n)
	}
}

func TestWaitGroupZeroInitialReturnsImmediately(t *testing.T) {
	wg := wgroup.New(0)
	wg.Wait()
}
