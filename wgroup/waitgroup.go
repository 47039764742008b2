// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wgroup provides a minimal busy-wait fan-in counter, the
// concurrency-toolkit equivalent of sync.WaitGroup: a single atomic
// counter incremented by Add and decremented by Done, observed by
// Wait spinning with a pause hint until it reaches zero. There is no
// OS-level blocking anywhere in this package.
package wgroup

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// WaitGroup is a single atomic fan-in counter.
type WaitGroup struct {
	count atomix.Int64
}

// New creates a WaitGroup with the given initial counter value.
func New(initial int64) *WaitGroup {
	wg := &WaitGroup{}
	wg.count.StoreRelease(initial)
	return wg
}

// Add adds n (may be negative) to the counter with release ordering.
func (wg *WaitGroup) Add(n int64) {
	wg.count.AddAcqRel(n)
}

// Done decrements the counter by one. Call once per completed unit of
// work that a matching Add accounted for.
func (wg *WaitGroup) Done() {
	wg.count.AddAcqRel(-1)
}

// Wait busy-waits with a pause hint until the counter reaches zero.
func (wg *WaitGroup) Wait() {
	sw := spin.Wait{}
	for wg.count.LoadAcquire() != 0 {
		sw.Once()
	}
}
