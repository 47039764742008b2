// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package job_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/korrelane/corelane/job"
)

func waitUntil(t *testing.T, timeout time.Duration, f func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !f() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSchedulerSpawnWait(t *testing.T) {
	s := job.NewScheduler(job.Config{NumWorkers: 4, RegionCapacity: 64, MaxRegions: 4})
	defer s.Shutdown()

	var ran int32
	h, err := s.Spawn(func(ctx any) {
		atomic.AddInt32(&ran, 1)
	}, nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := s.Wait(h); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	waitUntil(t, time.Second, func() bool { return atomic.LoadInt32(&ran) == 1 })
	waitUntil(t, time.Second, func() bool { return s.ActiveJobs() == 0 })
}

// TestSchedulerChain is the job-chain scenario: three jobs each push
// their tag onto a shared slice, chained in order; the order must come
// out A, B, C.
func TestSchedulerChain(t *testing.T) {
	s := job.NewScheduler(job.Config{NumWorkers: 4, RegionCapacity: 64, MaxRegions: 4})
	defer s.Shutdown()

	var mu sync.Mutex
	var order []string
	push := func(tag string) job.Func {
		return func(ctx any) {
			mu.Lock()
			order = append(order, tag)
			mu.Unlock()
		}
	}

	a, _ := s.Spawn(push("A"), nil)
	b, _ := s.Spawn(push("B"), nil)
	c, _ := s.Spawn(push("C"), nil)

	if err := s.Chain(a, b, c); err != nil {
		t.Fatalf("Chain: %v", err)
	}

	waitUntil(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	want := []string{"A", "B", "C"}
	for i, tag := range want {
		if order[i] != tag {
			t.Fatalf("order: got %v, want %v", order, want)
		}
	}
}

// TestSchedulerFanIn checks a continuation with two predecessors only
// runs once both have completed.
func TestSchedulerFanIn(t *testing.T) {
	s := job.NewScheduler(job.Config{NumWorkers: 4, RegionCapacity: 64, MaxRegions: 4})
	defer s.Shutdown()

	var contRuns int32
	var aDone, bDone int32

	cont, _ := s.Spawn(func(ctx any) {
		atomic.AddInt32(&contRuns, 1)
		if atomic.LoadInt32(&aDone) != 1 || atomic.LoadInt32(&bDone) != 1 {
			t.Errorf("continuation ran before both predecessors finished")
		}
	}, nil)

	a, _ := s.Spawn(func(ctx any) {
		time.Sleep(20 * time.Millisecond)
		atomic.StoreInt32(&aDone, 1)
	}, nil)
	b, _ := s.Spawn(func(ctx any) {
		atomic.StoreInt32(&bDone, 1)
	}, nil)

	if err := s.Then(a, cont); err != nil {
		t.Fatalf("Then(a,cont): %v", err)
	}
	if err := s.Then(b, cont); err != nil {
		t.Fatalf("Then(b,cont): %v", err)
	}

	waitUntil(t, 2*time.Second, func() bool { return atomic.LoadInt32(&contRuns) == 1 })
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&contRuns); got != 1 {
		t.Fatalf("continuation ran %d times, want exactly 1", got)
	}
}

// TestSchedulerArenaRecycling is the scheduler arena recycling
// scenario: a small max_jobs budget forces at least one health-check
// cycle (accepting_jobs 1->0->1) while 200 independent jobs are
// submitted, with every job completing exactly once.
func TestSchedulerArenaRecycling(t *testing.T) {
	s := job.NewScheduler(job.Config{NumWorkers: 4, RegionCapacity: 64, MaxRegions: 2, HealthCheckMargin: 40})
	defer s.Shutdown()

	const numJobs = 200
	var completed int64

	for i := 0; i < numJobs; i++ {
		h, err := s.Spawn(func(ctx any) {
			atomic.AddInt64(&completed, 1)
		}, nil)
		if err != nil {
			t.Fatalf("Spawn(%d): %v", i, err)
		}
		if err := s.Wait(h); err != nil {
			t.Fatalf("Wait(%d): %v", i, err)
		}
	}

	waitUntil(t, 5*time.Second, func() bool { return atomic.LoadInt64(&completed) == numJobs })
	waitUntil(t, time.Second, func() bool { return s.ActiveJobs() == 0 })
}
