// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command corelanectl runs a small demo workload through the job
// scheduler: it chains a handful of jobs per batch, fans batches out
// across the worker pool, and logs progress through a rotating file
// sink with cached timestamps.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	timecache "github.com/agilira/go-timecache"
	"github.com/agilira/lethe"

	"github.com/korrelane/corelane/job"
)

func main() {
	var (
		workers     = flag.Int("workers", 4, "number of scheduler worker goroutines")
		batches     = flag.Int("batches", 50, "number of 3-job chains to submit")
		logFile     = flag.String("log", "", "rotating log file path (default: stderr only)")
		regionCap   = flag.Int("region-capacity", 4096, "job arena region capacity")
		maxRegions  = flag.Int("max-regions", 1024, "job arena max regions")
		healthMargin = flag.Int("health-margin", 20, "jobs_completed_epoch margin before recycling")
	)
	flag.Parse()

	var out *log.Logger
	if *logFile != "" {
		rotator, err := lethe.NewWithDefaults(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "corelanectl: open log file: %v\n", err)
			os.Exit(1)
		}
		defer rotator.Close()
		out = log.New(rotator, "corelanectl ", log.LstdFlags|log.Lmicroseconds)
	} else {
		out = log.New(os.Stderr, "corelanectl ", log.LstdFlags|log.Lmicroseconds)
	}

	cache := timecache.NewWithResolution(time.Millisecond)
	defer cache.Stop()

	sched := job.NewScheduler(job.Config{
		NumWorkers:        *workers,
		RegionCapacity:    *regionCap,
		MaxRegions:        *maxRegions,
		HealthCheckMargin: *healthMargin,
	})
	defer sched.Shutdown()

	var completedChains int64
	start := cache.CachedTime()

	for b := 0; b < *batches; b++ {
		batchID := b
		load, _ := sched.Spawn(func(ctx any) {
			out.Printf("batch %d: load stage", batchID)
		}, nil)
		transform, _ := sched.Spawn(func(ctx any) {
			out.Printf("batch %d: transform stage", batchID)
		}, nil)
		publish, _ := sched.Spawn(func(ctx any) {
			out.Printf("batch %d: publish stage", batchID)
			atomic.AddInt64(&completedChains, 1)
		}, nil)

		if err := sched.Chain(load, transform, publish); err != nil {
			out.Printf("batch %d: chain error: %v", batchID, err)
		}
	}

	deadline := time.Now().Add(30 * time.Second)
	for atomic.LoadInt64(&completedChains) < int64(*batches) {
		if time.Now().After(deadline) {
			out.Printf("timed out after %v; %d/%d batches completed", 30*time.Second, completedChains, *batches)
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	elapsed := cache.CachedTime().Sub(start)
	out.Printf("completed %d/%d batches in %v", atomic.LoadInt64(&completedChains), *batches, elapsed)
}
