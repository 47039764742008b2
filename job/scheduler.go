// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package job implements a scheduler layered over a worker pool: jobs
// are handles into a region arena, wired into linear chains or
// arbitrary fan-in graphs via a dependency counter, and dispatched
// through the pool once every dependency is satisfied. Storage is
// recycled generationally: once enough jobs have completed in the
// current epoch, the scheduler quiesces new submissions, drains active
// jobs, bumps the arena epoch, and resumes.
//
// Job handles are index+epoch references ([arena.Handle]), not raw
// pointers: a handle dequeued after its generation has been recycled
// fails validation and is dropped instead of silently touching memory
// that now belongs to a different job.
package job

import (
	"errors"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"github.com/korrelane/corelane/arena"
	"github.com/korrelane/corelane/pool"
)

// ErrShutdown is returned by Spawn/Wait/Then/Chain once the scheduler
// has been shut down.
var ErrShutdown = errors.New("job: scheduler is shut down")

// Func is a job's unit of work.
type Func func(ctx any)

// Job is the record stored in the scheduler's region arena.
type Job struct {
	fn              Func
	ctx             any
	unfinished      atomix.Int64 // outstanding unsatisfied dependency edges
	continuation    arena.Handle
	hasContinuation bool
}

// Handle identifies a job within a Scheduler.
type Handle = arena.Handle

const (
	defaultRegionCapacity    = 4096
	defaultMaxRegions        = 1024
	defaultHealthCheckMargin = 20
	defaultNumWorkers        = 4
)

// Config tunes a Scheduler. Zero values fall back to the package
// defaults (region capacity 4096, 1024 regions, 4 workers, a
// health-check margin of 20 completions before max capacity).
type Config struct {
	NumWorkers        int
	RegionCapacity    int
	MaxRegions        int
	HealthCheckMargin int
}

func (c Config) withDefaults() Config {
	if c.NumWorkers <= 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.RegionCapacity <= 0 {
		c.RegionCapacity = defaultRegionCapacity
	}
	if c.MaxRegions <= 0 {
		c.MaxRegions = defaultMaxRegions
	}
	if c.HealthCheckMargin <= 0 {
		c.HealthCheckMargin = defaultHealthCheckMargin
	}
	return c
}

// Scheduler dispatches jobs through a worker pool, backed by a region
// arena sized to hold at most RegionCapacity*MaxRegions live job
// handles per epoch.
type Scheduler struct {
	pool     *pool.Pool[Handle]
	jobArena *arena.Region[Job]

	acceptingJobs      atomix.Uint64 // 1 = accepting, 0 = quiescing (CAS-guarded)
	shutdown           atomix.Bool
	activeJobs         atomix.Int64
	jobsCompletedEpoch atomix.Int64

	maxJobs int64
	margin  int64
}

// NewScheduler creates a scheduler and starts its worker pool.
func NewScheduler(cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	s := &Scheduler{
		jobArena: arena.NewRegion[Job](cfg.RegionCapacity, cfg.MaxRegions),
		maxJobs:  int64(cfg.RegionCapacity) * int64(cfg.MaxRegions),
		margin:   int64(cfg.HealthCheckMargin),
	}
	s.acceptingJobs.StoreRelease(1)
	s.pool = pool.New[Handle](cfg.NumWorkers, int(s.maxJobs), s.runJob)
	return s
}

// Spawn allocates a new job with no dependencies. Busy-waits with a
// pause hint while the scheduler is mid-recycle (accepting_jobs == 0).
func (s *Scheduler) Spawn(fn Func, ctx any) (Handle, error) {
	if s.shutdown.LoadAcquire() {
		return Handle{}, ErrShutdown
	}
	sw := spin.Wait{}
	for s.acceptingJobs.LoadAcquire() == 0 {
		if s.shutdown.LoadAcquire() {
			return Handle{}, ErrShutdown
		}
		sw.Once()
	}
	s.activeJobs.AddAcqRel(1)
	h, job := s.jobArena.Alloc()
	job.fn = fn
	job.ctx = ctx
	job.unfinished.StoreRelease(0)
	job.hasContinuation = false
	return h, nil
}

// Wait submits job for execution with no further wiring. The name
// mirrors the single-job submission entry point this package is
// grounded on: job is simply enqueued on the dispatcher.
func (s *Scheduler) Wait(job Handle) error {
	if s.shutdown.LoadAcquire() {
		return ErrShutdown
	}
	return s.pool.Submit(job)
}

// Then wires then as first's continuation: then gains one more
// dependency edge (its unfinished counter is incremented), and first
// is submitted immediately. Calling Then on the same `then` handle
// from several different `first` predecessors implements fan-in: then
// is only dispatched once every predecessor has completed.
func (s *Scheduler) Then(first, then Handle) error {
	if s.shutdown.LoadAcquire() {
		return ErrShutdown
	}
	firstJob, err := s.jobArena.Get(first)
	if err != nil {
		return err
	}
	thenJob, err := s.jobArena.Get(then)
	if err != nil {
		return err
	}
	thenJob.unfinished.AddAcqRel(1)
	firstJob.continuation = then
	firstJob.hasContinuation = true
	return s.pool.Submit(first)
}

// Chain wires handles into a linear continuation chain and submits the
// first one. Each later handle gains one dependency edge on its
// predecessor, as Then would wire it, but unlike pairwise Then calls
// only handles[0] is submitted; the rest are dispatched as their
// predecessors complete.
func (s *Scheduler) Chain(handles ...Handle) error {
	if s.shutdown.LoadAcquire() {
		return ErrShutdown
	}
	if len(handles) == 0 {
		return nil
	}
	for i := 0; i < len(handles)-1; i++ {
		cur, err := s.jobArena.Get(handles[i])
		if err != nil {
			return err
		}
		next, err := s.jobArena.Get(handles[i+1])
		if err != nil {
			return err
		}
		next.unfinished.AddAcqRel(1)
		cur.continuation = handles[i+1]
		cur.hasContinuation = true
	}
	return s.pool.Submit(handles[0])
}

// ActiveJobs returns the number of jobs spawned but not yet finished.
func (s *Scheduler) ActiveJobs() int64 {
	return s.activeJobs.LoadAcquire()
}

// Shutdown stops accepting new work and blocks until every worker has
// drained the dispatch queue and exited, then releases the arena.
// Idempotent only if no further Spawn calls race with it.
func (s *Scheduler) Shutdown() {
	if s.shutdown.LoadAcquire() {
		return
	}
	s.shutdown.StoreRelease(true)
	s.pool.Shutdown()
	s.jobArena.Free()
}

// runJob is the worker-pool handler: it validates the dequeued handle
// against the arena's current epoch (a stale handle means its
// generation was already recycled, so it is silently dropped), runs
// the job, and either resolves its continuation's dependency edge or
// runs the health-check when there is no continuation.
//
// active_jobs is decremented immediately after running the job, before
// the continuation/health-check branch: the health-check busy-waits
// for active_jobs to reach zero, and this job must not count against
// its own wait.
func (s *Scheduler) runJob(h Handle, resend func(Handle) error) {
	job, err := s.jobArena.Get(h)
	if err != nil {
		return
	}
	job.fn(job.ctx)
	s.jobsCompletedEpoch.AddAcqRel(1)
	s.activeJobs.AddAcqRel(-1)

	if job.hasContinuation {
		s.resolveDependency(job.continuation, resend)
	} else {
		s.healthcheck()
	}
}

// resolveDependency decrements a continuation's dependency counter and
// dispatches it exactly once: on the decrement that brings the counter
// to zero, i.e. once every predecessor has reported in. This is the
// counter discipline a multi-predecessor fan-in graph requires; a
// dequeue-time poll of "is it 1 yet" cannot express it safely.
func (s *Scheduler) resolveDependency(h Handle, resend func(Handle) error) {
	cont, err := s.jobArena.Get(h)
	if err != nil {
		return
	}
	if cont.unfinished.AddAcqRel(-1) == 0 {
		_ = resend(h)
	}
}

// healthcheck fires once jobs_completed_epoch approaches max_jobs. Only
// the worker that wins the accepting_jobs CAS performs the reset;
// every other concurrent caller just observes quiescing already under
// way and returns, so a generation is recycled exactly once.
func (s *Scheduler) healthcheck() {
	if s.jobsCompletedEpoch.LoadAcquire() <= s.maxJobs-s.margin {
		return
	}
	if !s.acceptingJobs.CompareAndSwapAcqRel(1, 0) {
		return
	}
	sw := spin.Wait{}
	for s.activeJobs.LoadAcquire() != 0 {
		sw.Once()
	}
	s.jobArena.Reset()
	s.jobsCompletedEpoch.StoreRelease(0)
	s.acceptingJobs.StoreRelease(1)
}
