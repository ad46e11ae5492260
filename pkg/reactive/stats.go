package reactive

import (
	"sync/atomic"
	"time"
)

// statCounters are the runtime's internal atomic counters. Atomics so a
// metrics collector on another goroutine can read them without
// coordinating with the graph's goroutine.
type statCounters struct {
	signalWrites   atomic.Int64
	memoRecomputes atomic.Int64
	effectRuns     atomic.Int64
	batchFlushes   atomic.Int64
	nodesLive      atomic.Int64
	nodesDisposed  atomic.Int64
}

// Stats is a point-in-time snapshot of a Runtime's activity counters.
type Stats struct {
	SignalWrites   int64
	MemoRecomputes int64
	EffectRuns     int64
	BatchFlushes   int64
	NodesLive      int64
	NodesDisposed  int64
	CollectedAt    time.Time
}

// Stats returns a snapshot of the runtime's counters. Safe to call from
// any goroutine.
func (rt *Runtime) Stats() Stats {
	return Stats{
		SignalWrites:   rt.stats.signalWrites.Load(),
		MemoRecomputes: rt.stats.memoRecomputes.Load(),
		EffectRuns:     rt.stats.effectRuns.Load(),
		BatchFlushes:   rt.stats.batchFlushes.Load(),
		NodesLive:      rt.stats.nodesLive.Load(),
		NodesDisposed:  rt.stats.nodesDisposed.Load(),
		CollectedAt:    time.Now(),
	}
}

// Hooks are optional observation points on a Runtime, consumed by the
// tracing and inspector packages. Every field may be nil; non-nil hooks
// are invoked synchronously on the runtime's goroutine and must return
// quickly.
type Hooks struct {
	OnSignalWrite   func(h Handle)
	OnMemoRecompute func(h Handle, d time.Duration)
	OnEffectRun     func(h Handle, d time.Duration)
	OnFlush         func(effects int, d time.Duration)
	OnDispose       func(h Handle)
}

// SetHooks installs observation hooks. Call before the graph starts
// propagating; hooks are not synchronized against a running flush.
func (rt *Runtime) SetHooks(h Hooks) {
	rt.hooks = h
}
