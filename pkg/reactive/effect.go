package reactive

import "time"

// Cleanup is a function returned by an effect to release whatever the
// previous run acquired. It is called before the effect re-runs and when
// the effect is disposed.
type Cleanup func()

// Effect is a terminal reactive computation run for its side effects. An
// effect runs once synchronously at creation, so its initial output is
// available immediately for deterministic server rendering, and is then
// re-run asynchronously: a stale effect is queued on the
// runtime and executed on a later scheduler tick via the Executor.
type Effect struct {
	rt *Runtime
	h  Handle
}

// NewEffect creates an effect within the current owner scope and runs it
// once synchronously. The function may return a Cleanup.
//
//	reactive.NewEffect(func() reactive.Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	})
func NewEffect(fn func() Cleanup) Effect {
	rt := current()

	n := &effectNode{run: fn}
	h := rt.arena.insert(n)
	n.owner = rt.currentScope()
	rt.adopt(h)

	rt.execEffect(h, n)
	return Effect{rt: rt, h: h}
}

// Handle returns the arena handle identifying this effect.
func (e Effect) Handle() Handle { return e.h }

// IsDisposed reports whether the effect has been torn down.
func (e Effect) IsDisposed() bool {
	_, ok := e.rt.arena.get(e.h)
	return !ok
}

// runEffect is the flush-time entry point for a queued effect. Returns
// true if the user function actually ran. A check-marked effect first
// re-validates its sources; when none of them really changed value (a
// memo upstream recomputed to an equal result, say) the effect settles
// back to clean without running.
func (rt *Runtime) runEffect(h Handle) bool {
	n, ok := rt.arena.get(h)
	if !ok {
		return false
	}
	e := n.(*effectNode)
	e.pending = false
	if e.aborted {
		return false
	}

	switch e.state {
	case stateClean:
		return false
	case stateCheck:
		if !rt.sourcesChanged(&e.subscriberState) {
			e.state = stateClean
			return false
		}
	}

	rt.execEffect(h, e)
	return true
}

// execEffect runs the user function with a rebuilt dependency set,
// invoking the previous run's cleanup first.
func (rt *Runtime) execEffect(h Handle, e *effectNode) {
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	rt.clearSources(h, &e.subscriberState)
	e.state = stateClean

	var start time.Time
	if rt.hooks.OnEffectRun != nil {
		start = time.Now()
	}

	prevOwner := rt.owner
	rt.owner = e.owner
	rt.pushObserver(h)
	defer func() {
		rt.popObserver()
		rt.owner = prevOwner
	}()

	e.cleanup = e.run()

	rt.stats.effectRuns.Add(1)
	if rt.hooks.OnEffectRun != nil {
		rt.hooks.OnEffectRun(h, time.Since(start))
	}
}

// NewWatch creates a watch-style effect over an explicit dependency
// function. fn receives the current deps value, a pointer to the
// previous one (nil on the first call) and a pointer to fn's previous
// return value, enabling stateful diffing side effects.
//
// When immediate is false, fn is skipped on the initial synchronous run;
// deps is still read so the dependencies are tracked.
func NewWatch[T, R any](deps func() T, fn func(cur T, prev *T, prevRet *R) R, immediate bool) Effect {
	var (
		prevIn  *T
		prevRet *R
		first   = true
	)

	return NewEffect(func() Cleanup {
		cur := deps()

		if first && !immediate {
			first = false
			in := cur
			prevIn = &in
			return nil
		}
		first = false

		var ret R
		Untracked(func() {
			ret = fn(cur, prevIn, prevRet)
		})

		in := cur
		prevIn = &in
		prevRet = &ret
		return nil
	})
}
