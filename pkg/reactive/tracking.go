package reactive

// pushObserver makes h the computation that subsequent reads subscribe.
func (rt *Runtime) pushObserver(h Handle) {
	rt.observers = append(rt.observers, h)
}

// popObserver removes the top observer.
func (rt *Runtime) popObserver() {
	rt.observers = rt.observers[:len(rt.observers)-1]
}

// currentObserver returns the computation currently being tracked, or a
// zero handle when reads should not create edges.
func (rt *Runtime) currentObserver() (Handle, bool) {
	if !rt.tracking || len(rt.observers) == 0 {
		return Handle{}, false
	}
	return rt.observers[len(rt.observers)-1], true
}

// trackRead establishes the two-way dependency edge between the source
// being read and the current observer. The insert is idempotent: reading
// the same source twice in one run records one edge. The recorded edge
// remembers the source version seen at read time so the subscriber can
// later poll for real changes.
func (rt *Runtime) trackRead(srcHandle Handle, src *sourceState) {
	obs, ok := rt.currentObserver()
	if !ok || obs == srcHandle {
		return
	}

	n, ok := rt.arena.get(obs)
	if !ok {
		return
	}
	sub := subscriberOf(n)
	if sub == nil || sub.hasSource(srcHandle) {
		return
	}

	sub.sources = append(sub.sources, sourceEdge{src: srcHandle, seen: src.version})
	src.subs[obs] = struct{}{}
}

// clearSources removes every edge recorded by sub, symmetrically: the
// subscriber forgets its sources and each source forgets the subscriber.
// Called before every memo/effect run so the dependency set is rebuilt
// from what the run actually reads.
func (rt *Runtime) clearSources(subHandle Handle, sub *subscriberState) {
	for i := range sub.sources {
		if n, ok := rt.arena.get(sub.sources[i].src); ok {
			if src := sourceOf(n); src != nil {
				delete(src.subs, subHandle)
			}
		}
	}
	sub.sources = sub.sources[:0]
}

// markSubscribers flags every subscriber of a changed (or possibly
// changed) source. Direct subscribers of a written signal get
// stateDirty; the transitive closure gets stateCheck. Effects leaving
// stateClean are scheduled; memos just record the flag and resolve it
// lazily on their next read.
func (rt *Runtime) markSubscribers(src *sourceState, mark nodeState) {
	for h := range src.subs {
		n, ok := rt.arena.get(h)
		if !ok {
			delete(src.subs, h)
			continue
		}

		switch t := n.(type) {
		case *memoNode:
			if t.state < mark {
				wasClean := t.state == stateClean
				t.state = mark
				if wasClean {
					rt.markSubscribers(&t.sourceState, stateCheck)
				}
			}
		case *effectNode:
			if t.state < mark {
				t.state = mark
				rt.scheduleEffect(h, t)
			}
		}
	}
}

// propagate marks src's subscribers and then arranges a flush. The
// marking walk runs under an implicit batch so a synchronous executor
// cannot start draining the queue while the subscriber set is still
// being traversed.
func (rt *Runtime) propagate(src *sourceState, mark nodeState) {
	rt.batchDepth++
	rt.markSubscribers(src, mark)
	rt.batchDepth--
	if rt.batchDepth == 0 && len(rt.queue) > 0 {
		rt.scheduleFlush()
	}
}

// sourcesChanged polls a check-marked subscriber's recorded sources to
// decide whether it really needs to re-run. Memos among the sources are
// brought up to date first; a source whose version moved past the
// recorded one, or whose handle went stale, counts as changed.
func (rt *Runtime) sourcesChanged(sub *subscriberState) bool {
	for i := range sub.sources {
		edge := &sub.sources[i]
		n, ok := rt.arena.get(edge.src)
		if !ok {
			return true
		}

		if m, isMemo := n.(*memoNode); isMemo {
			rt.updateMemoIfNecessary(edge.src, m)
		}

		if src := sourceOf(n); src != nil && src.version != edge.seen {
			return true
		}
	}
	return false
}

// Untracked runs fn with dependency tracking suspended: reads inside fn
// return current values without subscribing the current observer.
//
// For a single read, prefer the Peek accessor on the signal or memo.
func Untracked(fn func()) {
	rt := current()
	prev := rt.tracking
	rt.tracking = false
	defer func() { rt.tracking = prev }()
	fn()
}

// UntrackedValue runs fn untracked and returns its result.
func UntrackedValue[T any](fn func() T) T {
	var v T
	Untracked(func() { v = fn() })
	return v
}
