package reactive

import "time"

// Memo is a cached derived value: simultaneously a subscriber of
// whatever its computation reads and a source for whoever reads it.
// Memos are lazy: a write upstream only flags the memo stale, and the
// recomputation happens on the next Get. The cached value is compared to
// the new one and subscribers are woken only when it actually changed,
// which is what keeps diamond-shaped graphs glitch-free: a memo
// recomputes at most once per root write and propagates at most once,
// however many of its upstream memos were involved.
type Memo[T any] struct {
	rt *Runtime
	h  Handle
}

// MemoOption configures a memo at creation.
type MemoOption[T any] func(*memoNode)

// WithMemoEquals sets the equality function used to decide whether a
// recomputation produced a new value.
func WithMemoEquals[T any](eq func(a, b T) bool) MemoOption[T] {
	return func(n *memoNode) {
		n.equals = func(a, b any) bool { return eq(zeroIfNil[T](a), zeroIfNil[T](b)) }
	}
}

// NewMemo creates a memo over compute. compute receives a pointer to the
// previous cached value, nil on the first run. The computation does not
// run until the first Get.
func NewMemo[T any](compute func(prev *T) T, opts ...MemoOption[T]) Memo[T] {
	rt := current()

	n := &memoNode{
		sourceState: newSourceState(),
		compute: func(prev any, has bool) any {
			if !has {
				return compute(nil)
			}
			p := zeroIfNil[T](prev)
			return compute(&p)
		},
		equals: func(a, b any) bool { return defaultEquals(zeroIfNil[T](a), zeroIfNil[T](b)) },
	}
	n.state = stateDirty
	for _, opt := range opts {
		opt(n)
	}

	h := rt.arena.insert(n)
	n.owner = rt.currentScope()
	rt.adopt(h)

	return Memo[T]{rt: rt, h: h}
}

// Handle returns the arena handle identifying this memo.
func (m Memo[T]) Handle() Handle { return m.h }

// Get returns the memo's value, recomputing it first if a dependency
// changed, and subscribes the current observer. Panics if the memo has
// been disposed.
func (m Memo[T]) Get() T {
	v, ok := m.TryGet()
	if !ok {
		panic(disposedError(kindMemo, m.h))
	}
	return v
}

// TryGet is Get returning (zero, false) instead of panicking after
// disposal.
func (m Memo[T]) TryGet() (T, bool) {
	n, ok := m.rt.arena.get(m.h)
	if !ok {
		var zero T
		return zero, false
	}
	node := n.(*memoNode)

	m.rt.updateMemoIfNecessary(m.h, node)
	// Track after the update so the recorded edge sees the fresh version.
	m.rt.trackRead(m.h, &node.sourceState)

	if !node.has {
		// Reentrant read during the first computation; there is no stale
		// value to fall back on.
		var zero T
		return zero, true
	}
	return zeroIfNil[T](node.value), true
}

// Peek returns the memo's value without subscribing. Still brings the
// value up to date first.
func (m Memo[T]) Peek() T {
	n, ok := m.rt.arena.get(m.h)
	if !ok {
		panic(disposedError(kindMemo, m.h))
	}
	node := n.(*memoNode)
	m.rt.updateMemoIfNecessary(m.h, node)
	if !node.has {
		var zero T
		return zero
	}
	return zeroIfNil[T](node.value)
}

// updateMemoIfNecessary resolves a memo's staleness marker. Dirty memos
// recompute. Check-marked memos first poll their sources: if nothing
// actually changed value, the memo settles back to clean without
// recomputing.
func (rt *Runtime) updateMemoIfNecessary(h Handle, m *memoNode) {
	if m.computing {
		// The memo's own computation is reading it. Deterministic
		// failure in debug; the stale cached value in release.
		if DebugMode {
			panic("reactive: Memo " + h.String() + " reads itself during its own computation")
		}
		rt.logger.Warn("reactive: reentrant memo read, using stale value", "memo", h.String())
		return
	}

	switch m.state {
	case stateClean:
		if m.has {
			return
		}
		// Never computed; fall through to the first run.
	case stateCheck:
		if !rt.sourcesChanged(&m.subscriberState) {
			m.state = stateClean
			return
		}
		m.state = stateDirty
	}

	rt.recomputeMemo(h, m)
}

// recomputeMemo reruns the computation with a rebuilt dependency set.
// The new value is stored unconditionally but the version (what
// subscribers poll) only advances when it differs from the previous one.
func (rt *Runtime) recomputeMemo(h Handle, m *memoNode) {
	m.computing = true
	defer func() { m.computing = false }()

	rt.clearSources(h, &m.subscriberState)
	m.state = stateClean

	var start time.Time
	if rt.hooks.OnMemoRecompute != nil {
		start = time.Now()
	}

	prevOwner := rt.owner
	rt.owner = m.owner
	rt.pushObserver(h)
	defer func() {
		rt.popObserver()
		rt.owner = prevOwner
	}()

	var prev any
	if m.has {
		prev = m.value
	}
	next := m.compute(prev, m.has)

	changed := !m.has || !m.equals(m.value, next)
	m.value = next
	m.has = true
	if changed {
		m.version++
	}

	rt.stats.memoRecomputes.Add(1)
	if rt.hooks.OnMemoRecompute != nil {
		rt.hooks.OnMemoRecompute(h, time.Since(start))
	}
}
