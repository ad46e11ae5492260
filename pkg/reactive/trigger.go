package reactive

// Trigger is a valueless signal used purely for notification: Track
// subscribes the current observer, Notify wakes every subscriber. Useful
// for invalidation sources that have no meaningful value of their own
// (cache busting, manual refresh).
type Trigger struct {
	rt *Runtime
	h  Handle
}

// NewTrigger creates a trigger owned by the current owner scope.
func NewTrigger() Trigger {
	rt := current()

	n := &triggerNode{sourceState: newSourceState()}
	h := rt.arena.insert(n)
	n.owner = rt.currentScope()
	rt.adopt(h)

	return Trigger{rt: rt, h: h}
}

// Handle returns the arena handle identifying this trigger.
func (t Trigger) Handle() Handle { return t.h }

// Track subscribes the current observer to the trigger. Panics if the
// trigger has been disposed; TryTrack probes instead.
func (t Trigger) Track() {
	if !t.TryTrack() {
		panic(disposedError(kindTrigger, t.h))
	}
}

// TryTrack is Track returning false instead of panicking after disposal.
func (t Trigger) TryTrack() bool {
	n, ok := t.rt.arena.get(t.h)
	if !ok {
		return false
	}
	tr := n.(*triggerNode)
	t.rt.trackRead(t.h, &tr.sourceState)
	return true
}

// Notify marks every subscriber stale. A trigger has no value to compare
// so every Notify propagates.
func (t Trigger) Notify() {
	if !t.TryNotify() {
		panic(disposedError(kindTrigger, t.h))
	}
}

// TryNotify is Notify returning false instead of panicking after
// disposal.
func (t Trigger) TryNotify() bool {
	n, ok := t.rt.arena.get(t.h)
	if !ok {
		return false
	}
	tr := n.(*triggerNode)

	tr.version++
	t.rt.stats.signalWrites.Add(1)
	if t.rt.hooks.OnSignalWrite != nil {
		t.rt.hooks.OnSignalWrite(t.h)
	}
	t.rt.propagate(&tr.sourceState, stateDirty)
	return true
}
