package reactive

// Suspense is the counter-based pending-resource protocol the streaming
// SSR layer polls to learn when async-loaded data under a boundary has
// resolved. Increment before starting async work, Decrement when it
// completes (success or failure); Ready is a derived memo that flips to
// true when the count returns to zero.
type Suspense struct {
	count IntSignal
	ready Memo[bool]
}

// NewSuspense creates a suspense boundary owned by the current scope.
func NewSuspense() *Suspense {
	count := NewIntSignal(0)
	ready := NewMemo(func(_ *bool) bool {
		return count.Get() == 0
	})
	return &Suspense{count: count, ready: ready}
}

// Increment records one more pending resource under this boundary.
// A no-op once the boundary's scope has been disposed: async work racing
// a teardown must not be able to crash its completion goroutine.
func (s *Suspense) Increment() {
	s.count.TryAdd(1)
}

// Decrement records the completion of one pending resource. Like
// Increment, a no-op after disposal.
func (s *Suspense) Decrement() {
	s.count.TryAdd(-1)
}

// Pending returns the number of unresolved resources, subscribing the
// current observer.
func (s *Suspense) Pending() int {
	return s.count.Get()
}

// Ready returns the derived memo over the counter: true iff no resource
// under the boundary is still pending.
func (s *Suspense) Ready() Memo[bool] {
	return s.ready
}
