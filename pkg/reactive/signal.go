package reactive

import (
	"fmt"
	"reflect"
)

// ReadSignal is the read half of a signal: a copyable capability handle
// over an arena slot. Reading through it during a tracked computation
// subscribes that computation to the signal.
type ReadSignal[T any] struct {
	rt *Runtime
	h  Handle
}

// WriteSignal is the write half of a signal. Writing through it marks
// every subscriber stale and triggers propagation.
type WriteSignal[T any] struct {
	rt *Runtime
	h  Handle
}

// SignalOption configures a signal at creation.
type SignalOption[T any] func(*signalNode)

// WithEquals sets a custom equality function used to decide whether a
// write actually changed the value. The default is == for comparable
// kinds and reflect.DeepEqual otherwise.
func WithEquals[T any](eq func(a, b T) bool) SignalOption[T] {
	return func(n *signalNode) {
		n.equals = func(a, b any) bool { return eq(zeroIfNil[T](a), zeroIfNil[T](b)) }
	}
}

// zeroIfNil recovers the typed value from an any slot. A signal of an
// interface type (error, say) stores a nil interface as untyped nil, so
// a plain assertion would panic there.
func zeroIfNil[T any](v any) T {
	t, _ := v.(T)
	return t
}

// NewSignal creates a signal holding initial and returns its read and
// write capability halves. The signal is owned by the current owner
// scope and is disposed with it.
func NewSignal[T any](initial T, opts ...SignalOption[T]) (ReadSignal[T], WriteSignal[T]) {
	rt := current()

	n := &signalNode{
		sourceState: newSourceState(),
		value:       initial,
		equals:      func(a, b any) bool { return defaultEquals(zeroIfNil[T](a), zeroIfNil[T](b)) },
	}
	for _, opt := range opts {
		opt(n)
	}

	h := rt.arena.insert(n)
	n.owner = rt.currentScope()
	rt.adopt(h)

	return ReadSignal[T]{rt: rt, h: h}, WriteSignal[T]{rt: rt, h: h}
}

// Handle returns the arena handle identifying this signal.
func (s ReadSignal[T]) Handle() Handle { return s.h }

// Get returns the current value and subscribes the current observer.
// Panics if the owning scope has been disposed; use TryGet to probe.
func (s ReadSignal[T]) Get() T {
	v, ok := s.TryGet()
	if !ok {
		panic(disposedError(kindSignal, s.h))
	}
	return v
}

// TryGet returns the current value, or (zero, false) after disposal.
func (s ReadSignal[T]) TryGet() (T, bool) {
	n, ok := s.rt.arena.get(s.h)
	if !ok {
		var zero T
		return zero, false
	}
	sig := n.(*signalNode)

	s.rt.trackRead(s.h, &sig.sourceState)
	return zeroIfNil[T](sig.value), true
}

// With applies fn to the current value, subscribing the current
// observer. Writing the same signal from inside fn is a reentrancy
// error and panics.
func (s ReadSignal[T]) With(fn func(v T)) {
	if !s.TryWith(fn) {
		panic(disposedError(kindSignal, s.h))
	}
}

// TryWith is With returning false instead of panicking after disposal.
func (s ReadSignal[T]) TryWith(fn func(v T)) bool {
	n, ok := s.rt.arena.get(s.h)
	if !ok {
		return false
	}
	sig := n.(*signalNode)

	s.rt.trackRead(s.h, &sig.sourceState)

	sig.reads++
	defer func() { sig.reads-- }()
	fn(zeroIfNil[T](sig.value))
	return true
}

// Peek returns the current value without subscribing.
func (s ReadSignal[T]) Peek() T {
	n, ok := s.rt.arena.get(s.h)
	if !ok {
		panic(disposedError(kindSignal, s.h))
	}
	return zeroIfNil[T](n.(*signalNode).value)
}

// Handle returns the arena handle identifying this signal.
func (s WriteSignal[T]) Handle() Handle { return s.h }

// Set stores v and, if the value changed under the signal's equality,
// marks every subscriber stale. Inside a batch the store still happens
// immediately; only effect execution is deferred to the end of the
// batch. Panics if the signal has been disposed.
func (s WriteSignal[T]) Set(v T) {
	if !s.TrySet(v) {
		panic(disposedError(kindSignal, s.h))
	}
}

// TrySet is Set returning false instead of panicking after disposal.
func (s WriteSignal[T]) TrySet(v T) bool {
	n, ok := s.rt.arena.get(s.h)
	if !ok {
		return false
	}
	s.write(n.(*signalNode), func(T) T { return v })
	return true
}

// Update stores fn(current). The read-modify-write is a single exclusive
// access: fn must not touch the same signal again.
func (s WriteSignal[T]) Update(fn func(v T) T) {
	if !s.TryUpdate(fn) {
		panic(disposedError(kindSignal, s.h))
	}
}

// TryUpdate is Update returning false instead of panicking after
// disposal.
func (s WriteSignal[T]) TryUpdate(fn func(v T) T) bool {
	n, ok := s.rt.arena.get(s.h)
	if !ok {
		return false
	}
	s.write(n.(*signalNode), fn)
	return true
}

// write performs the exclusive-borrow mutation discipline shared by Set
// and Update: reject writes while a read or another write of the same
// signal is in progress, then store and propagate.
func (s WriteSignal[T]) write(sig *signalNode, fn func(v T) T) {
	if sig.writing {
		panic(fmt.Sprintf("reactive: Signal %s written during its own update (reentrant mutation)", s.h))
	}
	if sig.reads > 0 {
		panic(fmt.Sprintf("reactive: Signal %s written while being read (reentrant mutation)", s.h))
	}

	sig.writing = true
	defer func() { sig.writing = false }()

	old := zeroIfNil[T](sig.value)
	next := fn(old)
	if sig.equals(old, next) {
		return
	}

	sig.value = next
	sig.version++
	s.rt.stats.signalWrites.Add(1)
	if s.rt.hooks.OnSignalWrite != nil {
		s.rt.hooks.OnSignalWrite(s.h)
	}

	// The store is complete; a synchronous executor may now run effects
	// from inside propagate, and those effects may legitimately write
	// this signal again.
	sig.writing = false

	s.rt.propagate(&sig.sourceState, stateDirty)
}

// defaultEquals provides type-appropriate equality checking: == for the
// common comparable kinds, reflect.DeepEqual for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
