package reactive

import (
	"context"
	"sync"
	"time"
)

// ResourceState is the lifecycle phase of an async resource.
type ResourceState int

const (
	ResourcePending ResourceState = iota // created, first fetch not finished
	ResourceLoading                      // fetch in flight
	ResourceReady                        // last fetch succeeded
	ResourceFailed                       // last fetch failed
)

func (s ResourceState) String() string {
	switch s {
	case ResourcePending:
		return "pending"
	case ResourceLoading:
		return "loading"
	case ResourceReady:
		return "ready"
	case ResourceFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resource wraps an async fetch in reactive state: signals for phase,
// value and error that computations subscribe to like any other source.
// The fetch runs on the Executor via Spawn; the result is applied back
// through SpawnLocal, so under a Loop or synchronous executor all signal
// writes stay on the graph's goroutine. Under the goroutine executor the
// host must serialize graph access itself.
type Resource[T any] struct {
	rt *Runtime

	// fetch is read and, for keyed resources, replaced under mu.
	fetch func(ctx context.Context) (T, error)

	state    ReadSignal[ResourceState]
	setState WriteSignal[ResourceState]
	value    ReadSignal[T]
	setValue WriteSignal[T]
	err      ReadSignal[error]
	setErr   WriteSignal[error]

	suspense  *Suspense
	staleTime time.Duration

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	readyAt  time.Time
	hasReady bool
}

// ResourceOption configures a resource at creation.
type ResourceOption[T any] func(*Resource[T])

// WithSuspense ties the resource to a suspense boundary: the boundary's
// counter is incremented for every fetch in flight.
func WithSuspense[T any](s *Suspense) ResourceOption[T] {
	return func(r *Resource[T]) {
		r.suspense = s
	}
}

// WithInitial sets the value reported before the first fetch resolves.
func WithInitial[T any](v T) ResourceOption[T] {
	return func(r *Resource[T]) {
		r.setValue.Set(v)
	}
}

// WithStaleTime makes Fetch a no-op while the last successful result is
// younger than d. Refetch always bypasses it.
func WithStaleTime[T any](d time.Duration) ResourceOption[T] {
	return func(r *Resource[T]) {
		r.staleTime = d
	}
}

// NewResource creates a resource owned by the current scope and starts
// its first fetch. Disposing the owner cancels any fetch in flight.
func NewResource[T any](fetch func(ctx context.Context) (T, error), opts ...ResourceOption[T]) *Resource[T] {
	rt := current()

	r := &Resource[T]{rt: rt, fetch: fetch}
	r.state, r.setState = NewSignal(ResourcePending)
	var zero T
	r.value, r.setValue = NewSignal(zero)
	r.err, r.setErr = NewSignal[error](nil)

	for _, opt := range opts {
		opt(r)
	}

	OnCleanup(func() {
		r.mu.Lock()
		r.seq++
		if r.cancel != nil {
			r.cancel()
		}
		r.mu.Unlock()
	})

	r.Refetch()
	return r
}

// NewKeyedResource creates a resource that refetches whenever key's
// reactive dependencies change. The key value is passed to the fetch.
func NewKeyedResource[K comparable, T any](key func() K, fetch func(ctx context.Context, k K) (T, error), opts ...ResourceOption[T]) *Resource[T] {
	// Each fetch closes over the key it was scheduled with, so an
	// in-flight fetch never observes a later key change.
	forKey := func(k K) func(ctx context.Context) (T, error) {
		return func(ctx context.Context) (T, error) {
			return fetch(ctx, k)
		}
	}

	var r *Resource[T]
	NewEffect(func() Cleanup {
		k := key()
		if r == nil {
			r = NewResource(forKey(k), opts...)
			return nil
		}
		r.mu.Lock()
		r.fetch = forKey(k)
		r.mu.Unlock()
		r.Refetch()
		return nil
	})
	return r
}

// State returns the current phase, subscribing the observer.
func (r *Resource[T]) State() ResourceState {
	v, ok := r.state.TryGet()
	if !ok {
		return ResourcePending
	}
	return v
}

// Loading reports whether no result is available yet.
func (r *Resource[T]) Loading() bool {
	s := r.State()
	return s == ResourcePending || s == ResourceLoading
}

// Ready reports whether the last fetch succeeded.
func (r *Resource[T]) Ready() bool { return r.State() == ResourceReady }

// Failed reports whether the last fetch failed.
func (r *Resource[T]) Failed() bool { return r.State() == ResourceFailed }

// Get returns the last successful value and the last error, subscribing
// the observer to both. Before the first success the value is the zero
// value or the WithInitial value.
func (r *Resource[T]) Get() (T, error) {
	v, _ := r.value.TryGet()
	e, _ := r.err.TryGet()
	return v, e
}

// Value returns the last successful value, subscribing the observer.
func (r *Resource[T]) Value() T {
	v, _ := r.value.TryGet()
	return v
}

// ValueOr returns the last successful value, or fallback while no fetch
// has succeeded yet.
func (r *Resource[T]) ValueOr(fallback T) T {
	if !r.Ready() {
		return fallback
	}
	return r.Value()
}

// Err returns the last fetch error, subscribing the observer.
func (r *Resource[T]) Err() error {
	e, _ := r.err.TryGet()
	return e
}

// Fetch starts a fetch unless the last success is still fresh under
// WithStaleTime.
func (r *Resource[T]) Fetch() {
	r.mu.Lock()
	fresh := r.hasReady && r.staleTime > 0 && time.Since(r.readyAt) < r.staleTime
	r.mu.Unlock()
	if fresh {
		return
	}
	r.Refetch()
}

// Refetch starts a fetch unconditionally. A newer fetch supersedes an
// older one: the older context is cancelled and its result, should it
// still arrive, is discarded.
func (r *Resource[T]) Refetch() {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	fetch := r.fetch
	r.mu.Unlock()

	if r.suspense != nil {
		r.suspense.Increment()
	}
	r.setState.TrySet(ResourceLoading)

	Spawn(func() {
		v, err := fetch(ctx)
		SpawnLocal(func() {
			Bind(r.rt, func() {
				r.apply(seq, v, err)
			})
		})
	})
}

// apply commits a completed fetch on the graph's goroutine.
func (r *Resource[T]) apply(seq uint64, v T, err error) {
	if r.suspense != nil {
		defer r.suspense.Decrement()
	}

	r.mu.Lock()
	stale := seq != r.seq
	if !stale && err == nil {
		r.readyAt = time.Now()
		r.hasReady = true
	}
	r.mu.Unlock()
	if stale {
		return
	}

	Batch(func() {
		if err != nil {
			r.setErr.TrySet(err)
			r.setState.TrySet(ResourceFailed)
			return
		}
		r.setValue.TrySet(v)
		r.setErr.TrySet(nil)
		r.setState.TrySet(ResourceReady)
	})
}
