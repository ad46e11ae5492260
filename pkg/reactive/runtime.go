package reactive

import (
	"log/slog"
	"sync"
	"time"

	"github.com/petermattis/goid"
)

// Runtime owns one reactive graph: the arena of nodes, the observer
// stack, the batch state, and the queue of stale effects. All graph
// mutation is single-goroutine/cooperative; a multi-goroutine deployment
// runs one Runtime per session so unrelated sessions never share mutable
// state.
type Runtime struct {
	arena arena

	// observers is the stack of currently running computations. The top
	// entry is what a read operation subscribes.
	observers []Handle

	// tracking is false inside Untracked; reads then skip edge creation.
	tracking bool

	// owner is the scope that adopts newly created nodes.
	owner Handle

	// root is the implicit top-level scope of this runtime.
	root Handle

	// batchDepth tracks nested Batch calls. While > 0, the effect queue
	// is not flushed.
	batchDepth int

	// queue holds stale effects in scheduling order.
	queue []Handle

	// flushScheduled is true while a flush task sits on the Executor.
	flushScheduled bool

	// flushing guards against reentrant flushes.
	flushing bool

	stats statCounters
	hooks Hooks

	logger *slog.Logger
}

// runtimes maps goroutine IDs to their bound Runtime. sync.Map because
// goroutines register and unregister concurrently.
var runtimes sync.Map

// New creates an empty Runtime with a fresh root scope. The runtime is
// not bound to any goroutine; use Bind, or rely on the implicit
// per-goroutine runtime created by the package-level constructors.
func New() *Runtime {
	rt := &Runtime{
		tracking: true,
		logger:   slog.Default(),
	}
	rt.root = rt.arena.insert(&scopeNode{values: make(map[any]any)})
	rt.owner = rt.root
	rt.stats.nodesLive.Add(1)
	return rt
}

// current returns the Runtime bound to the calling goroutine, creating
// and binding a fresh one on first use.
func current() *Runtime {
	gid := goid.Get()

	if rt, ok := runtimes.Load(gid); ok {
		return rt.(*Runtime)
	}

	rt := New()
	runtimes.Store(gid, rt)
	return rt
}

// CurrentRuntime returns the Runtime bound to the calling goroutine,
// creating one on first use.
func CurrentRuntime() *Runtime {
	return current()
}

// Bind runs fn with rt bound to the calling goroutine, restoring the
// previous binding afterwards. This is how a graph created on one
// goroutine (a session loop, say) is driven from a spawned task.
func Bind(rt *Runtime, fn func()) {
	gid := goid.Get()
	prev, had := runtimes.Load(gid)

	runtimes.Store(gid, rt)
	defer func() {
		if had {
			runtimes.Store(gid, prev)
		} else {
			runtimes.Delete(gid)
		}
	}()

	fn()
}

// ReleaseRuntime drops the calling goroutine's runtime binding. Long
// running programs that churn goroutines call this before a goroutine
// exits so the binding table does not accumulate dead entries.
func ReleaseRuntime() {
	runtimes.Delete(goid.Get())
}

// SetLogger replaces the runtime's logger (default slog.Default()).
func (rt *Runtime) SetLogger(l *slog.Logger) {
	if l != nil {
		rt.logger = l
	}
}

// Root returns the runtime's implicit top-level owner.
func (rt *Runtime) Root() *Owner {
	return &Owner{rt: rt, h: rt.root}
}

// Dispose tears down the whole graph: the root scope and everything
// under it.
func (rt *Runtime) Dispose() {
	rt.disposeScope(rt.root)
	rt.queue = nil
}

// currentScope returns the scope new nodes should attach to.
func (rt *Runtime) currentScope() Handle {
	if _, ok := rt.arena.get(rt.owner); ok {
		return rt.owner
	}
	return rt.root
}

// adopt registers a freshly inserted node with the current scope.
func (rt *Runtime) adopt(h Handle) {
	scope := rt.currentScope()
	if n, ok := rt.arena.get(scope); ok {
		sc := n.(*scopeNode)
		sc.nodes = append(sc.nodes, h)
	}
	rt.stats.nodesLive.Add(1)
}

// scheduleEffect enqueues a stale effect for the next flush. Idempotent:
// an effect already in the queue is not enqueued again.
func (rt *Runtime) scheduleEffect(h Handle, e *effectNode) {
	if e.pending || e.aborted {
		return
	}
	e.pending = true
	rt.queue = append(rt.queue, h)
	rt.scheduleFlush()
}

// scheduleFlush arranges for the effect queue to be drained. Inside a
// batch the flush waits for the outermost batch to end. With an Executor
// installed the flush runs as a spawned task; without one the queue
// waits for an explicit Flush call (the manual pump used by tests and
// deterministic server rendering).
func (rt *Runtime) scheduleFlush() {
	if rt.batchDepth > 0 || rt.flushScheduled || rt.flushing {
		return
	}
	if !ExecutorInstalled() {
		return
	}

	rt.flushScheduled = true
	SpawnLocal(func() {
		Bind(rt, rt.Flush)
	})
}

// Flush drains the effect queue, running every pending effect once.
// Effects scheduled by effects run in the same drain, FIFO. Flush is a
// no-op while a batch is open or a flush is already running.
func (rt *Runtime) Flush() {
	rt.flushScheduled = false
	if rt.flushing || rt.batchDepth > 0 {
		return
	}
	rt.flushing = true
	defer func() { rt.flushing = false }()

	start := time.Time{}
	if rt.hooks.OnFlush != nil {
		start = time.Now()
	}
	ran := 0

	for len(rt.queue) > 0 {
		q := rt.queue
		rt.queue = nil
		for _, h := range q {
			if rt.runEffect(h) {
				ran++
			}
		}
	}

	rt.stats.batchFlushes.Add(1)
	if rt.hooks.OnFlush != nil {
		rt.hooks.OnFlush(ran, time.Since(start))
	}
}

// HasPendingEffects reports whether any effect is queued.
func (rt *Runtime) HasPendingEffects() bool {
	return len(rt.queue) > 0
}
