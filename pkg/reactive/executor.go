package reactive

import (
	"log/slog"
	"sync"
)

// Task is a unit of work handed to the Executor.
type Task func()

// Executor is the process-wide, pluggable spawn mechanism that decouples
// effect scheduling from any particular host runtime. Exactly one
// executor is installed per process; the same reactive engine then runs
// unmodified under a plain goroutine scheduler, a manually pumped
// single-threaded loop (the browser/GUI shape), or an inline synchronous
// mode for deterministic server rendering and tests.
//
// Spawn is for tasks that may run on any goroutine; SpawnLocal is for
// tasks that must stay on the host loop's goroutine. Under InitGoroutine
// both spawn fresh goroutines; under InitLoop both are queued on the
// loop.
var executor = struct {
	mu         sync.Mutex
	spawn      func(Task)
	spawnLocal func(Task)
	name       string
}{}

// install sets the spawn pair once. The second attempt reports
// ErrAlreadySet.
func install(name string, spawn, spawnLocal func(Task)) error {
	executor.mu.Lock()
	defer executor.mu.Unlock()

	if executor.spawn != nil {
		return ErrAlreadySet
	}
	executor.spawn = spawn
	executor.spawnLocal = spawnLocal
	executor.name = name
	return nil
}

// InitGoroutine installs an executor that runs every task on its own
// goroutine. The right choice for multi-threaded server runtimes where
// each task rebinds its Runtime anyway.
func InitGoroutine() error {
	return install("goroutine",
		func(t Task) { go t() },
		func(t Task) { go t() },
	)
}

// InitLoop installs an executor that queues every task on l. The host
// pumps the loop (Tick from its main loop, or Run on a dedicated
// goroutine); this is the single-threaded event-loop shape of a browser
// or GUI toolkit main loop.
func InitLoop(l *Loop) error {
	return install("loop", l.Push, l.Push)
}

// InitSynchronous installs an executor that runs every task inline at
// the spawn site. Propagation becomes fully synchronous and
// deterministic, which is what server-side rendering and most tests
// want.
func InitSynchronous() error {
	return install("synchronous",
		func(t Task) { t() },
		func(t Task) { t() },
	)
}

// InitFunc installs a custom spawn pair for embedding in a host runtime
// the stock executors don't cover.
func InitFunc(spawn, spawnLocal func(Task)) error {
	if spawn == nil || spawnLocal == nil {
		return ErrNoExecutor
	}
	return install("custom", spawn, spawnLocal)
}

// ResetExecutor uninstalls the executor. Intended for tests; calling it
// with scheduled work outstanding strands that work.
func ResetExecutor() {
	executor.mu.Lock()
	defer executor.mu.Unlock()
	executor.spawn = nil
	executor.spawnLocal = nil
	executor.name = ""
}

// ExecutorInstalled reports whether an executor has been installed.
func ExecutorInstalled() bool {
	executor.mu.Lock()
	defer executor.mu.Unlock()
	return executor.spawn != nil
}

// ExecutorName returns the name of the installed executor, or "".
func ExecutorName() string {
	executor.mu.Lock()
	defer executor.mu.Unlock()
	return executor.name
}

// Spawn hands t to the installed executor. Calling Spawn before an
// executor is installed is a programming error: it panics in debug mode
// and logs-and-drops in release.
func Spawn(t Task) {
	spawnWith(func() func(Task) { return executor.spawn }, "Spawn", t)
}

// SpawnLocal hands t to the installed executor's local queue. Same
// pre-install behavior as Spawn.
func SpawnLocal(t Task) {
	spawnWith(func() func(Task) { return executor.spawnLocal }, "SpawnLocal", t)
}

func spawnWith(get func() func(Task), op string, t Task) {
	executor.mu.Lock()
	fn := get()
	executor.mu.Unlock()

	if fn == nil {
		if DebugMode {
			panic("reactive: " + op + " called before an executor was installed")
		}
		slog.Warn("reactive: task dropped, no executor installed", "op", op)
		return
	}
	fn(t)
}
