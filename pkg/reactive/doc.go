// Package reactive provides the fine-grained reactive core for the
// Filament framework.
//
// The reactive system tracks dependencies automatically at runtime.
// Reading a signal or memo inside a memo computation or an effect
// subscribes that computation to the value, so it re-runs (or
// invalidates) when the value changes.
//
// # Core Types
//
// Signals are split into a read and a write capability half:
//
//	count, setCount := reactive.NewSignal(0)
//	value := count.Get()   // Read (subscribes the current observer)
//	setCount.Set(5)        // Write (marks subscribers stale)
//	setCount.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached, lazily recomputed derived value:
//
//	doubled := reactive.NewMemo(func(prev *int) int { return count.Get() * 2 })
//	value := doubled.Get() // Recomputes only if a dependency changed
//
// Effects run side effects. The first run is synchronous; re-runs are
// scheduled through the installed Executor:
//
//	reactive.NewEffect(func() reactive.Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	})
//
// # Identity
//
// Every node (signal, memo, effect, trigger, owner scope) lives in a
// generational arena and is addressed by a copyable Handle. Disposing an
// owner removes its nodes from the arena; any handle kept around after
// that fails its generation check instead of touching freed state, so
// the graph can contain arbitrary-looking cycles without leaks.
//
// # Threading
//
// A Runtime is single-goroutine by default: each goroutine gets its own
// graph instance, looked up implicitly by goroutine ID. Use Bind to run
// a function against a specific Runtime from another goroutine. Signals
// belonging to one runtime must not be mutated concurrently from several
// goroutines; a multi-goroutine deployment runs one runtime per
// session/request.
package reactive
