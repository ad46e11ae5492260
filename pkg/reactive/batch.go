package reactive

// DebugMode enables development-time behavior throughout the package:
// loud panics where release builds degrade gracefully (pre-install
// Spawn, reentrant memo reads) and transaction logging in TxNamed. Set
// it at startup and leave it alone.
var DebugMode bool

// Batch runs fn with effect execution deferred. Signal writes inside the
// batch still apply immediately, so a read later in the same batch sees
// the new value, but stale effects are only flushed once, after the
// outermost batch ends, each distinct effect exactly once regardless of
// how many of its sources changed.
//
// Batches nest; inner batches flatten into the outermost one.
//
//	reactive.Batch(func() {
//	    first.Set("John")
//	    last.Set("Doe")
//	    age.Set(30)
//	})
//	// A dependent effect runs once, seeing all three changes.
func Batch(fn func()) {
	rt := current()
	rt.batchDepth++

	defer func() {
		rt.batchDepth--
		if rt.batchDepth == 0 && len(rt.queue) > 0 {
			rt.scheduleFlush()
		}
	}()

	fn()
}

// Tx is Batch under the transaction name used elsewhere in Filament.
func Tx(fn func()) {
	Batch(fn)
}

// TxNamed runs fn as a named transaction. The name shows up in debug
// logs, which is the cheapest way to find out which transaction keeps
// re-running an effect.
func TxNamed(name string, fn func()) {
	if DebugMode {
		rt := current()
		rt.logger.Debug("tx start", "name", name)
		defer rt.logger.Debug("tx end", "name", name)
	}
	Batch(fn)
}
