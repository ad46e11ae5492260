package reactive

import "testing"

func TestSuspenseReadyTracksCounter(t *testing.T) {
	sus := NewSuspense()

	if !sus.Ready().Get() {
		t.Fatal("boundary with no pending resources should be ready")
	}

	sus.Increment()
	if sus.Ready().Get() {
		t.Error("boundary should be pending after increment")
	}
	if got := sus.Pending(); got != 1 {
		t.Errorf("expected 1 pending, got %d", got)
	}

	sus.Increment()
	sus.Decrement()
	if sus.Ready().Get() {
		t.Error("boundary still has one unresolved resource")
	}

	sus.Decrement()
	if !sus.Ready().Get() {
		t.Error("boundary should be ready after all resources resolve")
	}
}

func TestSuspenseReadyIsMemoized(t *testing.T) {
	rt := CurrentRuntime()
	sus := NewSuspense()

	runs := 0
	NewEffect(func() Cleanup {
		_ = sus.Ready().Get()
		runs++
		return nil
	})

	// 1 -> 2 pending: Ready stays false, subscribers must not be woken.
	sus.Increment()
	rt.Flush()
	runsAfterFirst := runs

	sus.Increment()
	rt.Flush()
	if runs != runsAfterFirst {
		t.Errorf("Ready notified subscribers without changing value: %d -> %d runs",
			runsAfterFirst, runs)
	}

	sus.Decrement()
	sus.Decrement()
	rt.Flush()
	if runs != runsAfterFirst+1 {
		t.Errorf("expected one run when Ready flipped to true, got %d", runs-runsAfterFirst)
	}
}

func TestSuspenseDisposedWithScope(t *testing.T) {
	owner := NewOwner(nil)

	var sus *Suspense
	owner.Run(func() {
		sus = NewSuspense()
	})
	owner.Dispose()

	if _, ok := sus.Ready().TryGet(); ok {
		t.Error("suspense memo should die with its scope")
	}
}
