package reactive

import "testing"

func TestUntrackedReadDoesNotSubscribe(t *testing.T) {
	rt := CurrentRuntime()

	tracked, setTracked := NewSignal(1)
	untracked, setUntracked := NewSignal(1)

	runs := 0
	NewEffect(func() Cleanup {
		_ = tracked.Get()
		Untracked(func() {
			_ = untracked.Get()
		})
		runs++
		return nil
	})

	setUntracked.Set(2)
	rt.Flush()
	if runs != 1 {
		t.Errorf("untracked read created a dependency: %d runs", runs)
	}

	setTracked.Set(2)
	rt.Flush()
	if runs != 2 {
		t.Errorf("tracked read lost its dependency: %d runs", runs)
	}
}

func TestUntrackedValueReturnsResult(t *testing.T) {
	s, _ := NewSignal(41)

	got := UntrackedValue(func() int { return s.Get() + 1 })
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestRepeatedReadsRecordOneEdge(t *testing.T) {
	rt := CurrentRuntime()

	s, setS := NewSignal(1)

	m := NewMemo(func(_ *int) int {
		// Three reads of the same source within one run.
		return s.Get() + s.Get() + s.Get()
	})
	if got := m.Get(); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}

	n, ok := rt.arena.get(m.Handle())
	if !ok {
		t.Fatal("memo vanished")
	}
	node := n.(*memoNode)
	if len(node.sources) != 1 {
		t.Errorf("expected a single deduplicated edge, got %d", len(node.sources))
	}

	sig, _ := rt.arena.get(s.Handle())
	if subs := sig.(*signalNode).subs; len(subs) != 1 {
		t.Errorf("expected a single subscriber entry, got %d", len(subs))
	}

	setS.Set(2)
	if got := m.Get(); got != 6 {
		t.Errorf("expected 6, got %d", got)
	}
}

func TestEdgesRebuiltEachRun(t *testing.T) {
	rt := CurrentRuntime()

	cond, setCond := NewSignal(true)
	a, _ := NewSignal(1)
	b, _ := NewSignal(2)

	m := NewMemo(func(_ *int) int {
		if cond.Get() {
			return a.Get()
		}
		return b.Get()
	})
	_ = m.Get()

	node, _ := rt.arena.get(m.Handle())
	if got := len(node.(*memoNode).sources); got != 2 {
		t.Fatalf("expected sources {cond, a}, got %d edges", got)
	}

	setCond.Set(false)
	_ = m.Get()

	node, _ = rt.arena.get(m.Handle())
	memo := node.(*memoNode)
	if got := len(memo.sources); got != 2 {
		t.Fatalf("expected sources {cond, b}, got %d edges", got)
	}
	for i := range memo.sources {
		if memo.sources[i].src == a.Handle() {
			t.Error("edge to the untaken branch survived the re-run")
		}
	}

	sig, _ := rt.arena.get(a.Handle())
	if subs := sig.(*signalNode).subs; len(subs) != 0 {
		t.Errorf("stale subscriber entry on pruned source: %d", len(subs))
	}
}

func TestNestedComputationsRestoreObserver(t *testing.T) {
	rt := CurrentRuntime()

	inner, setInner := NewSignal(1)
	outerOnly, setOuterOnly := NewSignal(10)

	innerMemo := NewMemo(func(_ *int) int { return inner.Get() })

	runs := 0
	NewEffect(func() Cleanup {
		// Reading through a memo runs the memo's computation with the
		// memo as observer; afterwards the effect must be restored as
		// the observer for the next read.
		_ = innerMemo.Get()
		_ = outerOnly.Get()
		runs++
		return nil
	})

	setOuterOnly.Set(11)
	rt.Flush()
	if runs != 2 {
		t.Errorf("observer stack not restored after nested computation: %d runs", runs)
	}

	setInner.Set(2)
	rt.Flush()
	if runs != 3 {
		t.Errorf("dependency through memo lost: %d runs", runs)
	}
}
