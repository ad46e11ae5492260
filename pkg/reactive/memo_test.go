package reactive

import "testing"

func TestMemoDerivesValue(t *testing.T) {
	// The canonical end-to-end scenario.
	s, setS := NewSignal(0)
	m := NewMemo(func(_ *int) int { return s.Get() * 2 })

	if got := m.Get(); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}

	setS.Set(21)
	if got := m.Get(); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestMemoIsLazy(t *testing.T) {
	s, setS := NewSignal(1)

	computations := 0
	m := NewMemo(func(_ *int) int {
		computations++
		return s.Get()
	})

	if computations != 0 {
		t.Fatalf("memo must not compute before first read, got %d", computations)
	}

	_ = m.Get()
	if computations != 1 {
		t.Errorf("expected 1 computation, got %d", computations)
	}

	// Writes alone must not recompute.
	setS.Set(2)
	setS.Set(3)
	if computations != 1 {
		t.Errorf("writes must not force recomputation, got %d", computations)
	}

	_ = m.Get()
	if computations != 2 {
		t.Errorf("expected recomputation on next read, got %d", computations)
	}
}

func TestMemoCachesWhileClean(t *testing.T) {
	s, _ := NewSignal(5)

	computations := 0
	m := NewMemo(func(_ *int) int {
		computations++
		return s.Get() * 10
	})

	for i := 0; i < 5; i++ {
		if got := m.Get(); got != 50 {
			t.Fatalf("expected 50, got %d", got)
		}
	}
	if computations != 1 {
		t.Errorf("expected a single computation, got %d", computations)
	}
}

func TestMemoDiamondComputesOncePerWrite(t *testing.T) {
	// S fans out to A and B; C joins them. C must recompute at most once
	// per write to S, not once per upstream memo.
	s, setS := NewSignal(1)

	a := NewMemo(func(_ *int) int { return s.Get() + 1 })
	b := NewMemo(func(_ *int) int { return s.Get() * 2 })

	cComputations := 0
	c := NewMemo(func(_ *int) int {
		cComputations++
		return a.Get() + b.Get()
	})

	if got := c.Get(); got != 4 { // (1+1) + (1*2)
		t.Fatalf("expected 4, got %d", got)
	}
	if cComputations != 1 {
		t.Fatalf("expected 1 computation, got %d", cComputations)
	}

	for i := 2; i <= 10; i++ {
		setS.Set(i)
		want := (i + 1) + (i * 2)
		if got := c.Get(); got != want {
			t.Errorf("write %d: expected %d, got %d", i, want, got)
		}
	}
	if cComputations != 10 {
		t.Errorf("expected exactly one computation per write (10 total), got %d", cComputations)
	}
}

func TestMemoEqualValueDoesNotNotifySubscribers(t *testing.T) {
	rt := CurrentRuntime()

	count, setCount := NewSignal(2)
	isEven := NewMemo(func(_ *bool) bool { return count.Get()%2 == 0 })

	runs := 0
	NewEffect(func() Cleanup {
		_ = isEven.Get()
		runs++
		return nil
	})
	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	// 2 -> 4: still even, memo value unchanged, effect must not run.
	setCount.Set(4)
	rt.Flush()
	if runs != 1 {
		t.Errorf("expected suppression for unchanged memo value, got %d runs", runs)
	}

	// 2 -> 3 parity flip: effect must run.
	setCount.Set(3)
	rt.Flush()
	if runs != 2 {
		t.Errorf("expected run for changed memo value, got %d runs", runs)
	}
}

func TestMemoChain(t *testing.T) {
	price, setPrice := NewSignal(100.0)
	taxRate, setTaxRate := NewSignal(0.08)
	discount, _ := NewSignal(0.1)

	taxed := NewMemo(func(_ *float64) float64 {
		return price.Get() * (1 + taxRate.Get())
	})
	final := NewMemo(func(_ *float64) float64 {
		return taxed.Get() * (1 - discount.Get())
	})

	if got := final.Get(); got != 97.2 {
		t.Errorf("expected 97.2, got %f", got)
	}

	setPrice.Set(200.0)
	if got := final.Get(); got != 194.4 {
		t.Errorf("expected 194.4, got %f", got)
	}

	setTaxRate.Set(0.1)
	got := final.Get()
	if got < 197.99 || got > 198.01 {
		t.Errorf("expected ~198, got %f", got)
	}
}

func TestMemoReceivesPreviousValue(t *testing.T) {
	s, setS := NewSignal(1)

	var prevs []int
	m := NewMemo(func(prev *int) int {
		if prev != nil {
			prevs = append(prevs, *prev)
		}
		return s.Get()
	})

	_ = m.Get()
	setS.Set(2)
	_ = m.Get()
	setS.Set(3)
	_ = m.Get()

	if len(prevs) != 2 || prevs[0] != 1 || prevs[1] != 2 {
		t.Errorf("expected previous values [1 2], got %v", prevs)
	}
}

func TestMemoDynamicDependencies(t *testing.T) {
	useA, setUseA := NewSignal(true)
	a, setA := NewSignal("a")
	b, setB := NewSignal("b")

	computations := 0
	m := NewMemo(func(_ *string) string {
		computations++
		if useA.Get() {
			return a.Get()
		}
		return b.Get()
	})

	if got := m.Get(); got != "a" {
		t.Fatalf("expected a, got %q", got)
	}

	setUseA.Set(false)
	if got := m.Get(); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	computations = 0

	// a is no longer a dependency: writing it must not invalidate.
	setA.Set("a2")
	_ = m.Get()
	if computations != 0 {
		t.Errorf("write to pruned dependency recomputed the memo %d times", computations)
	}

	setB.Set("b2")
	if got := m.Get(); got != "b2" {
		t.Errorf("expected b2, got %q", got)
	}
	if computations != 1 {
		t.Errorf("expected 1 recomputation, got %d", computations)
	}
}

func TestMemoCustomEquals(t *testing.T) {
	rt := CurrentRuntime()

	s, setS := NewSignal(1)
	// Bucket values by tens: 11 and 19 are "equal".
	m := NewMemo(func(_ *int) int {
		return s.Get()
	}, WithMemoEquals(func(a, b int) bool { return a/10 == b/10 }))

	runs := 0
	NewEffect(func() Cleanup {
		_ = m.Get()
		runs++
		return nil
	})

	setS.Set(5) // same bucket as 1
	rt.Flush()
	if runs != 1 {
		t.Errorf("expected bucket equality to suppress, got %d runs", runs)
	}

	setS.Set(25)
	rt.Flush()
	if runs != 2 {
		t.Errorf("expected run on bucket change, got %d runs", runs)
	}
}

func TestMemoReentrantReadDebugPanics(t *testing.T) {
	DebugMode = true
	defer func() { DebugMode = false }()

	var m Memo[int]
	m = NewMemo(func(_ *int) int {
		v, _ := m.TryGet() // reads itself mid-computation
		return v + 1
	})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on reentrant memo read in debug mode")
		}
	}()
	_ = m.Get()
}

func TestMemoReentrantReadReleaseUsesStale(t *testing.T) {
	var m Memo[int]
	m = NewMemo(func(_ *int) int {
		v, _ := m.TryGet() // zero value during the first computation
		return v + 1
	})

	if got := m.Get(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestMemoTryGetAfterDispose(t *testing.T) {
	owner := NewOwner(nil)

	var m Memo[int]
	owner.Run(func() {
		m = NewMemo(func(_ *int) int { return 1 })
	})
	owner.Dispose()

	if _, ok := m.TryGet(); ok {
		t.Error("TryGet should fail after dispose")
	}
}
