package reactive

import "testing"

func TestArenaInsertGetRemove(t *testing.T) {
	var a arena

	n1 := &signalNode{sourceState: newSourceState(), value: 1}
	n2 := &signalNode{sourceState: newSourceState(), value: 2}

	h1 := a.insert(n1)
	h2 := a.insert(n2)

	if h1 == h2 {
		t.Fatal("distinct nodes must get distinct handles")
	}
	if a.len() != 2 {
		t.Errorf("expected 2 live nodes, got %d", a.len())
	}

	got, ok := a.get(h1)
	if !ok || got != anyNode(n1) {
		t.Error("get returned the wrong node")
	}

	if removed := a.remove(h1); removed != anyNode(n1) {
		t.Error("remove returned the wrong node")
	}
	if a.len() != 1 {
		t.Errorf("expected 1 live node, got %d", a.len())
	}
}

func TestArenaStaleHandleFailsGracefully(t *testing.T) {
	var a arena

	h := a.insert(&triggerNode{sourceState: newSourceState()})
	a.remove(h)

	if _, ok := a.get(h); ok {
		t.Error("stale handle resolved after removal")
	}
	if a.remove(h) != nil {
		t.Error("double remove should be a no-op")
	}
}

func TestArenaSlotReuseBumpsGeneration(t *testing.T) {
	var a arena

	h1 := a.insert(&triggerNode{sourceState: newSourceState()})
	a.remove(h1)

	h2 := a.insert(&triggerNode{sourceState: newSourceState()})

	if h1.Index() != h2.Index() {
		t.Fatalf("expected slot reuse, got %d then %d", h1.Index(), h2.Index())
	}
	if h1.Generation() == h2.Generation() {
		t.Error("reused slot must carry a new generation")
	}

	// The old handle must not alias the new occupant.
	if _, ok := a.get(h1); ok {
		t.Error("stale handle resolved against a reused slot")
	}
	if _, ok := a.get(h2); !ok {
		t.Error("fresh handle failed to resolve")
	}
}

func TestArenaZeroHandle(t *testing.T) {
	var a arena
	var zero Handle

	if !zero.Zero() {
		t.Error("zero handle should report Zero")
	}
	if _, ok := a.get(zero); ok {
		t.Error("zero handle must never resolve")
	}
}

func TestHandleString(t *testing.T) {
	var a arena
	h := a.insert(&triggerNode{sourceState: newSourceState()})

	if h.String() != "0@1" {
		t.Errorf("expected 0@1, got %s", h.String())
	}
}
