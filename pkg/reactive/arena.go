package reactive

import "fmt"

// Handle identifies a node in a Runtime's arena. Handles are small,
// copyable values: an index into the slot table plus the generation the
// slot had when the node was inserted. A handle dereferences successfully
// only while the generations still match, so a handle held across a
// disposal fails cleanly instead of reaching freed state.
type Handle struct {
	index uint32
	gen   uint32
}

// Zero returns true for the zero Handle, which never names a live node.
func (h Handle) Zero() bool {
	return h.gen == 0
}

// Index returns the slot index of the handle.
func (h Handle) Index() uint32 {
	return h.index
}

// Generation returns the generation of the handle.
func (h Handle) Generation() uint32 {
	return h.gen
}

// String renders the handle as "index@generation" for diagnostics.
func (h Handle) String() string {
	return fmt.Sprintf("%d@%d", h.index, h.gen)
}

// slot is one cell of the arena. The generation advances every time the
// slot is vacated, invalidating outstanding handles.
type slot struct {
	gen  uint32
	node anyNode
}

// arena is a generational slot table holding every reactive node of a
// Runtime. All operations are O(1) amortized. The arena itself performs
// no locking: it is owned by its Runtime's goroutine.
type arena struct {
	slots []slot
	free  []uint32
	live  int
}

// insert stores node and returns a handle for it.
func (a *arena) insert(node anyNode) Handle {
	a.live++

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx].node = node
		return Handle{index: idx, gen: a.slots[idx].gen}
	}

	a.slots = append(a.slots, slot{gen: 1, node: node})
	return Handle{index: uint32(len(a.slots) - 1), gen: 1}
}

// get returns the node for h, or (nil, false) if h is stale or zero.
func (a *arena) get(h Handle) (anyNode, bool) {
	if h.gen == 0 || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.index]
	if s.gen != h.gen || s.node == nil {
		return nil, false
	}
	return s.node, true
}

// remove vacates the slot for h and returns the removed node, or nil if
// the handle was already stale. The slot's generation is bumped so every
// outstanding handle to the node turns stale atomically.
func (a *arena) remove(h Handle) anyNode {
	node, ok := a.get(h)
	if !ok {
		return nil
	}

	s := &a.slots[h.index]
	s.node = nil
	s.gen++
	a.free = append(a.free, h.index)
	a.live--
	return node
}

// len reports the number of live nodes.
func (a *arena) len() int {
	return a.live
}
