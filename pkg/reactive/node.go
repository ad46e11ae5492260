package reactive

// nodeKind tags the payload stored in an arena slot.
type nodeKind uint8

const (
	kindSignal nodeKind = iota + 1
	kindTrigger
	kindMemo
	kindEffect
	kindScope
)

// String returns a human-readable name for the node kind.
func (k nodeKind) String() string {
	switch k {
	case kindSignal:
		return "Signal"
	case kindTrigger:
		return "Trigger"
	case kindMemo:
		return "Memo"
	case kindEffect:
		return "Effect"
	case kindScope:
		return "Owner"
	default:
		return "Unknown"
	}
}

// anyNode is the type-erased payload behind every arena slot. Concrete
// node types close over arbitrary value types; the rest of the engine
// only ever needs the narrow capability surface exposed through type
// switches on the node structs below.
type anyNode interface {
	kind() nodeKind
}

// nodeState is the staleness marker of a subscriber node.
//
// A written signal marks its direct subscribers stateDirty and their
// transitive subscribers stateCheck ("maybe dirty"). A check-marked node
// polls its recorded sources before recomputing, so a memo whose
// upstream recomputed to an equal value settles back to clean without
// running and without waking its own subscribers.
type nodeState uint8

const (
	stateClean nodeState = iota
	stateCheck
	stateDirty
)

// sourceState is embedded in every node that can be depended upon
// (signals, triggers, memos). version advances only when the observable
// value actually changes; subscribers compare it against the version
// they saw at their last run.
type sourceState struct {
	subs    map[Handle]struct{}
	version uint64
}

func newSourceState() sourceState {
	return sourceState{subs: make(map[Handle]struct{})}
}

// sourceEdge records one dependency of a subscriber: the source handle
// and the source version observed when the edge was (re)established.
type sourceEdge struct {
	src  Handle
	seen uint64
}

// subscriberState is embedded in every node that depends on sources
// (memos, effects). The sources list is cleared and rebuilt from scratch
// on every run, which is what makes dependency tracking dynamic: a
// source read only in an untaken branch is dropped after the next run.
type subscriberState struct {
	sources []sourceEdge
	state   nodeState
}

// hasSource reports whether an edge to src is already recorded.
// Edge inserts are idempotent so repeated reads of the same source
// within one run do not duplicate edges.
func (s *subscriberState) hasSource(src Handle) bool {
	for i := range s.sources {
		if s.sources[i].src == src {
			return true
		}
	}
	return false
}

// signalNode is the arena payload of a signal. The value is type-erased;
// the generic ReadSignal/WriteSignal halves cast at the boundary.
type signalNode struct {
	sourceState

	value  any
	equals func(a, b any) bool
	owner  Handle

	// reads counts in-progress With calls, writing flags an in-progress
	// Set/Update. Both exist to fail fast on reentrant mutation.
	reads   int
	writing bool
}

func (*signalNode) kind() nodeKind { return kindSignal }

// triggerNode is a valueless signal used purely for notification.
type triggerNode struct {
	sourceState
	owner Handle
}

func (*triggerNode) kind() nodeKind { return kindTrigger }

// memoNode is both a source and a subscriber. compute receives the
// previous cached value and whether one exists yet.
type memoNode struct {
	sourceState
	subscriberState

	compute func(prev any, has bool) any
	value   any
	has     bool
	equals  func(a, b any) bool
	owner   Handle

	computing bool
}

func (*memoNode) kind() nodeKind { return kindMemo }

// effectNode is a terminal subscriber. run is the user function; cleanup
// is whatever the previous run returned.
type effectNode struct {
	subscriberState

	run     func() Cleanup
	cleanup Cleanup
	owner   Handle

	// pending is true while the effect sits in the runtime's queue.
	pending bool

	// aborted is set on disposal so an already-queued invocation never
	// applies its side effect afterwards.
	aborted bool
}

func (*effectNode) kind() nodeKind { return kindEffect }

// scopeNode is an owner scope: a lifetime node in the owner tree.
type scopeNode struct {
	parent   Handle
	children []Handle
	nodes    []Handle
	cleanups []func()
	values   map[any]any
	disposed bool
}

func (*scopeNode) kind() nodeKind { return kindScope }

// sourceOf returns the embedded sourceState of n, or nil if n is not a
// source node.
func sourceOf(n anyNode) *sourceState {
	switch t := n.(type) {
	case *signalNode:
		return &t.sourceState
	case *triggerNode:
		return &t.sourceState
	case *memoNode:
		return &t.sourceState
	default:
		return nil
	}
}

// subscriberOf returns the embedded subscriberState of n, or nil if n is
// not a subscriber node.
func subscriberOf(n anyNode) *subscriberState {
	switch t := n.(type) {
	case *memoNode:
		return &t.subscriberState
	case *effectNode:
		return &t.subscriberState
	default:
		return nil
	}
}
