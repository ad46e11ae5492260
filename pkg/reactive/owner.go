package reactive

// Owner is a lifetime scope in the owner tree. Every reactive node is
// created inside exactly one scope (explicitly via WithOwner/Run, or the
// current scope implicitly) and is torn down when that scope is
// disposed. Owners mirror the component tree of a UI: dispose the
// component's owner and every signal, memo, effect and child scope under
// it goes with it, with no cycle collection needed; nodes reference
// each other only by arena handle.
type Owner struct {
	rt *Runtime
	h  Handle
}

// NewOwner creates a child scope of parent. A nil parent attaches the
// scope under the current owner (or the runtime root).
func NewOwner(parent *Owner) *Owner {
	rt := current()

	parentHandle := rt.currentScope()
	if parent != nil {
		rt = parent.rt
		parentHandle = parent.h
	}

	sc := &scopeNode{parent: parentHandle, values: make(map[any]any)}
	h := rt.arena.insert(sc)
	rt.stats.nodesLive.Add(1)

	if p, ok := rt.arena.get(parentHandle); ok {
		p.(*scopeNode).children = append(p.(*scopeNode).children, h)
	}

	return &Owner{rt: rt, h: h}
}

// Handle returns the arena handle identifying this scope.
func (o *Owner) Handle() Handle { return o.h }

// IsDisposed reports whether the scope has been torn down.
func (o *Owner) IsDisposed() bool {
	_, ok := o.rt.arena.get(o.h)
	return !ok
}

// Run executes fn with this owner as the current scope, so every node fn
// creates belongs to it.
func (o *Owner) Run(fn func()) {
	prev := o.rt.owner
	o.rt.owner = o.h
	defer func() { o.rt.owner = prev }()
	fn()
}

// WithOwner runs fn with owner as the current scope. Equivalent to
// owner.Run(fn); kept as a free function for call sites that read better
// that way.
func WithOwner(owner *Owner, fn func()) {
	owner.Run(fn)
}

// OnCleanup registers fn to run once when this owner is disposed.
// Cleanups run in reverse registration order, after every node and child
// scope of the owner has already been removed, so a cleanup never observes
// a half-torn-down subtree. Registering on an already-disposed owner
// runs fn immediately.
func (o *Owner) OnCleanup(fn func()) {
	n, ok := o.rt.arena.get(o.h)
	if !ok {
		fn()
		return
	}
	sc := n.(*scopeNode)
	sc.cleanups = append(sc.cleanups, fn)
}

// OnCleanup registers fn against the current owner scope.
func OnCleanup(fn func()) {
	rt := current()
	(&Owner{rt: rt, h: rt.currentScope()}).OnCleanup(fn)
}

// Dispose tears down this owner: all child scopes depth-first, then the
// owner's own nodes, then the registered cleanups in reverse order.
// Already-scheduled effect invocations under this owner are aborted and
// never apply after Dispose returns.
func (o *Owner) Dispose() {
	o.rt.disposeScope(o.h)
}

// Root creates an owner scope under the current owner, runs fn inside
// it, and hands fn a disposer for the scope. The conventional way to
// bracket the lifetime of a rendered tree:
//
//	reactive.Root(func(dispose func()) {
//	    // create signals, effects ...
//	    defer dispose()
//	})
func Root(fn func(dispose func())) {
	owner := NewOwner(nil)
	owner.Run(func() {
		fn(owner.Dispose)
	})
}

// Provide stores a context value on the current owner scope. Values are
// visible to the scope's subtree via UseContext.
func Provide(key, value any) {
	rt := current()
	if n, ok := rt.arena.get(rt.currentScope()); ok {
		n.(*scopeNode).values[key] = value
	}
}

// UseContext looks key up on the current owner scope and then up the
// owner chain, returning the nearest value.
func UseContext(key any) (any, bool) {
	rt := current()
	h := rt.currentScope()
	for {
		n, ok := rt.arena.get(h)
		if !ok {
			return nil, false
		}
		sc := n.(*scopeNode)
		if v, found := sc.values[key]; found {
			return v, true
		}
		if sc.parent.Zero() {
			return nil, false
		}
		h = sc.parent
	}
}

// disposeScope removes a scope and everything under it from the arena:
// child scopes recursively (in reverse creation order), then the scope's
// own nodes, then the scope slot itself; the scope's cleanups run last.
func (rt *Runtime) disposeScope(h Handle) {
	n, ok := rt.arena.get(h)
	if !ok {
		return
	}
	sc := n.(*scopeNode)
	if sc.disposed {
		return
	}
	sc.disposed = true

	for i := len(sc.children) - 1; i >= 0; i-- {
		rt.disposeScope(sc.children[i])
	}
	sc.children = nil

	for i := len(sc.nodes) - 1; i >= 0; i-- {
		rt.disposeNode(sc.nodes[i])
	}
	sc.nodes = nil

	// Detach from the parent before the slot is vacated.
	if p, ok := rt.arena.get(sc.parent); ok {
		parent := p.(*scopeNode)
		for i, c := range parent.children {
			if c == h {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
	}

	rt.arena.remove(h)
	rt.stats.nodesLive.Add(-1)
	rt.stats.nodesDisposed.Add(1)
	if rt.hooks.OnDispose != nil {
		rt.hooks.OnDispose(h)
	}

	cleanups := sc.cleanups
	sc.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// disposeNode removes one non-scope node from the arena and severs every
// edge touching it. Removal and edge clearing happen before any user
// code can observe the node again, so a concurrently queued notification
// pass sees either the live node or a stale handle, never a half-dead
// one.
func (rt *Runtime) disposeNode(h Handle) {
	n := rt.arena.remove(h)
	if n == nil {
		return
	}

	if src := sourceOf(n); src != nil {
		for subHandle := range src.subs {
			if sn, ok := rt.arena.get(subHandle); ok {
				if sub := subscriberOf(sn); sub != nil {
					for i := range sub.sources {
						if sub.sources[i].src == h {
							sub.sources = append(sub.sources[:i], sub.sources[i+1:]...)
							break
						}
					}
				}
			}
		}
		src.subs = nil
	}

	if sub := subscriberOf(n); sub != nil {
		for i := range sub.sources {
			if sn, ok := rt.arena.get(sub.sources[i].src); ok {
				if src := sourceOf(sn); src != nil {
					delete(src.subs, h)
				}
			}
		}
		sub.sources = nil
	}

	if e, isEffect := n.(*effectNode); isEffect {
		e.aborted = true
		if e.cleanup != nil {
			e.cleanup()
			e.cleanup = nil
		}
	}

	rt.stats.nodesLive.Add(-1)
	rt.stats.nodesDisposed.Add(1)
	if rt.hooks.OnDispose != nil {
		rt.hooks.OnDispose(h)
	}
}
