package reactive

import "sort"

// NodeInfo describes one live node for introspection tooling.
type NodeInfo struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Subscribers []string `json:"subscribers,omitempty"`
	Sources     []string `json:"sources,omitempty"`
	Children    []string `json:"children,omitempty"`
	Stale       bool     `json:"stale,omitempty"`
}

// GraphSnapshot is a stable, JSON-friendly view of the dependency graph,
// produced for the inspector. Node IDs are handle strings.
type GraphSnapshot struct {
	Nodes []NodeInfo `json:"nodes"`
}

// Snapshot walks the arena and returns the current graph shape. Must run
// on the runtime's goroutine (or inside Bind) like any other graph
// access.
func (rt *Runtime) Snapshot() GraphSnapshot {
	var snap GraphSnapshot

	for idx := range rt.arena.slots {
		s := &rt.arena.slots[idx]
		if s.node == nil {
			continue
		}
		h := Handle{index: uint32(idx), gen: s.gen}

		info := NodeInfo{ID: h.String(), Kind: s.node.kind().String()}

		if src := sourceOf(s.node); src != nil {
			for sub := range src.subs {
				info.Subscribers = append(info.Subscribers, sub.String())
			}
			sort.Strings(info.Subscribers)
		}
		if sub := subscriberOf(s.node); sub != nil {
			for i := range sub.sources {
				info.Sources = append(info.Sources, sub.sources[i].src.String())
			}
			info.Stale = sub.state != stateClean
		}
		if sc, ok := s.node.(*scopeNode); ok {
			for _, c := range sc.children {
				info.Children = append(info.Children, c.String())
			}
			for _, n := range sc.nodes {
				info.Children = append(info.Children, n.String())
			}
		}

		snap.Nodes = append(snap.Nodes, info)
	}

	return snap
}
