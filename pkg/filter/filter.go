// Package filter tracks which edge types are enabled and recomputes complete
// edge and node visibility sets from that state. Visibility is always
// computed for the whole graph in one pass so the renderer receives a single
// batch and never shows a partially-updated view.
package filter

import (
	"sort"

	"github.com/kittclouds/graphlens/pkg/snapshot"
)

// State holds the enabled flag per edge type plus the global cascade switch.
// Invariant: after Initialize, every edge type currently present in the graph
// has an entry; vanished types are dropped, persisting types keep their
// previously chosen value.
type State struct {
	Enabled map[string]bool
	Cascade bool
}

// NewState returns an empty state with cascade off.
func NewState() State {
	return State{Enabled: make(map[string]bool)}
}

// Types returns the known edge types in sorted order, for stable UI listing.
func (s State) Types() []string {
	types := make([]string, 0, len(s.Enabled))
	for t := range s.Enabled {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Initialize derives a fresh State from the current edge set. Each distinct
// type carries over any previously known enabled value and defaults to
// enabled otherwise, so filter UI choices survive graph rebuilds for types
// that keep appearing. The cascade switch carries over unconditionally.
func Initialize(edges []*snapshot.EdgeRecord, prev State) State {
	next := State{
		Enabled: make(map[string]bool),
		Cascade: prev.Cascade,
	}
	for _, e := range edges {
		if _, seen := next.Enabled[e.Type]; seen {
			continue
		}
		enabled := true
		if v, known := prev.Enabled[e.Type]; known {
			enabled = v
		}
		next.Enabled[e.Type] = enabled
	}
	return next
}

// Result is one complete visibility computation. Both maps cover every edge
// and every node handed to Apply; there is no partial result.
type Result struct {
	EdgeVisible map[string]bool
	NodeVisible map[string]bool

	// AllNodesVisible is set when cascade is off and node visibility is
	// unconditional. NodeVisible is still fully populated so callers can
	// always push one complete batch.
	AllNodesVisible bool
}

// Apply computes visibility for all edges and all nodes.
//
// An edge is visible iff its type is not explicitly disabled; unknown types
// default to visible. With cascade off, every node stays visible regardless
// of edge state. With cascade on, a node is visible iff it is an endpoint of
// at least one visible edge — isolated nodes go hidden, a deliberate
// connectivity-gated policy rather than a bug.
func Apply(state State, edges []*snapshot.EdgeRecord, nodeIDs []string) Result {
	res := Result{
		EdgeVisible: make(map[string]bool, len(edges)),
		NodeVisible: make(map[string]bool, len(nodeIDs)),
	}

	connected := make(map[string]bool)
	for _, e := range edges {
		visible := true
		if enabled, known := state.Enabled[e.Type]; known && !enabled {
			visible = false
		}
		res.EdgeVisible[e.ID] = visible
		if visible {
			connected[e.From] = true
			connected[e.To] = true
		}
	}

	if !state.Cascade {
		res.AllNodesVisible = true
		for _, id := range nodeIDs {
			res.NodeVisible[id] = true
		}
		return res
	}

	for _, id := range nodeIDs {
		res.NodeVisible[id] = connected[id]
	}
	return res
}
