package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/graphlens/pkg/snapshot"
)

func edge(id, from, to, typ string) *snapshot.EdgeRecord {
	return &snapshot.EdgeRecord{ID: id, From: from, To: to, Type: typ}
}

func TestInitialize_DefaultsAndPersistence(t *testing.T) {
	prev := NewState()
	prev.Enabled["knows"] = false   // user turned this off earlier
	prev.Enabled["mentions"] = true // about to vanish from the graph
	prev.Cascade = true

	edges := []*snapshot.EdgeRecord{
		edge("e1", "a", "b", "knows"),
		edge("e2", "b", "c", "cites"), // newly seen type
		edge("e3", "c", "a", "knows"),
	}

	state := Initialize(edges, prev)

	assert.False(t, state.Enabled["knows"], "prior user choice survives the rebuild")
	assert.True(t, state.Enabled["cites"], "new types default to enabled")
	_, hasMentions := state.Enabled["mentions"]
	assert.False(t, hasMentions, "vanished types are dropped")
	assert.True(t, state.Cascade, "cascade carries over")
	assert.Equal(t, []string{"cites", "knows"}, state.Types())
}

func TestApply_EdgeVisibility(t *testing.T) {
	state := NewState()
	state.Enabled["knows"] = false

	edges := []*snapshot.EdgeRecord{
		edge("e1", "x", "y", "knows"),
		edge("e2", "y", "z", "serves"),
		edge("e3", "z", "x", "mystery"), // type unknown to the state
	}

	res := Apply(state, edges, []string{"x", "y", "z"})
	assert.False(t, res.EdgeVisible["e1"])
	assert.True(t, res.EdgeVisible["e2"])
	assert.True(t, res.EdgeVisible["e3"], "unknown types default to visible")
}

// TestApply_CascadeHidesDisconnected covers the connectivity-gated policy:
// nodes X and Y lose their only edge to the filter and go hidden, and the
// isolated node Z is hidden too.
func TestApply_CascadeHidesDisconnected(t *testing.T) {
	state := NewState()
	state.Enabled["knows"] = false
	state.Cascade = true

	edges := []*snapshot.EdgeRecord{edge("e1", "x", "y", "knows")}
	res := Apply(state, edges, []string{"x", "y", "z"})

	require.Len(t, res.NodeVisible, 3, "visibility is computed for every node")
	assert.False(t, res.NodeVisible["x"])
	assert.False(t, res.NodeVisible["y"])
	assert.False(t, res.NodeVisible["z"], "isolated nodes hide under cascade")
	assert.False(t, res.AllNodesVisible)
}

func TestApply_CascadeOffShowsAll(t *testing.T) {
	state := NewState()
	state.Enabled["knows"] = false // edge filtered, nodes unaffected

	edges := []*snapshot.EdgeRecord{edge("e1", "x", "y", "knows")}
	res := Apply(state, edges, []string{"x", "y", "z"})

	assert.True(t, res.AllNodesVisible)
	for _, id := range []string{"x", "y", "z"} {
		assert.True(t, res.NodeVisible[id], id)
	}
	assert.False(t, res.EdgeVisible["e1"])
}

func TestApply_CascadeKeepsConnectedEndpoints(t *testing.T) {
	state := NewState()
	state.Enabled["knows"] = false
	state.Cascade = true

	edges := []*snapshot.EdgeRecord{
		edge("e1", "x", "y", "knows"),
		edge("e2", "y", "z", "serves"),
	}
	res := Apply(state, edges, []string{"x", "y", "z"})

	assert.False(t, res.NodeVisible["x"], "only edge filtered out")
	assert.True(t, res.NodeVisible["y"], "still an endpoint of a visible edge")
	assert.True(t, res.NodeVisible["z"])
}

func TestApply_EmptyGraph(t *testing.T) {
	res := Apply(NewState(), nil, nil)
	assert.Empty(t, res.EdgeVisible)
	assert.Empty(t, res.NodeVisible)
	assert.True(t, res.AllNodesVisible)
}
