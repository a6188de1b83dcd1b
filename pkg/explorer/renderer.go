package explorer

import (
	"encoding/json"

	"github.com/kittclouds/graphlens/pkg/snapshot"
)

// VisibilityChange is one entry of a batched visibility update. Batches
// always cover the complete node or edge set for the current graph.
type VisibilityChange struct {
	ID     string `json:"id"`
	Hidden bool   `json:"hidden"`
}

// Renderer is the engine's only external collaborator: the rendering engine
// that owns the canonical graph. The engine reads node and edge snapshots
// from it on demand and writes back nothing except batched visibility and
// selection calls.
type Renderer interface {
	// GetAllNodes returns a read-only snapshot of the current node set.
	GetAllNodes() []snapshot.RawNode

	// GetAllEdges returns a read-only snapshot of the current edge set.
	GetAllEdges() []snapshot.RawEdge

	// SetNodeVisibility applies one complete node visibility batch.
	SetNodeVisibility(changes []VisibilityChange)

	// SetEdgeVisibility applies one complete edge visibility batch.
	SetEdgeVisibility(changes []VisibilityChange)

	// SelectNodes highlights the given nodes; an empty slice clears the
	// current selection.
	SelectNodes(ids []string)

	// FocusViewport centers the viewport on the given nodes. The animation
	// spec is opaque pass-through, not interpreted by the engine.
	FocusViewport(ids []string, anim json.RawMessage)
}
