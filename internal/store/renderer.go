package store

import (
	"encoding/json"
	"sync"

	"github.com/kittclouds/graphlens/pkg/explorer"
	"github.com/kittclouds/graphlens/pkg/snapshot"
)

// StoreRenderer adapts a GraphStore to the explorer.Renderer boundary so the
// native harness and integration tests can drive the full engine loop
// without a browser. Outbound calls (visibility batches, selection, focus)
// are recorded for inspection instead of being drawn.
type StoreRenderer struct {
	store GraphStore

	mu             sync.Mutex
	lastNodeBatch  []explorer.VisibilityChange
	lastEdgeBatch  []explorer.VisibilityChange
	lastSelection  []string
	lastFocus      []string
	lastFocusAnim  json.RawMessage
	nodeBatchCount int
	edgeBatchCount int
}

// NewStoreRenderer wraps a graph store.
func NewStoreRenderer(s GraphStore) *StoreRenderer {
	return &StoreRenderer{store: s}
}

// GetAllNodes reads the full node set from the store. Store errors surface
// as an empty snapshot; the engine is specified to degrade, not fail.
func (r *StoreRenderer) GetAllNodes() []snapshot.RawNode {
	nodes, err := r.store.AllNodes()
	if err != nil {
		return nil
	}
	raw := make([]snapshot.RawNode, 0, len(nodes))
	for _, n := range nodes {
		raw = append(raw, snapshot.RawNode{
			ID:          n.ID,
			Labels:      n.Labels,
			Properties:  n.Properties,
			DisplayName: n.DisplayName,
			Color:       n.Color,
		})
	}
	return raw
}

// GetAllEdges reads the full edge set from the store.
func (r *StoreRenderer) GetAllEdges() []snapshot.RawEdge {
	edges, err := r.store.AllEdges()
	if err != nil {
		return nil
	}
	raw := make([]snapshot.RawEdge, 0, len(edges))
	for _, e := range edges {
		raw = append(raw, snapshot.RawEdge{
			ID:         e.ID,
			From:       e.From,
			To:         e.To,
			Type:       e.Type,
			Properties: e.Properties,
		})
	}
	return raw
}

func (r *StoreRenderer) SetNodeVisibility(changes []explorer.VisibilityChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastNodeBatch = changes
	r.nodeBatchCount++
}

func (r *StoreRenderer) SetEdgeVisibility(changes []explorer.VisibilityChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastEdgeBatch = changes
	r.edgeBatchCount++
}

func (r *StoreRenderer) SelectNodes(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSelection = ids
}

func (r *StoreRenderer) FocusViewport(ids []string, anim json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFocus = ids
	r.lastFocusAnim = anim
}

// LastNodeBatch returns the most recent node visibility batch and how many
// batches have been pushed in total.
func (r *StoreRenderer) LastNodeBatch() ([]explorer.VisibilityChange, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastNodeBatch, r.nodeBatchCount
}

// LastEdgeBatch returns the most recent edge visibility batch and the total
// batch count.
func (r *StoreRenderer) LastEdgeBatch() ([]explorer.VisibilityChange, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastEdgeBatch, r.edgeBatchCount
}

// LastSelection returns the most recent selection push.
func (r *StoreRenderer) LastSelection() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSelection
}

// LastFocus returns the most recent viewport focus push.
func (r *StoreRenderer) LastFocus() ([]string, json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFocus, r.lastFocusAnim
}

// Compile-time interface check
var _ explorer.Renderer = (*StoreRenderer)(nil)
