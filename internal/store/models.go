// Package store provides the graph content store backing the viewer when no
// browser renderer is present: the native harness and integration tests seed
// it and drive the engine through the StoreRenderer adapter.
package store

// GraphNode is one stored node. Properties hold JSON-shaped values; the
// engine sanitizes them during normalization, the store keeps them as-is.
type GraphNode struct {
	ID          string         `json:"id"`
	Labels      []string       `json:"labels,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	DisplayName string         `json:"label,omitempty"`
	Color       string         `json:"color,omitempty"`
	CreatedAt   int64          `json:"createdAt"`
	UpdatedAt   int64          `json:"updatedAt"`
}

// GraphEdge is one stored edge. Type may be empty; the engine substitutes
// its unlabeled fallback during normalization.
type GraphEdge struct {
	ID         string         `json:"id"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Type       string         `json:"type,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  int64          `json:"createdAt"`
}

// GraphStore defines graph content persistence. MemStore serves tests,
// SQLiteStore serves the harness and anything that wants a durable graph.
type GraphStore interface {
	// Nodes
	UpsertNode(node *GraphNode) error
	GetNode(id string) (*GraphNode, error)
	DeleteNode(id string) error
	AllNodes() ([]*GraphNode, error)
	CountNodes() (int, error)

	// Edges
	UpsertEdge(edge *GraphEdge) error
	GetEdge(id string) (*GraphEdge, error)
	DeleteEdge(id string) error
	AllEdges() ([]*GraphEdge, error)
	EdgesForNode(nodeID string) ([]*GraphEdge, error)
	CountEdges() (int, error)

	// Lifecycle
	Close() error
}
