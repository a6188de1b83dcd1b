package store

import "sync"

// MemStore is an in-memory GraphStore for testing.
type MemStore struct {
	mu    sync.RWMutex
	nodes map[string]*GraphNode
	edges map[string]*GraphEdge
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		nodes: make(map[string]*GraphNode),
		edges: make(map[string]*GraphEdge),
	}
}

// Close is a no-op for MemStore.
func (s *MemStore) Close() error {
	return nil
}

// =============================================================================
// Node CRUD
// =============================================================================

func (s *MemStore) UpsertNode(node *GraphNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[node.ID] = copyNode(node)
	return nil
}

func (s *MemStore) GetNode(id string) (*GraphNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if node, ok := s.nodes[id]; ok {
		return copyNode(node), nil
	}
	return nil, nil
}

func (s *MemStore) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, id)
	return nil
}

func (s *MemStore) AllNodes() ([]*GraphNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*GraphNode, 0, len(s.nodes))
	for _, node := range s.nodes {
		result = append(result, copyNode(node))
	}
	return result, nil
}

func (s *MemStore) CountNodes() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), nil
}

// =============================================================================
// Edge CRUD
// =============================================================================

func (s *MemStore) UpsertEdge(edge *GraphEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges[edge.ID] = copyEdge(edge)
	return nil
}

func (s *MemStore) GetEdge(id string) (*GraphEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if edge, ok := s.edges[id]; ok {
		return copyEdge(edge), nil
	}
	return nil, nil
}

func (s *MemStore) DeleteEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edges, id)
	return nil
}

func (s *MemStore) AllEdges() ([]*GraphEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*GraphEdge, 0, len(s.edges))
	for _, edge := range s.edges {
		result = append(result, copyEdge(edge))
	}
	return result, nil
}

func (s *MemStore) EdgesForNode(nodeID string) ([]*GraphEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*GraphEdge
	for _, edge := range s.edges {
		if edge.From == nodeID || edge.To == nodeID {
			result = append(result, copyEdge(edge))
		}
	}
	return result, nil
}

func (s *MemStore) CountEdges() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges), nil
}

// =============================================================================
// Helpers
// =============================================================================

// Deep copies keep callers from mutating stored records through aliases.

func copyNode(node *GraphNode) *GraphNode {
	out := *node
	if node.Labels != nil {
		out.Labels = make([]string, len(node.Labels))
		copy(out.Labels, node.Labels)
	}
	if node.Properties != nil {
		out.Properties = make(map[string]any, len(node.Properties))
		for k, v := range node.Properties {
			out.Properties[k] = v
		}
	}
	return &out
}

func copyEdge(edge *GraphEdge) *GraphEdge {
	out := *edge
	if edge.Properties != nil {
		out.Properties = make(map[string]any, len(edge.Properties))
		for k, v := range edge.Properties {
			out.Properties[k] = v
		}
	}
	return &out
}

// Compile-time interface check
var _ GraphStore = (*MemStore)(nil)
