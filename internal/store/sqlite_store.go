// SQLite-backed GraphStore using ncruces/go-sqlite3/driver, which provides a
// database/sql interface over a wazero-compiled SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLiteStore is the SQLite-backed graph content store.
// Thread-safe for concurrent callbacks.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// schema defines the graph content tables. Labels and properties are stored
// as JSON text; referential integrity is managed at application level, like
// the rest of the data layer.
const schema = `
CREATE TABLE IF NOT EXISTS nodes (
    id TEXT PRIMARY KEY,
    labels TEXT,
    properties TEXT,
    display_name TEXT,
    color TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS edges (
    id TEXT PRIMARY KEY,
    from_id TEXT NOT NULL,
    to_id TEXT NOT NULL,
    edge_type TEXT,
    properties TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id);
CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id);
CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(edge_type);
`

// NewSQLiteStore creates a new in-memory SQLite store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// Node CRUD
// =============================================================================

func (s *SQLiteStore) UpsertNode(node *GraphNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	labels, err := marshalJSON(node.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}
	props, err := marshalJSON(node.Properties)
	if err != nil {
		return fmt.Errorf("marshal properties: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO nodes (id, labels, properties, display_name, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			labels = excluded.labels,
			properties = excluded.properties,
			display_name = excluded.display_name,
			color = excluded.color,
			updated_at = excluded.updated_at
	`, node.ID, labels, props, node.DisplayName, node.Color, node.CreatedAt, node.UpdatedAt)
	return err
}

func (s *SQLiteStore) GetNode(id string) (*GraphNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, labels, properties, display_name, color, created_at, updated_at
		FROM nodes WHERE id = ?
	`, id)

	node, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return node, err
}

func (s *SQLiteStore) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM nodes WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) AllNodes() ([]*GraphNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, labels, properties, display_name, color, created_at, updated_at
		FROM nodes ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*GraphNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, node)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) CountNodes() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count)
	return count, err
}

// =============================================================================
// Edge CRUD
// =============================================================================

func (s *SQLiteStore) UpsertEdge(edge *GraphEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	props, err := marshalJSON(edge.Properties)
	if err != nil {
		return fmt.Errorf("marshal properties: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO edges (id, from_id, to_id, edge_type, properties, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			from_id = excluded.from_id,
			to_id = excluded.to_id,
			edge_type = excluded.edge_type,
			properties = excluded.properties
	`, edge.ID, edge.From, edge.To, edge.Type, props, edge.CreatedAt)
	return err
}

func (s *SQLiteStore) GetEdge(id string) (*GraphEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, from_id, to_id, edge_type, properties, created_at
		FROM edges WHERE id = ?
	`, id)

	edge, err := scanEdge(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return edge, err
}

func (s *SQLiteStore) DeleteEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM edges WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) AllEdges() ([]*GraphEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, from_id, to_id, edge_type, properties, created_at
		FROM edges ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEdges(rows)
}

func (s *SQLiteStore) EdgesForNode(nodeID string) ([]*GraphEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, from_id, to_id, edge_type, properties, created_at
		FROM edges WHERE from_id = ? OR to_id = ? ORDER BY id
	`, nodeID, nodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEdges(rows)
}

func (s *SQLiteStore) CountEdges() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM edges`).Scan(&count)
	return count, err
}

// =============================================================================
// Helpers
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*GraphNode, error) {
	var node GraphNode
	var labels, props sql.NullString
	err := row.Scan(&node.ID, &labels, &props, &node.DisplayName, &node.Color,
		&node.CreatedAt, &node.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(labels, &node.Labels); err != nil {
		return nil, fmt.Errorf("unmarshal labels: %w", err)
	}
	if err := unmarshalJSON(props, &node.Properties); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	return &node, nil
}

func scanEdge(row rowScanner) (*GraphEdge, error) {
	var edge GraphEdge
	var props sql.NullString
	err := row.Scan(&edge.ID, &edge.From, &edge.To, &edge.Type, &props, &edge.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(props, &edge.Properties); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	return &edge, nil
}

func collectEdges(rows *sql.Rows) ([]*GraphEdge, error) {
	var result []*GraphEdge
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, edge)
	}
	return result, rows.Err()
}

func marshalJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalJSON[T any](src sql.NullString, dst *T) error {
	if !src.Valid || src.String == "" || src.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(src.String), dst)
}

// Compile-time interface check
var _ GraphStore = (*SQLiteStore)(nil)
