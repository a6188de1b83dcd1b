// Package snapshot converts the renderer's live node and edge records into
// read-only records owned by the engine. The renderer remains the source of
// truth for graph structure; records produced here are copies, never aliases,
// and are replaced wholesale on every rebuild.
package snapshot

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"
)

// UnlabeledType is assigned to edges whose source record carries no type.
const UnlabeledType = "unlabeled"

// unprintable is the fallback text for property values that defeat conversion.
const unprintable = "[unprintable]"

// RawNode mirrors the renderer's node record at the ingestion boundary.
// Properties may hold any JSON-shaped value; sanitization happens during
// normalization, never at the boundary.
type RawNode struct {
	ID          string         `json:"id"`
	Labels      []string       `json:"labels,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	DisplayName string         `json:"label,omitempty"`
	Color       string         `json:"color,omitempty"`
}

// RawEdge mirrors the renderer's edge record.
type RawEdge struct {
	ID         string         `json:"id"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Type       string         `json:"type,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// PropKind discriminates the closed set of property value shapes accepted
// at ingestion.
type PropKind int

const (
	KindString PropKind = iota
	KindNumber
	KindBool
	KindNull
	KindNested
)

func (k PropKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "nested"
	}
}

// PropValue is a property value captured as a typed original plus the
// sanitized string form used for indexing. Only Text participates in search;
// Raw is retained for downstream consumers (the node inspector).
type PropValue struct {
	Kind PropKind
	Raw  any
	Text string
}

// Convert sanitizes an arbitrary property value. It never panics: nil becomes
// the literal "null", nested structures become compact JSON, and anything
// that fails conversion gets a distinct fallback string.
func Convert(v any) PropValue {
	switch x := v.(type) {
	case nil:
		return PropValue{Kind: KindNull, Raw: nil, Text: "null"}
	case string:
		return PropValue{Kind: KindString, Raw: x, Text: x}
	case bool:
		return PropValue{Kind: KindBool, Raw: x, Text: strconv.FormatBool(x)}
	case float64:
		return PropValue{Kind: KindNumber, Raw: x, Text: strconv.FormatFloat(x, 'f', -1, 64)}
	case float32:
		return PropValue{Kind: KindNumber, Raw: x, Text: strconv.FormatFloat(float64(x), 'f', -1, 32)}
	case int:
		return PropValue{Kind: KindNumber, Raw: x, Text: strconv.Itoa(x)}
	case int32:
		return PropValue{Kind: KindNumber, Raw: x, Text: strconv.FormatInt(int64(x), 10)}
	case int64:
		return PropValue{Kind: KindNumber, Raw: x, Text: strconv.FormatInt(x, 10)}
	case uint32:
		return PropValue{Kind: KindNumber, Raw: x, Text: strconv.FormatUint(uint64(x), 10)}
	case uint64:
		return PropValue{Kind: KindNumber, Raw: x, Text: strconv.FormatUint(x, 10)}
	default:
		// Nested maps/slices and anything else: compact JSON form.
		b, err := json.Marshal(x)
		if err != nil {
			return PropValue{Kind: KindNested, Raw: x, Text: unprintable}
		}
		return PropValue{Kind: KindNested, Raw: x, Text: string(b)}
	}
}

// NodeRecord is the engine-owned view of one node. Created during a rebuild
// pass, replaced wholesale on the next, never partially mutated.
type NodeRecord struct {
	ID          string
	Labels      []string
	Properties  map[string]PropValue
	DisplayName string
	Color       string
}

// SearchText returns the combined searchable text: display name, labels and
// stringified property values joined with spaces. Casing is preserved here;
// the search layer lowercases consistently for both indexing and querying.
func (r *NodeRecord) SearchText() string {
	var sb strings.Builder
	sb.WriteString(r.DisplayName)
	for _, l := range r.Labels {
		sb.WriteByte(' ')
		sb.WriteString(l)
	}
	for _, pv := range r.Properties {
		sb.WriteByte(' ')
		sb.WriteString(pv.Text)
	}
	return sb.String()
}

// EdgeRecord is the engine-owned view of one edge. Edges are re-read from the
// renderer on every filter pass and held only for that computation.
type EdgeRecord struct {
	ID         string
	From       string
	To         string
	Type       string
	Properties map[string]PropValue
}

// NormalizeNodes converts the renderer's full node list into an id-keyed
// snapshot. Duplicate ids keep the last occurrence; duplicates are logged
// once per pass rather than rejected.
func NormalizeNodes(raw []RawNode) map[string]*NodeRecord {
	records := make(map[string]*NodeRecord, len(raw))
	dups := 0

	for i := range raw {
		n := &raw[i]
		if _, seen := records[n.ID]; seen {
			dups++
		}

		rec := &NodeRecord{
			ID:          n.ID,
			DisplayName: n.DisplayName,
			Color:       n.Color,
		}
		if rec.DisplayName == "" {
			rec.DisplayName = n.ID
		}
		if len(n.Labels) > 0 {
			rec.Labels = make([]string, len(n.Labels))
			copy(rec.Labels, n.Labels)
		}
		rec.Properties = convertProps(n.Properties)
		records[n.ID] = rec
	}

	if dups > 0 {
		log.Printf("[GraphLens] normalize: %d duplicate node id(s), last occurrence wins", dups)
	}
	return records
}

// NormalizeEdges converts the renderer's edge list. Untyped edges fall back
// to UnlabeledType.
func NormalizeEdges(raw []RawEdge) []*EdgeRecord {
	edges := make([]*EdgeRecord, 0, len(raw))
	for i := range raw {
		e := &raw[i]
		rec := &EdgeRecord{
			ID:   e.ID,
			From: e.From,
			To:   e.To,
			Type: e.Type,
		}
		if rec.Type == "" {
			rec.Type = UnlabeledType
		}
		rec.Properties = convertProps(e.Properties)
		edges = append(edges, rec)
	}
	return edges
}

func convertProps(props map[string]any) map[string]PropValue {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]PropValue, len(props))
	for k, v := range props {
		out[k] = Convert(v)
	}
	return out
}
