package search

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/kittclouds/graphlens/pkg/snapshot"
)

// Result pairs a matching node id with its snapshot record.
type Result struct {
	ID     string
	Record *snapshot.NodeRecord
}

// SearchResult holds the display-capped matches plus the true match count.
type SearchResult struct {
	Results      []Result
	TotalMatches int
}

// Engine resolves queries against one snapshot generation. A nil index means
// the graph sat at or below the indexing threshold and queries scan linearly.
//
// The two paths deliberately differ in semantics: the indexed path is an AND
// over whitespace tokens, the linear path is a contiguous-substring test over
// the combined searchable text. A multi-word query can therefore match on one
// path and miss on the other once the graph crosses the threshold. This
// mirrors the upstream viewer's behavior and is pinned by tests rather than
// reconciled.
type Engine struct {
	records map[string]*snapshot.NodeRecord
	index   *Index
	opts    Options
}

// NewEngine creates a query engine over a snapshot and its (possibly nil)
// index. The engine is a pure function of its inputs; feeding it a stale
// snapshot yields stale but internally consistent results.
func NewEngine(records map[string]*snapshot.NodeRecord, index *Index, opts Options) *Engine {
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = DefaultResultLimit
	}
	return &Engine{records: records, index: index, opts: opts}
}

// Indexed reports whether queries resolve through the inverted index.
func (e *Engine) Indexed() bool {
	return e.index != nil
}

// Search resolves a query. Empty or whitespace-only queries return an empty
// result; the caller clears any prior result display.
func (e *Engine) Search(query string) SearchResult {
	if strings.TrimSpace(query) == "" || len(e.records) == 0 {
		return SearchResult{}
	}
	if e.index != nil {
		return e.searchIndexed(query)
	}
	return e.searchLinear(query)
}

// searchIndexed computes the intersection of per-token posting sets: a node
// must contain every query token somewhere in its searchable text.
func (e *Engine) searchIndexed(query string) SearchResult {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return SearchResult{}
	}

	bitmaps := make([]*roaring.Bitmap, 0, len(tokens))
	for _, tok := range tokens {
		bm := e.index.Postings(tok)
		if bm == nil {
			// Absent token: empty set, so the intersection is empty.
			return SearchResult{}
		}
		bitmaps = append(bitmaps, bm)
	}

	// Intersect smallest-first so intermediate results stay small.
	for i := 1; i < len(bitmaps); i++ {
		if bitmaps[i].GetCardinality() < bitmaps[0].GetCardinality() {
			bitmaps[0], bitmaps[i] = bitmaps[i], bitmaps[0]
		}
	}
	acc := bitmaps[0].Clone()
	for _, bm := range bitmaps[1:] {
		acc.And(bm)
		if acc.IsEmpty() {
			return SearchResult{}
		}
	}

	out := SearchResult{TotalMatches: int(acc.GetCardinality())}
	it := acc.Iterator()
	for it.HasNext() && len(out.Results) < e.opts.ResultLimit {
		id := e.index.NodeID(it.Next())
		out.Results = append(out.Results, Result{ID: id, Record: e.records[id]})
	}
	return out
}

// searchLinear tests every node's combined lowercased text for the full
// query string as a contiguous substring.
func (e *Engine) searchLinear(query string) SearchResult {
	needle := strings.ToLower(strings.TrimSpace(query))

	var out SearchResult
	for _, id := range sortedIDs(e.records) {
		rec := e.records[id]
		if strings.Contains(strings.ToLower(rec.SearchText()), needle) {
			out.TotalMatches++
			if len(out.Results) < e.opts.ResultLimit {
				out.Results = append(out.Results, Result{ID: id, Record: rec})
			}
		}
	}
	return out
}
