// Package search derives an inverted keyword index from a node snapshot and
// resolves queries against it. Graphs at or below the indexing threshold skip
// the index entirely and fall back to a linear scan.
package search

import (
	"runtime"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/kittclouds/graphlens/pkg/snapshot"
)

const (
	// DefaultIndexThreshold is the node count at or below which indexing
	// would not pay for itself and queries scan linearly instead.
	DefaultIndexThreshold = 100

	// DefaultBatchSize bounds the nodes processed before yielding during a
	// build. The build shares its thread with user interaction, so batch
	// size trades throughput against input latency.
	DefaultBatchSize = 1000

	// DefaultResultLimit caps how many matches a search returns for display.
	// The true match count is always reported alongside.
	DefaultResultLimit = 50
)

// Options configures index construction and querying.
type Options struct {
	IndexThreshold int
	BatchSize      int
	ResultLimit    int

	// Yield runs between build batches. Defaults to runtime.Gosched;
	// injectable so tests can observe and interleave.
	Yield func()
}

// DefaultOptions returns the reference configuration.
func DefaultOptions() Options {
	return Options{
		IndexThreshold: DefaultIndexThreshold,
		BatchSize:      DefaultBatchSize,
		ResultLimit:    DefaultResultLimit,
		Yield:          runtime.Gosched,
	}
}

// Index maps lowercase word tokens to posting sets of node ordinals.
// String ids are assigned dense uint32 ordinals in lexicographic id order,
// which keeps the index identical for a given snapshot regardless of map
// iteration order and makes result ordering deterministic for free.
type Index struct {
	postings map[string]*roaring.Bitmap
	ids      []string // ordinal -> node id, sorted
}

// Build derives an index from the snapshot. It returns nil for an empty
// snapshot or one at or below the indexing threshold; callers treat a nil
// index as "scan linearly". Construction proceeds in fixed-size batches with
// a yield between batches so a large graph cannot starve the thread.
func Build(records map[string]*snapshot.NodeRecord, opts Options) *Index {
	if len(records) == 0 || len(records) <= opts.IndexThreshold {
		return nil
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	yield := opts.Yield
	if yield == nil {
		yield = runtime.Gosched
	}

	idx := &Index{
		postings: make(map[string]*roaring.Bitmap),
		ids:      sortedIDs(records),
	}

	for start := 0; start < len(idx.ids); start += batchSize {
		end := start + batchSize
		if end > len(idx.ids) {
			end = len(idx.ids)
		}
		for ord := start; ord < end; ord++ {
			rec := records[idx.ids[ord]]
			for _, tok := range Tokenize(rec.SearchText()) {
				bm := idx.postings[tok]
				if bm == nil {
					bm = roaring.New()
					idx.postings[tok] = bm
				}
				bm.Add(uint32(ord))
			}
		}
		if end < len(idx.ids) {
			yield()
		}
	}

	return idx
}

// Postings returns the posting set for a token, or nil when the token is
// absent. The returned bitmap is shared; callers must not mutate it.
func (idx *Index) Postings(token string) *roaring.Bitmap {
	return idx.postings[token]
}

// TokenCount returns the number of distinct tokens in the index.
func (idx *Index) TokenCount() int {
	return len(idx.postings)
}

// NodeID maps an ordinal back to its node id.
func (idx *Index) NodeID(ord uint32) string {
	return idx.ids[ord]
}

// Tokenize lowercases text and splits it on whitespace, dropping tokens of
// one rune or less. Indexing and querying share this exact function; any
// drift between the two would silently break AND matching.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func sortedIDs(records map[string]*snapshot.NodeRecord) []string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
