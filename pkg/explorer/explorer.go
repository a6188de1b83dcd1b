// Package explorer owns the derived state behind the graph viewer: the node
// snapshot, the inverted search index and the edge-type filter state. Each
// Explorer is an explicit handle constructed per renderer; there is no
// package-level singleton, so tests build independent instances.
package explorer

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/kittclouds/graphlens/pkg/debounce"
	"github.com/kittclouds/graphlens/pkg/filter"
	"github.com/kittclouds/graphlens/pkg/search"
	"github.com/kittclouds/graphlens/pkg/snapshot"
)

const (
	// DefaultSearchDebounce is the quiescence window for search-as-you-type.
	DefaultSearchDebounce = 200 * time.Millisecond

	// DefaultFilterDebounce coalesces filter-control input bursts into one
	// visibility recompute.
	DefaultFilterDebounce = 150 * time.Millisecond

	// DefaultStabilizeFallback triggers the initial rebuild if the renderer
	// never reports layout stabilization.
	DefaultStabilizeFallback = 5 * time.Second
)

// defaultFocusAnimation is handed to FocusViewport unchanged; the engine
// never interprets it.
var defaultFocusAnimation = json.RawMessage(`{"duration":600,"easingFunction":"easeInOutQuad"}`)

// Options configures an Explorer.
type Options struct {
	Search            search.Options
	SearchDebounce    time.Duration
	FilterDebounce    time.Duration
	StabilizeFallback time.Duration
	FocusAnimation    json.RawMessage
}

// DefaultOptions returns the reference configuration.
func DefaultOptions() Options {
	return Options{
		Search:            search.DefaultOptions(),
		SearchDebounce:    DefaultSearchDebounce,
		FilterDebounce:    DefaultFilterDebounce,
		StabilizeFallback: DefaultStabilizeFallback,
		FocusAnimation:    defaultFocusAnimation,
	}
}

// Explorer maintains the queryable view of the renderer's graph. Snapshot
// and index are rebuilt together and replaced atomically; an in-flight query
// against the previous generation stays internally consistent.
type Explorer struct {
	opts Options

	mu       sync.Mutex
	renderer Renderer
	records  map[string]*snapshot.NodeRecord
	engine   *search.Engine
	filters  filter.State

	// Rebuild reentrancy guard: a rebuild requested while one is running is
	// queued, never started concurrently, so two overlapping builds can
	// never write into the same index.
	building      bool
	rebuildQueued bool

	stabilized bool
	fallback   *time.Timer

	searchDeb *debounce.Scheduler
	filterDeb *debounce.Scheduler
}

// New creates an Explorer attached to a renderer and arms the stabilization
// fallback timer. A nil renderer is tolerated: every operation degrades to a
// logged no-op until Attach is called.
func New(r Renderer, opts Options) *Explorer {
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if opts.FilterDebounce <= 0 {
		opts.FilterDebounce = DefaultFilterDebounce
	}
	if opts.StabilizeFallback <= 0 {
		opts.StabilizeFallback = DefaultStabilizeFallback
	}
	if opts.FocusAnimation == nil {
		opts.FocusAnimation = defaultFocusAnimation
	}

	e := &Explorer{
		opts:      opts,
		renderer:  r,
		filters:   filter.NewState(),
		searchDeb: debounce.New(),
		filterDeb: debounce.New(),
	}
	e.engine = search.NewEngine(nil, nil, opts.Search)
	e.fallback = time.AfterFunc(opts.StabilizeFallback, func() {
		log.Printf("[GraphLens] layout stabilization never fired, rebuilding anyway")
		e.NotifyStabilized()
	})
	return e
}

// Attach replaces the renderer handle. Used by hosts that construct the
// engine before the rendering surface exists.
func (e *Explorer) Attach(r Renderer) {
	e.mu.Lock()
	e.renderer = r
	e.mu.Unlock()
}

// Close cancels pending timers and scheduled work. The explorer stays usable
// for synchronous queries afterwards.
func (e *Explorer) Close() {
	e.fallback.Stop()
	e.searchDeb.Stop()
	e.filterDeb.Stop()
}

// NotifyStructureChanged signals that the canonical graph's node or edge set
// changed; it triggers a full snapshot/index rebuild.
func (e *Explorer) NotifyStructureChanged() {
	e.rebuild()
}

// NotifyStabilized signals the first successful layout stabilization. Only
// the first notification triggers a rebuild; later ones are ignored because
// structural changes carry their own notifications.
func (e *Explorer) NotifyStabilized() {
	e.mu.Lock()
	if e.stabilized {
		e.mu.Unlock()
		return
	}
	e.stabilized = true
	e.mu.Unlock()

	e.fallback.Stop()
	e.rebuild()
}

// rebuild replaces snapshot, index, query engine and filter state from a
// fresh renderer read. If a build is already in flight the request is queued
// and the running build starts a fresh pass when it finishes, so the newest
// graph always wins without two builds ever overlapping.
func (e *Explorer) rebuild() {
	e.mu.Lock()
	r := e.renderer
	if r == nil {
		e.mu.Unlock()
		log.Printf("[GraphLens] rebuild skipped: no renderer attached")
		return
	}
	if e.building {
		e.rebuildQueued = true
		e.mu.Unlock()
		return
	}
	e.building = true
	e.mu.Unlock()

	for {
		records := snapshot.NormalizeNodes(r.GetAllNodes())
		index := search.Build(records, e.opts.Search)
		edges := snapshot.NormalizeEdges(r.GetAllEdges())

		e.mu.Lock()
		e.records = records
		e.engine = search.NewEngine(records, index, e.opts.Search)
		e.filters = filter.Initialize(edges, e.filters)
		if !e.rebuildQueued {
			e.building = false
			e.mu.Unlock()
			break
		}
		e.rebuildQueued = false
		e.mu.Unlock()
	}

	// Keep the renderer's visibility consistent with the surviving filter
	// state under the new graph.
	e.applyFilters()
}

// SearchNow resolves a query synchronously against the current snapshot
// generation. Pure; no renderer interaction.
func (e *Explorer) SearchNow(query string) search.SearchResult {
	e.mu.Lock()
	engine := e.engine
	e.mu.Unlock()
	return engine.Search(query)
}

// Search schedules a debounced query; only the last call within the window
// runs. On match the renderer selection and viewport follow the results, and
// an empty query clears the selection.
func (e *Explorer) Search(query string) {
	e.searchDeb.Schedule(func() {
		res := e.SearchNow(query)

		e.mu.Lock()
		r := e.renderer
		e.mu.Unlock()
		if r == nil {
			log.Printf("[GraphLens] search %q: no renderer attached", query)
			return
		}

		ids := make([]string, 0, len(res.Results))
		for _, m := range res.Results {
			ids = append(ids, m.ID)
		}
		r.SelectNodes(ids)
		if len(ids) > 0 {
			r.FocusViewport(ids, e.opts.FocusAnimation)
		}
	}, e.opts.SearchDebounce)
}

// ToggleFilter enables or disables one edge type and schedules a batched
// visibility recompute.
func (e *Explorer) ToggleFilter(edgeType string, enabled bool) {
	e.mu.Lock()
	e.filters.Enabled[edgeType] = enabled
	e.mu.Unlock()
	e.scheduleApply()
}

// ToggleCascade switches connectivity-gated node visibility and schedules a
// batched recompute.
func (e *Explorer) ToggleCascade(enabled bool) {
	e.mu.Lock()
	e.filters.Cascade = enabled
	e.mu.Unlock()
	e.scheduleApply()
}

// FilterState returns a copy of the current filter state for UI rendering.
func (e *Explorer) FilterState() filter.State {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := filter.State{
		Enabled: make(map[string]bool, len(e.filters.Enabled)),
		Cascade: e.filters.Cascade,
	}
	for t, v := range e.filters.Enabled {
		out.Enabled[t] = v
	}
	return out
}

// Stats describes the current snapshot for the viewer's status line.
type Stats struct {
	NodeCount int      `json:"nodeCount"`
	EdgeCount int      `json:"edgeCount"`
	EdgeTypes []string `json:"edgeTypes"`
	Indexed   bool     `json:"indexed"`
}

// Stats reports counts over the current snapshot generation. Edge counts and
// types come from the filter state, which tracks the last edge read.
func (e *Explorer) Stats() Stats {
	e.mu.Lock()
	engine := e.engine
	nodes := len(e.records)
	types := e.filters.Types()
	r := e.renderer
	e.mu.Unlock()

	edgeCount := 0
	if r != nil {
		edgeCount = len(r.GetAllEdges())
	}

	return Stats{
		NodeCount: nodes,
		EdgeCount: edgeCount,
		EdgeTypes: types,
		Indexed:   engine.Indexed(),
	}
}

// scheduleApply coalesces filter recomputes: slider and checkbox bursts
// produce exactly one ApplyFilters per quiescence window.
func (e *Explorer) scheduleApply() {
	e.filterDeb.Schedule(e.applyFilters, e.opts.FilterDebounce)
}

// applyFilters reads the edge set fresh from the renderer, recomputes
// visibility for every edge and node together and pushes both complete
// batches. Edges are cheaper to re-read than to keep synchronized, so no
// private edge copy survives between passes.
func (e *Explorer) applyFilters() {
	e.mu.Lock()
	r := e.renderer
	state := filter.State{
		Enabled: make(map[string]bool, len(e.filters.Enabled)),
		Cascade: e.filters.Cascade,
	}
	for t, v := range e.filters.Enabled {
		state.Enabled[t] = v
	}
	nodeIDs := make([]string, 0, len(e.records))
	for id := range e.records {
		nodeIDs = append(nodeIDs, id)
	}
	e.mu.Unlock()

	if r == nil {
		log.Printf("[GraphLens] filter pass skipped: no renderer attached")
		return
	}
	sort.Strings(nodeIDs)

	edges := snapshot.NormalizeEdges(r.GetAllEdges())
	res := filter.Apply(state, edges, nodeIDs)

	edgeBatch := make([]VisibilityChange, 0, len(edges))
	for _, edge := range edges {
		edgeBatch = append(edgeBatch, VisibilityChange{ID: edge.ID, Hidden: !res.EdgeVisible[edge.ID]})
	}
	nodeBatch := make([]VisibilityChange, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		nodeBatch = append(nodeBatch, VisibilityChange{ID: id, Hidden: !res.NodeVisible[id]})
	}

	r.SetEdgeVisibility(edgeBatch)
	r.SetNodeVisibility(nodeBatch)
}
