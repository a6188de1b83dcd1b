package explorer_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/graphlens/internal/store"
	"github.com/kittclouds/graphlens/pkg/explorer"
)

// newFixture seeds a MemStore with a three-node graph joined by one "knows"
// edge and returns an explorer with short debounce windows.
func newFixture(t *testing.T) (*explorer.Explorer, *store.StoreRenderer, *store.MemStore) {
	t.Helper()
	s := store.NewMemStore()
	seedSmallGraph(t, s)

	r := store.NewStoreRenderer(s)
	opts := explorer.DefaultOptions()
	opts.SearchDebounce = 15 * time.Millisecond
	opts.FilterDebounce = 15 * time.Millisecond
	opts.StabilizeFallback = time.Hour // tests trigger rebuilds explicitly

	e := explorer.New(r, opts)
	t.Cleanup(e.Close)
	return e, r, s
}

func seedSmallGraph(t *testing.T, s store.GraphStore) {
	t.Helper()
	require.NoError(t, s.UpsertNode(&store.GraphNode{ID: "x", DisplayName: "Alpha Server"}))
	require.NoError(t, s.UpsertNode(&store.GraphNode{ID: "y", DisplayName: "Beta Server"}))
	require.NoError(t, s.UpsertNode(&store.GraphNode{ID: "z", DisplayName: "Gamma Client"}))
	require.NoError(t, s.UpsertEdge(&store.GraphEdge{ID: "e1", From: "x", To: "y", Type: "knows"}))
}

func visibilityOf(batch []explorer.VisibilityChange, id string) (hidden, found bool) {
	for _, c := range batch {
		if c.ID == id {
			return c.Hidden, true
		}
	}
	return false, false
}

func TestRebuildOnStabilization(t *testing.T) {
	e, _, _ := newFixture(t)

	// Nothing indexed before the first rebuild trigger.
	assert.Empty(t, e.SearchNow("server").Results)

	e.NotifyStabilized()

	st := e.Stats()
	assert.Equal(t, 3, st.NodeCount)
	assert.Equal(t, 1, st.EdgeCount)
	assert.Equal(t, []string{"knows"}, st.EdgeTypes)
	assert.False(t, st.Indexed, "three nodes sit below the indexing threshold")

	res := e.SearchNow("server")
	assert.Equal(t, 2, res.TotalMatches)
}

func TestStabilizationFallbackTimer(t *testing.T) {
	s := store.NewMemStore()
	seedSmallGraph(t, s)

	opts := explorer.DefaultOptions()
	opts.StabilizeFallback = 20 * time.Millisecond
	e := explorer.New(store.NewStoreRenderer(s), opts)
	t.Cleanup(e.Close)

	require.Eventually(t, func() bool { return e.Stats().NodeCount == 3 },
		2*time.Second, 10*time.Millisecond, "fallback timer must rebuild without a stabilization signal")
}

func TestFilterCascadeThroughRenderer(t *testing.T) {
	e, r, _ := newFixture(t)
	e.NotifyStabilized()

	e.ToggleFilter("knows", false)
	e.ToggleCascade(true)

	require.Eventually(t, func() bool {
		batch, _ := r.LastNodeBatch()
		hidden, found := visibilityOf(batch, "x")
		return found && hidden
	}, 2*time.Second, 10*time.Millisecond)

	nodeBatch, _ := r.LastNodeBatch()
	require.Len(t, nodeBatch, 3, "node batches always cover the complete graph")
	for _, id := range []string{"x", "y", "z"} {
		hidden, found := visibilityOf(nodeBatch, id)
		require.True(t, found, id)
		assert.True(t, hidden, "%s must hide: x/y lost their only edge, z is isolated", id)
	}

	edgeBatch, _ := r.LastEdgeBatch()
	hidden, found := visibilityOf(edgeBatch, "e1")
	require.True(t, found)
	assert.True(t, hidden)
}

func TestFilterBurstCoalesces(t *testing.T) {
	e, r, _ := newFixture(t)
	e.NotifyStabilized()
	_, baseline := r.LastEdgeBatch()

	// A slider burst: many toggles inside one debounce window.
	for i := 0; i < 10; i++ {
		e.ToggleFilter("knows", i%2 == 0)
	}
	e.ToggleFilter("knows", false)

	require.Eventually(t, func() bool {
		_, n := r.LastEdgeBatch()
		return n > baseline
	}, 2*time.Second, 10*time.Millisecond)

	// Let any stray timers expire; the burst must have produced one batch.
	time.Sleep(100 * time.Millisecond)
	_, n := r.LastEdgeBatch()
	assert.Equal(t, baseline+1, n)
}

func TestSearchPushesSelectionAndFocus(t *testing.T) {
	e, r, _ := newFixture(t)
	e.NotifyStabilized()

	e.Search("alpha")
	require.Eventually(t, func() bool {
		return len(r.LastSelection()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"x"}, r.LastSelection())

	ids, anim := r.LastFocus()
	assert.Equal(t, []string{"x"}, ids)
	assert.NotEmpty(t, anim, "animation spec passes through opaquely")

	// An empty query clears the selection.
	e.Search("  ")
	require.Eventually(t, func() bool {
		return len(r.LastSelection()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSearchBurstUsesLastQuery(t *testing.T) {
	e, r, _ := newFixture(t)
	e.NotifyStabilized()

	// Simulated keystrokes: only the final query runs.
	e.Search("g")
	e.Search("ga")
	e.Search("gamma")

	require.Eventually(t, func() bool {
		return len(r.LastSelection()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"z"}, r.LastSelection())
}

// TestRebuildDuringBuildQueuesFresh exercises the reentrancy guard: a
// structural change arriving between build batches queues a fresh pass
// instead of starting an overlapping build, and the newest graph wins.
func TestRebuildDuringBuildQueuesFresh(t *testing.T) {
	s := store.NewMemStore()
	for i := 0; i < 150; i++ {
		require.NoError(t, s.UpsertNode(&store.GraphNode{
			ID:          fmt.Sprintf("pad-%04d", i),
			DisplayName: fmt.Sprintf("Node %d", i),
		}))
	}

	r := store.NewStoreRenderer(s)
	opts := explorer.DefaultOptions()
	opts.StabilizeFallback = time.Hour
	opts.Search.BatchSize = 40

	var e *explorer.Explorer
	interrupted := false
	opts.Search.Yield = func() {
		if interrupted || e == nil {
			return
		}
		interrupted = true
		// The graph mutates mid-build and notifies; the in-flight build must
		// finish and immediately run a fresh pass.
		require.NoError(t, s.UpsertNode(&store.GraphNode{ID: "late", DisplayName: "Latecomer Server"}))
		e.NotifyStructureChanged()
	}

	e = explorer.New(r, opts)
	t.Cleanup(e.Close)
	e.NotifyStabilized()

	assert.True(t, interrupted, "build must have yielded at least once")
	res := e.SearchNow("latecomer")
	assert.Equal(t, 1, res.TotalMatches, "queued rebuild must capture the mid-build mutation")
	assert.Equal(t, 151, e.Stats().NodeCount)
}

func TestFilterStatePersistsAcrossRebuilds(t *testing.T) {
	e, _, s := newFixture(t)
	e.NotifyStabilized()
	require.NoError(t, s.UpsertEdge(&store.GraphEdge{ID: "e2", From: "y", To: "z", Type: "mentions"}))
	e.NotifyStructureChanged()

	e.ToggleFilter("knows", false)

	// Structural change: "mentions" vanishes, "cites" appears, "knows" stays.
	require.NoError(t, s.DeleteEdge("e2"))
	require.NoError(t, s.UpsertEdge(&store.GraphEdge{ID: "e3", From: "z", To: "x", Type: "cites"}))
	e.NotifyStructureChanged()

	state := e.FilterState()
	assert.False(t, state.Enabled["knows"], "prior choice survives")
	assert.True(t, state.Enabled["cites"], "new type defaults to enabled")
	_, hasMentions := state.Enabled["mentions"]
	assert.False(t, hasMentions, "vanished type is dropped")
}

func TestNoRendererDegradesToNoop(t *testing.T) {
	opts := explorer.DefaultOptions()
	opts.StabilizeFallback = time.Hour
	e := explorer.New(nil, opts)
	t.Cleanup(e.Close)

	// None of these may panic without a renderer.
	e.NotifyStructureChanged()
	e.ToggleFilter("knows", false)
	e.ToggleCascade(true)

	res := e.SearchNow("anything")
	assert.Zero(t, res.TotalMatches)
	assert.Zero(t, e.Stats().NodeCount)
}
