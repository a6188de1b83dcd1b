package main

import (
	"fmt"
	"log"
	"time"

	"github.com/kittclouds/graphlens/internal/store"
	"github.com/kittclouds/graphlens/pkg/explorer"
)

func main() {
	fmt.Println("Testing explorer over MemStore...")
	testExplorer(store.NewMemStore())

	fmt.Println("\nTesting explorer over SQLiteStore...")
	s, err := store.NewSQLiteStore()
	if err != nil {
		log.Fatalf("NewSQLiteStore failed: %v", err)
	}
	testExplorer(s)

	fmt.Println("\n✅ All checks passed!")
}

func testExplorer(s store.GraphStore) {
	defer s.Close()
	seed(s)

	renderer := store.NewStoreRenderer(s)
	opts := explorer.DefaultOptions()
	opts.FilterDebounce = 20 * time.Millisecond
	opts.SearchDebounce = 20 * time.Millisecond

	lens := explorer.New(renderer, opts)
	defer lens.Close()

	lens.NotifyStabilized()
	st := lens.Stats()
	if st.NodeCount != 3 || st.EdgeCount != 2 {
		log.Fatalf("stats mismatch: %+v", st)
	}
	fmt.Println("  ✓ rebuild on stabilization works")

	res := lens.SearchNow("alpha")
	if res.TotalMatches != 1 || res.Results[0].ID != "n1" {
		log.Fatalf("search mismatch: %+v", res)
	}
	fmt.Println("  ✓ search works")

	lens.ToggleFilter("knows", false)
	lens.ToggleCascade(true)
	waitFor(func() bool {
		batch, _ := renderer.LastNodeBatch()
		return hidden(batch, "n1")
	})
	nodeBatch, _ := renderer.LastNodeBatch()
	if hidden(nodeBatch, "n2") || hidden(nodeBatch, "n3") {
		log.Fatalf("cascade visibility mismatch: %+v", nodeBatch)
	}
	fmt.Println("  ✓ filter cascade works")
}

func seed(s store.GraphStore) {
	now := time.Now().UnixMilli()
	nodes := []*store.GraphNode{
		{ID: "n1", DisplayName: "Alpha Server", Labels: []string{"Host"},
			Properties: map[string]any{"os": "linux"}, CreatedAt: now, UpdatedAt: now},
		{ID: "n2", DisplayName: "Beta Server", Labels: []string{"Host"}, CreatedAt: now, UpdatedAt: now},
		{ID: "n3", DisplayName: "Gamma Client", CreatedAt: now, UpdatedAt: now},
	}
	for _, n := range nodes {
		if err := s.UpsertNode(n); err != nil {
			log.Fatalf("UpsertNode failed: %v", err)
		}
	}
	edges := []*store.GraphEdge{
		{ID: "e1", From: "n1", To: "n2", Type: "knows", CreatedAt: now},
		{ID: "e2", From: "n2", To: "n3", Type: "serves", CreatedAt: now},
	}
	for _, e := range edges {
		if err := s.UpsertEdge(e); err != nil {
			log.Fatalf("UpsertEdge failed: %v", err)
		}
	}
}

func hidden(batch []explorer.VisibilityChange, id string) bool {
	for _, c := range batch {
		if c.ID == id {
			return c.Hidden
		}
	}
	return false
}

func waitFor(cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	log.Fatal("condition never held")
}
