//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/kittclouds/graphlens/pkg/explorer"
	"github.com/kittclouds/graphlens/pkg/search"
	"github.com/kittclouds/graphlens/pkg/snapshot"
)

// Version info
const Version = "0.1.0"

// Global state: one explorer per page, attached to the host's renderer.
var lens *explorer.Explorer

func main() {
	lens = explorer.New(nil, explorer.DefaultOptions())
	println("[GraphLens] WASM Ready v" + Version)

	// Register exports
	js.Global().Set("GraphLens", js.ValueOf(map[string]interface{}{
		"version":          js.FuncOf(getVersion),
		"attach":           js.FuncOf(attach),
		"structureChanged": js.FuncOf(structureChanged),
		"stabilized":       js.FuncOf(stabilized),
		"search":           js.FuncOf(doSearch),
		"searchNow":        js.FuncOf(searchNow),
		"toggleFilter":     js.FuncOf(toggleFilter),
		"toggleCascade":    js.FuncOf(toggleCascade),
		"filterState":      js.FuncOf(filterState),
		"stats":            js.FuncOf(stats),
	}))

	select {}
}

// jsRenderer bridges the explorer.Renderer boundary to a JS object supplied
// by the host. All payloads cross the boundary as JSON strings, which keeps
// the contract identical to the engine's native types.
type jsRenderer struct {
	v js.Value
}

func (r *jsRenderer) GetAllNodes() []snapshot.RawNode {
	var nodes []snapshot.RawNode
	raw := r.v.Call("getAllNodes").String()
	if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
		println("[GraphLens] getAllNodes: bad json: " + err.Error())
		return nil
	}
	return nodes
}

func (r *jsRenderer) GetAllEdges() []snapshot.RawEdge {
	var edges []snapshot.RawEdge
	raw := r.v.Call("getAllEdges").String()
	if err := json.Unmarshal([]byte(raw), &edges); err != nil {
		println("[GraphLens] getAllEdges: bad json: " + err.Error())
		return nil
	}
	return edges
}

func (r *jsRenderer) SetNodeVisibility(changes []explorer.VisibilityChange) {
	b, _ := json.Marshal(changes)
	r.v.Call("setNodeVisibility", string(b))
}

func (r *jsRenderer) SetEdgeVisibility(changes []explorer.VisibilityChange) {
	b, _ := json.Marshal(changes)
	r.v.Call("setEdgeVisibility", string(b))
}

func (r *jsRenderer) SelectNodes(ids []string) {
	b, _ := json.Marshal(ids)
	r.v.Call("selectNodes", string(b))
}

func (r *jsRenderer) FocusViewport(ids []string, anim json.RawMessage) {
	b, _ := json.Marshal(ids)
	r.v.Call("focusViewport", string(b), string(anim))
}

// attach wires the host's renderer object.
// Args: [renderer object] with getAllNodes/getAllEdges/setNodeVisibility/
// setEdgeVisibility/selectNodes/focusViewport methods.
func attach(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		return errorResult("attach requires 1 arg: renderer object")
	}
	lens.Attach(&jsRenderer{v: args[0]})
	return successResult("attached")
}

// structureChanged signals that the graph's node or edge set changed.
func structureChanged(this js.Value, args []js.Value) interface{} {
	lens.NotifyStructureChanged()
	return successResult("rebuild triggered")
}

// stabilized signals the first successful layout stabilization.
func stabilized(this js.Value, args []js.Value) interface{} {
	lens.NotifyStabilized()
	return successResult("stabilized")
}

// doSearch schedules a debounced search; selection and viewport follow the
// results. Args: [query string]
func doSearch(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("search requires 1 arg: query")
	}
	lens.Search(args[0].String())
	return successResult("scheduled")
}

// searchNow resolves a query synchronously and returns results with
// highlight spans over each display name. Args: [query string]
func searchNow(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("searchNow requires 1 arg: query")
	}
	query := args[0].String()
	res := lens.SearchNow(query)
	hl := search.NewHighlighter(query)

	type resultRow struct {
		ID          string        `json:"id"`
		DisplayName string        `json:"label"`
		Color       string        `json:"color,omitempty"`
		Spans       []search.Span `json:"spans,omitempty"`
	}
	rows := make([]resultRow, 0, len(res.Results))
	for _, m := range res.Results {
		rows = append(rows, resultRow{
			ID:          m.ID,
			DisplayName: m.Record.DisplayName,
			Color:       m.Record.Color,
			Spans:       hl.Spans(m.Record.DisplayName),
		})
	}

	b, err := json.Marshal(map[string]interface{}{
		"results": rows,
		"total":   res.TotalMatches,
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return string(b)
}

// toggleFilter enables/disables one edge type. Args: [type string, enabled bool]
func toggleFilter(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("toggleFilter requires 2 args: type, enabled")
	}
	lens.ToggleFilter(args[0].String(), args[1].Bool())
	return successResult("scheduled")
}

// toggleCascade switches connectivity-gated node visibility. Args: [enabled bool]
func toggleCascade(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("toggleCascade requires 1 arg: enabled")
	}
	lens.ToggleCascade(args[0].Bool())
	return successResult("scheduled")
}

// filterState returns the current per-type enabled flags and cascade switch.
func filterState(this js.Value, args []js.Value) interface{} {
	state := lens.FilterState()
	b, err := json.Marshal(map[string]interface{}{
		"enabled": state.Enabled,
		"cascade": state.Cascade,
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return string(b)
}

// stats returns snapshot counts for the viewer's status line.
func stats(this js.Value, args []js.Value) interface{} {
	b, err := json.Marshal(lens.Stats())
	if err != nil {
		return errorResult(err.Error())
	}
	return string(b)
}

// getVersion returns the module version
func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Create success result
func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
