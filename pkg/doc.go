// Package pkg holds the libraries behind hexplanner.
//
// # Overview
//
// hexplanner lays node trees out on a flat-topped hex grid. Each category of
// the tree has a root, a selection is a set of node IDs, and every node of
// the current category is classified as active, possible, orphaned or
// inactive relative to that root.
//
// # Layers
//
//  1. Engine: [hexgrid] (pixel/cell geometry), [reach] (classification and
//     effect totals), [skilltree] (tree loading), [planner] (selection state)
//  2. Output: [style], [render], [render/hexmap], [render/nodelink]
//  3. Infrastructure: [store] (saved plans), [cache] (rendered artifacts),
//     [config], [errors], [observability], [metrics]
//  4. Orchestration: [pipeline] (workspace and cached rendering), [server]
//     (HTTP API), [httputil]
//
// # Data Flow
//
//	tree.json ─→ [skilltree] ─→ [planner] ←─ toggles, category switches
//	                               ↓
//	                    [reach].Classify / Project / Aggregate
//	                               ↓
//	              [pipeline].Runner ─→ [render] ─→ SVG/PNG/PDF/JSON/DOT
//
// # Quick Start
//
//	tree, _ := skilltree.Load("tree.json")
//	grid := hexgrid.New(48, 16, hexgrid.Point{X: 0, Y: 160})
//	p, _ := planner.New(tree, grid, planner.WithCategory("Firepower"))
//	p.Toggle("0")
//	snap := p.Snapshot()
//	fmt.Println(snap.Visible.Active.Sorted(), snap.Effects)
package pkg
