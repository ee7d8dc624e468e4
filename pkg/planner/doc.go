// Package planner holds the interactive state of one node plan.
//
// A [Planner] owns a selection set and a current category over a shared,
// read-only [skilltree.Tree]. Every mutation (toggling a node, switching or
// clearing a category, loading a saved selection) triggers a full
// recompute: the selection is classified against the current category's
// root, projected onto that category's members and its effects aggregated.
// The result is available as a [Snapshot].
//
// Input is resolved through a [hexgrid.Grid]: [Planner.ToggleAt] maps a
// point to a cell, the cell to a node of the current category and toggles
// it. [Drag] adds pointer down/move/up handling on top, toggling each node
// once as the pointer passes over it.
//
// A Planner is not safe for concurrent use. Callers that share one, such as
// an HTTP server, must serialize access.
package planner
