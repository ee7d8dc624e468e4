// Package reach classifies the selected nodes of a directed graph by their
// connection to a root.
//
// # Classification
//
// [Classify] walks the graph depth-first from a root through selected nodes
// only and partitions the selection:
//
//   - Active: selected and connected to the root through selected nodes
//   - Orphan: selected but cut off from the root
//   - Possible: not selected, one link away from an active node
//
// When the root itself is not selected, nothing is active, every selected
// node is an orphan and the root is the only possible node.
//
// Links are directed and followed as stored on the source node. Membership in
// each set depends only on reachability, never on traversal order.
//
// # Projection and Effects
//
// [Project] narrows a [Classification] to the members of one category for
// display. [Aggregate] counts effect tags over the active nodes.
//
// Every call builds fresh sets; results are never patched in place.
package reach
