// Package hexmap renders one category of a plan as a hexagonal map.
//
// [Build] turns a planner snapshot into a [Scene]: every member node of the
// category becomes a hexagon at its cell's position, colored by its state,
// and every link from a member to an existing node becomes a line between
// cell centers. Cells are ordered for painting: inactive first, then active,
// possible and orphan, so later states draw over earlier ones.
//
// A Scene is a plain value. [RenderSVG] draws it, [RenderPNG] and [RenderPDF]
// convert that drawing with rsvg-convert, and [RenderJSON] dumps the scene
// itself for other front ends.
package hexmap
