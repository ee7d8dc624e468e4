// Package render draws planner state.
//
// # Overview
//
// Rendering is split by view:
//
//   - [hexmap]: the hexagonal map of one category, cells colored by state
//   - [nodelink]: the same category as a directed Graphviz diagram
//
// Both produce SVG natively. The [ToPDF] and [ToPNG] functions convert any
// SVG to other formats using the external rsvg-convert tool (from librsvg).
//
//	svg := hexmap.RenderSVG(scene, hexmap.WithStyle(table))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Formats
//
// [ParseFormat] validates the output format names accepted by the CLI and the
// HTTP server.
package render
