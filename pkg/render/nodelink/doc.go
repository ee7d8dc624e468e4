// Package nodelink renders a plan category as a node-link diagram.
//
// # Overview
//
// Where the hex map places nodes on their cells, this view lets Graphviz lay
// out the category as a directed graph. Nodes are filled with the color of
// their state and links of the active chain are drawn bold.
//
// # Usage
//
// Convert a snapshot to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(tree, snap, nodelink.Options{Style: table})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: node labels include the effect tags
//   - External: targets outside the category are drawn as dashed nodes
//
// The DOT source itself can be saved and processed with the Graphviz
// command-line tools.
package nodelink
