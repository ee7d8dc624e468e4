package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/hexplanner/pkg/planner"
	"github.com/matzehuels/hexplanner/pkg/reach"
	"github.com/matzehuels/hexplanner/pkg/render"
	"github.com/matzehuels/hexplanner/pkg/skilltree"
	"github.com/matzehuels/hexplanner/pkg/style"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Style supplies the state colors. The zero value uses style.Default.
	Style *style.Table

	// Detailed includes effect tags in node labels.
	Detailed bool

	// External draws link targets from other categories.
	External bool
}

// ToDOT converts the category of snap to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(tree *skilltree.Tree, snap planner.Snapshot, opts Options) string {
	st := style.Default()
	if opts.Style != nil {
		st = *opts.Style
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	if st.Background != "" {
		fmt.Fprintf(&buf, "  bgcolor=%q;\n", st.Background)
	} else {
		buf.WriteString("  bgcolor=\"transparent\";\n")
	}
	fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontcolor=%q;\n", snap.Category, st.Label.Get(reach.Inactive))
	buf.WriteString("  node [shape=hexagon, style=filled, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	members := tree.Members(snap.Category)
	inCategory := make(map[string]bool, len(members))
	for _, n := range members {
		inCategory[n.ID] = true
	}

	for _, n := range members {
		state := snap.State(n.ID)
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
			fmt.Sprintf("fillcolor=%q", st.Cell.Get(state)),
			fmt.Sprintf("fontcolor=%q", st.Label.Get(state)),
			fmt.Sprintf("class=%q", state.String()),
		}
		if n.ID == snap.Root {
			attrs = append(attrs, "penwidth=3")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	var external []string
	buf.WriteString("\n")
	for _, n := range members {
		for _, to := range n.Links {
			if !tree.Has(to) {
				continue
			}
			if !inCategory[to] {
				if !opts.External {
					continue
				}
				external = append(external, to)
			}
			state := reach.Inactive
			if snap.Classification.Active.Has(n.ID) && snap.Classification.Active.Has(to) {
				state = reach.Active
			}
			attrs := fmt.Sprintf("color=%q", st.Link.Get(state))
			if state == reach.Active {
				attrs += ", penwidth=2"
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", n.ID, to, attrs)
		}
	}

	if len(external) > 0 {
		buf.WriteString("\n")
		seen := map[string]bool{}
		for _, id := range external {
			if seen[id] {
				continue
			}
			seen[id] = true
			n, _ := tree.Node(id)
			fmt.Fprintf(&buf, "  %q [label=%q, style=\"dashed\", fillcolor=\"transparent\", fontcolor=%q];\n",
				id, n.Category+": "+n.Name, st.Label.Get(reach.Inactive))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *skilltree.Node, detailed bool) string {
	label := style.Wrap(n.Name)
	if !detailed || len(n.Effects) == 0 {
		return label
	}
	return label + "\n" + strings.Join(n.Effects, ", ")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one sized
// in user units so the diagram scales like the hex map.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
