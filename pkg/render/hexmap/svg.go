package hexmap

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/hexplanner/pkg/reach"
	"github.com/matzehuels/hexplanner/pkg/render"
	"github.com/matzehuels/hexplanner/pkg/style"
)

const lineHeightRatio = 1.2

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style  style.Table
	margin float64
	status bool
}

// WithStyle sets the color table. The default is [style.Default].
func WithStyle(t style.Table) SVGOption { return func(r *svgRenderer) { r.style = t } }

// WithMargin sets the space around the outermost cells.
func WithMargin(m float64) SVGOption { return func(r *svgRenderer) { r.margin = m } }

// WithStatus adds a status line with the selection size and effect totals.
func WithStatus() SVGOption { return func(r *svgRenderer) { r.status = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: style.Default(), margin: DefaultMargin}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws sc as a standalone SVG document.
func RenderSVG(sc Scene, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	st := r.style

	fontSize := st.FontSize
	if fontSize <= 0 {
		fontSize = style.Default().FontSize
	}

	x, y := sc.MinX-r.margin, sc.MinY-r.margin
	w, h := sc.Width+2*r.margin, sc.Height+2*r.margin
	statusY := y + h
	if r.status {
		h += fontSize * 2
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		x, y, w, h, w, h)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(sc.Category))
	if st.Background != "" {
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n", x, y, w, h, st.Background)
	}

	buf.WriteString(`  <g class="links">` + "\n")
	for _, l := range sc.Links {
		fmt.Fprintf(&buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.1f" data-from="%s" data-to="%s"/>`+"\n",
			l.X1, l.Y1, l.X2, l.Y2, st.Link.Get(l.State), sc.Radius/8, escape(l.From), escape(l.To))
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="cells">` + "\n")
	for _, c := range sc.Cells {
		renderCell(&buf, c, st, fontSize)
	}
	buf.WriteString("  </g>\n")

	if r.status {
		fmt.Fprintf(&buf, `  <text class="status" x="%.1f" y="%.1f" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
			x+r.margin, statusY+fontSize, escape(st.FontFamily), fontSize, st.Label.Get(reach.Inactive), escape(statusLine(sc)))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderCell(buf *bytes.Buffer, c Cell, st style.Table, fontSize float64) {
	pts := make([]string, len(c.Vertices))
	for i, v := range c.Vertices {
		pts[i] = fmt.Sprintf("%.2f,%.2f", v.X, v.Y)
	}
	fmt.Fprintf(buf, `    <polygon id="node-%s" class="cell %s" points="%s" fill="%s">`,
		escape(c.ID), c.State, strings.Join(pts, " "), st.Cell.Get(c.State))
	if c.Desc != "" {
		fmt.Fprintf(buf, "<title>%s</title>", escape(c.Desc))
	}
	buf.WriteString("</polygon>\n")

	lineHeight := fontSize * lineHeightRatio
	mid := float64(len(c.Lines)-1) / 2
	fmt.Fprintf(buf, `    <text class="label %s" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%.1f" fill="%s">`,
		c.State, escape(st.FontFamily), fontSize, st.Label.Get(c.State))
	for i, line := range c.Lines {
		fmt.Fprintf(buf, `<tspan x="%.2f" y="%.2f">%s</tspan>`,
			c.Center.X, c.Center.Y+(float64(i)-mid)*lineHeight, escape(line))
	}
	buf.WriteString("</text>\n")
}

func statusLine(sc Scene) string {
	parts := []string{fmt.Sprintf("%d selected", sc.Selected)}
	for _, tag := range sc.Effects.Tags() {
		parts = append(parts, fmt.Sprintf("%s ×%d", tag, sc.Effects[tag]))
	}
	return strings.Join(parts, " · ")
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// RenderPNG renders sc as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, sc Scene, scale float64, opts ...SVGOption) ([]byte, error) {
	return render.ToPNG(ctx, RenderSVG(sc, opts...), scale)
}

// RenderPDF renders sc as PDF via SVG conversion.
func RenderPDF(ctx context.Context, sc Scene, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(sc, opts...))
}

// RenderJSON encodes sc as indented JSON.
func RenderJSON(sc Scene) ([]byte, error) {
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return append(data, '\n'), nil
}
