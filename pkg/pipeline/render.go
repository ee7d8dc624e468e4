package pipeline

import (
	"context"

	"github.com/matzehuels/hexplanner/pkg/errors"
	"github.com/matzehuels/hexplanner/pkg/planner"
	"github.com/matzehuels/hexplanner/pkg/render"
	"github.com/matzehuels/hexplanner/pkg/render/hexmap"
	"github.com/matzehuels/hexplanner/pkg/render/nodelink"
)

func renderArtifact(ctx context.Context, ws *Workspace, snap planner.Snapshot, opts Options) ([]byte, error) {
	if opts.Format.NeedsConverter() && !render.Available() {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, render.ErrConverterMissing, "%s output", opts.Format)
	}
	if opts.Renderer == RendererNodelink {
		return renderNodelink(ctx, ws, snap, opts)
	}
	return renderHexmap(ctx, ws, snap, opts)
}

func renderHexmap(ctx context.Context, ws *Workspace, snap planner.Snapshot, opts Options) ([]byte, error) {
	sc := hexmap.Build(ws.Tree, ws.Grid, snap)
	svgOpts := []hexmap.SVGOption{hexmap.WithStyle(ws.Style)}
	if opts.Status {
		svgOpts = append(svgOpts, hexmap.WithStatus())
	}

	switch opts.Format {
	case render.FormatSVG:
		return hexmap.RenderSVG(sc, svgOpts...), nil
	case render.FormatPNG:
		return hexmap.RenderPNG(ctx, sc, opts.Scale, svgOpts...)
	case render.FormatPDF:
		return hexmap.RenderPDF(ctx, sc, svgOpts...)
	case render.FormatJSON:
		return hexmap.RenderJSON(sc)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "hexmap cannot produce %s", opts.Format)
}

func renderNodelink(ctx context.Context, ws *Workspace, snap planner.Snapshot, opts Options) ([]byte, error) {
	st := ws.Style
	dot := nodelink.ToDOT(ws.Tree, snap, nodelink.Options{
		Style:    &st,
		Detailed: opts.Detailed,
		External: opts.External,
	})

	switch opts.Format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case render.FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.Scale)
	case render.FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "nodelink cannot produce %s", opts.Format)
}
