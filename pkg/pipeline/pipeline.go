// Package pipeline ties loading and rendering together for the CLI and the
// HTTP server.
//
// The pipeline has two stages:
//
//  1. Load: read the tree and color files and build the grid ([LoadWorkspace])
//  2. Render: classify a selection and encode it in one format ([Runner.Render])
//
// Rendered artifacts are cached under a key built from the tree content,
// the style, the selection and every render option, so repeated requests
// for the same plan are served from cache.
//
// # Usage
//
//	ws, err := pipeline.LoadWorkspace(cfg)
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Render(ctx, ws, pipeline.Options{
//	    Category:  "Firepower",
//	    Selection: plan.Selected,
//	    Format:    render.FormatSVG,
//	})
package pipeline

import (
	"github.com/matzehuels/hexplanner/pkg/errors"
	"github.com/matzehuels/hexplanner/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Renderer names.
const (
	RendererHexmap   = "hexmap"
	RendererNodelink = "nodelink"
)

// DefaultRenderer is used when Options.Renderer is empty.
const DefaultRenderer = RendererHexmap

// DefaultFormat is used when Options.Format is empty.
const DefaultFormat = render.FormatSVG

// DefaultScale is the PNG scale factor.
const DefaultScale = 1.0

// ValidRenderers is the set of supported renderers.
var ValidRenderers = map[string]bool{
	RendererHexmap:   true,
	RendererNodelink: true,
}

// =============================================================================
// Options
// =============================================================================

// Options selects what to render and how.
type Options struct {
	// Category to draw. Empty means the planner default (first by name).
	Category string

	// Selection is the plan's selected node IDs. Unknown IDs are ignored.
	Selection []string

	// Renderer is "hexmap" (the planner view) or "nodelink" (Graphviz).
	Renderer string

	// Format of the artifact.
	Format render.Format

	// Scale multiplies PNG dimensions.
	Scale float64

	// Status adds the selection count and effect totals below a hex map.
	Status bool

	// Detailed adds effect tags to node-link labels.
	Detailed bool

	// External draws cross-category link targets in node-link diagrams.
	External bool

	// Refresh bypasses the cache read. The fresh artifact is still stored.
	Refresh bool
}

// ValidateAndSetDefaults fills defaults and rejects unsupported
// renderer/format pairs.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Renderer == "" {
		o.Renderer = DefaultRenderer
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}

	if !ValidRenderers[o.Renderer] {
		return errors.New(errors.ErrCodeInvalidInput, "unknown renderer %q", o.Renderer)
	}
	if _, err := render.ParseFormat(string(o.Format)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid format")
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	switch {
	case o.Renderer == RendererHexmap && o.Format == render.FormatDOT:
		return errors.New(errors.ErrCodeUnsupported, "dot output requires the nodelink renderer")
	case o.Renderer == RendererNodelink && o.Format == render.FormatJSON:
		return errors.New(errors.ErrCodeUnsupported, "json output requires the hexmap renderer")
	}
	return nil
}
