package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hexplanner/pkg/errors"
	"github.com/matzehuels/hexplanner/pkg/pipeline"
	"github.com/matzehuels/hexplanner/pkg/render"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output   string
	format   string
	renderer string
	category string
	selected []string
	status   bool
	scale    float64
	detailed bool
	external bool
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var o renderOpts

	cmd := &cobra.Command{
		Use:   "render [plan-id]",
		Short: "Render a category as SVG, PNG, PDF, JSON or DOT",
		Long: `Render one category of the tree with the current selection highlighted.

The selection comes from a saved plan (by ID) or from --select. The hexmap
renderer draws the planner view; nodelink draws the link graph with Graphviz.`,
		Example: `  hexplanner render --category Firepower --select 12,13 -o firepower.svg
  hexplanner render 3f1c... --format png --scale 2
  hexplanner render --renderer nodelink --format dot -o -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, o)
		},
	}

	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default <category>.<format>, - for stdout)")
	cmd.Flags().StringVarP(&o.format, "format", "f", string(pipeline.DefaultFormat), "output format: svg, png, pdf, json, dot")
	cmd.Flags().StringVar(&o.renderer, "renderer", pipeline.DefaultRenderer, "renderer: hexmap, nodelink")
	cmd.Flags().StringVarP(&o.category, "category", "c", "", "category to draw")
	cmd.Flags().StringSliceVarP(&o.selected, "select", "s", nil, "selected node IDs (comma separated)")
	cmd.Flags().BoolVar(&o.status, "status", false, "add a status line with selection and effect totals")
	cmd.Flags().Float64Var(&o.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "add effect tags to node-link labels")
	cmd.Flags().BoolVar(&o.external, "external", false, "draw cross-category link targets in node-link diagrams")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "re-render even if a cached artifact exists")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, o renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	format, err := render.ParseFormat(o.format)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid --format")
	}

	ws, err := c.workspace()
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Category:  o.category,
		Selection: o.selected,
		Renderer:  o.renderer,
		Format:    format,
		Scale:     o.scale,
		Status:    o.status,
		Detailed:  o.detailed,
		External:  o.external,
		Refresh:   o.refresh,
	}

	if len(args) == 1 {
		plan, err := c.loadPlan(cmd, args[0])
		if err != nil {
			return err
		}
		if opts.Category == "" {
			opts.Category = plan.Category
		}
		opts.Selection = append(plan.Selected, o.selected...)
	}

	runner, err := c.newRunner(ctx, o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var spinner *Spinner
	if format.NeedsConverter() && o.output != "-" {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.ToUpper(string(format))))
		spinner.Start()
	}
	prog := newProgress(logger)
	res, err := runner.Render(ctx, ws, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if o.output == "-" {
		_, err := stdout.Write(res.Data)
		return err
	}

	out := o.output
	if out == "" {
		out = defaultOutputName(res.Snapshot.Category, format)
	}
	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	prog.done(fmt.Sprintf("Rendered %s", res.Snapshot.Category))

	printSuccess("Rendered %s", StyleHighlight.Render(res.Snapshot.Category))
	printFile(out)
	printSelectionStats(res.Snapshot.Selected, res.Snapshot.Visible.Active.Len(), res.Snapshot.Visible.Orphan.Len(), cacheStatus(res.CacheHit))
	return nil
}

// defaultOutputName derives a file name such as "firepower.svg".
func defaultOutputName(category string, format render.Format) string {
	name := strings.ToLower(strings.Join(strings.Fields(category), "-"))
	if name == "" {
		name = appName
	}
	return name + "." + string(format)
}
