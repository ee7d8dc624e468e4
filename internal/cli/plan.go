package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hexplanner/pkg/errors"
	"github.com/matzehuels/hexplanner/pkg/hexgrid"
	"github.com/matzehuels/hexplanner/pkg/pipeline"
	"github.com/matzehuels/hexplanner/pkg/planner"
	"github.com/matzehuels/hexplanner/pkg/reach"
	"github.com/matzehuels/hexplanner/pkg/store"
)

// planCommand creates the plan management command.
func (c *CLI) planCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create, inspect and edit saved plans",
	}

	cmd.AddCommand(c.planNewCommand())
	cmd.AddCommand(c.planListCommand())
	cmd.AddCommand(c.planShowCommand())
	cmd.AddCommand(c.planToggleCommand())
	cmd.AddCommand(c.planCategoryCommand())
	cmd.AddCommand(c.planClearCommand())
	cmd.AddCommand(c.planDeleteCommand())

	return cmd
}

func (c *CLI) planNewCommand() *cobra.Command {
	var category string
	var selected []string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.workspace()
			if err != nil {
				return err
			}
			p, err := ws.NewPlanner(category, selected)
			if err != nil {
				return err
			}

			plans, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer plans.Close()

			plan := store.NewPlan(args[0], p.Category())
			plan.Update(p.Category(), p.Selection())
			if err := plans.Set(cmd.Context(), plan); err != nil {
				return errors.Wrap(errors.ErrCodeStore, err, "save plan")
			}

			printSuccess("Created plan %s", StyleHighlight.Render(plan.Name))
			printKeyValue("ID", plan.ID)
			printKeyValue("Category", plan.Category)
			printNewline()
			printNextStep("Toggle nodes", "hexplanner plan toggle "+plan.ID+" <node>")
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "initial category")
	cmd.Flags().StringSliceVarP(&selected, "select", "s", nil, "initially selected node IDs")
	return cmd
}

func (c *CLI) planListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved plans",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer plans.Close()

			all, err := plans.List(cmd.Context())
			if err != nil {
				return errors.Wrap(errors.ErrCodeStore, err, "list plans")
			}
			if len(all) == 0 {
				printInfo("No plans yet")
				printNextStep("Create one", "hexplanner plan new <name>")
				return nil
			}
			fmt.Fprintln(stdout, planTable(all))
			return nil
		},
	}
}

func (c *CLI) planShowCommand() *cobra.Command {
	var overview bool

	cmd := &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a plan's classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := c.loadPlan(cmd, args[0])
			if err != nil {
				return err
			}
			ws, err := c.workspace()
			if err != nil {
				return err
			}
			p, err := ws.NewPlanner(plan.Category, plan.Selected)
			if err != nil {
				return err
			}
			if overview {
				printOverview(plan, p.Overview())
				return nil
			}
			printPlan(ws, plan, p.Snapshot())
			return nil
		},
	}

	cmd.Flags().BoolVar(&overview, "overview", false, "summarize every category")
	return cmd
}

func (c *CLI) planToggleCommand() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "toggle <plan-id> [node...]",
		Short: "Toggle nodes of the plan's current category",
		Long: `Toggle nodes in or out of the selection. Nodes outside the current
category are ignored. With --at X,Y the node under that canvas point is
toggled instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes := args[1:]
			for _, id := range nodes {
				if err := errors.ValidateNodeID(id); err != nil {
					return err
				}
			}
			var pt *hexgrid.Point
			if at != "" {
				p, err := parsePoint(at)
				if err != nil {
					return err
				}
				pt = &p
			}
			if len(nodes) == 0 && pt == nil {
				return errors.New(errors.ErrCodeInvalidInput, "give node IDs or --at X,Y")
			}

			return c.mutatePlan(cmd, args[0], func(p *planner.Planner) error {
				for _, id := range nodes {
					if !p.Toggle(id) {
						printWarning("%s is not in category %s", id, p.Category())
					}
				}
				if pt != nil {
					if id, ok := p.ToggleAt(*pt); ok {
						printInfo("Toggled %s at %s", id, at)
					} else {
						printWarning("No node at %s", at)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "toggle the node under canvas point X,Y")
	return cmd
}

func (c *CLI) planCategoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "category <plan-id> <category>",
		Short: "Switch the plan's current category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutatePlan(cmd, args[0], func(p *planner.Planner) error {
				if err := p.SwitchCategory(args[1]); err != nil {
					return errors.Wrap(errors.ErrCodeUnknownCategory, err, "switch category")
				}
				return nil
			})
		},
	}
}

func (c *CLI) planClearCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear <plan-id>",
		Short: "Clear the current category's selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutatePlan(cmd, args[0], func(p *planner.Planner) error {
				if all {
					p.ClearAll()
				} else {
					p.ClearCategory()
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "clear every category")
	return cmd
}

func (c *CLI) planDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <plan-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a plan",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidatePlanID(args[0]); err != nil {
				return err
			}
			plans, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer plans.Close()

			if err := plans.Delete(cmd.Context(), args[0]); err != nil {
				return errors.Wrap(errors.ErrCodeStore, err, "delete plan")
			}
			printSuccess("Deleted plan %s", args[0])
			return nil
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

// loadPlan fetches a plan by ID from the configured store.
func (c *CLI) loadPlan(cmd *cobra.Command, id string) (*store.Plan, error) {
	if err := errors.ValidatePlanID(id); err != nil {
		return nil, err
	}
	plans, err := c.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer plans.Close()
	return getPlan(cmd.Context(), plans, id)
}

func getPlan(ctx context.Context, plans store.Store, id string) (*store.Plan, error) {
	plan, err := plans.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load plan")
	}
	if plan == nil {
		return nil, errors.New(errors.ErrCodePlanNotFound, "plan %q not found", id)
	}
	return plan, nil
}

// mutatePlan loads a plan, applies fn to a planner over it, saves the
// result and prints the new classification.
func (c *CLI) mutatePlan(cmd *cobra.Command, id string, fn func(*planner.Planner) error) error {
	ctx := cmd.Context()
	if err := errors.ValidatePlanID(id); err != nil {
		return err
	}
	ws, err := c.workspace()
	if err != nil {
		return err
	}
	plans, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer plans.Close()

	plan, err := getPlan(ctx, plans, id)
	if err != nil {
		return err
	}
	p, err := ws.NewPlanner(plan.Category, plan.Selected)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}

	plan.Update(p.Category(), p.Selection())
	if err := plans.Set(ctx, plan); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save plan")
	}
	loggerFromContext(ctx).Debug("plan saved", "id", plan.ID, "selected", len(plan.Selected))
	printPlan(ws, plan, p.Snapshot())
	return nil
}

// parsePoint parses "X,Y" canvas coordinates.
func parsePoint(s string) (hexgrid.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return hexgrid.Point{}, errors.New(errors.ErrCodeInvalidInput, "point must be X,Y: %q", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return hexgrid.Point{}, errors.New(errors.ErrCodeInvalidInput, "point must be X,Y: %q", s)
	}
	return hexgrid.Point{X: x, Y: y}, nil
}

// =============================================================================
// Output
// =============================================================================

var (
	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorDim)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return styleTableCell
		})
}

func planTable(plans []*store.Plan) *table.Table {
	t := newTable("ID", "NAME", "CATEGORY", "SELECTED", "UPDATED")
	for _, p := range plans {
		t.Row(p.ID, p.Name, p.Category, strconv.Itoa(len(p.Selected)), p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return t
}

func printPlan(ws *pipeline.Workspace, plan *store.Plan, snap planner.Snapshot) {
	fmt.Fprintln(stdout, StyleTitle.Render(plan.Name) + " " + StyleDim.Render(plan.ID))
	printKeyValue("Category", snap.Category)
	printKeyValue("Root", snap.Root)

	t := newTable("NODE", "NAME", "CELL", "STATE", "EFFECTS")
	for _, n := range ws.Tree.Members(snap.Category) {
		t.Row(n.ID, strings.ReplaceAll(n.Name, "\n", " "), n.Cell.String(), stateLabel(snap.State(n.ID)), strings.Join(n.Effects, ", "))
	}
	fmt.Fprintln(stdout, t)

	printSelectionStats(snap.Selected, snap.Visible.Active.Len(), snap.Visible.Orphan.Len())
	printEffects(snap.Effects)
}

func printOverview(plan *store.Plan, ov planner.Overview) {
	fmt.Fprintln(stdout, StyleTitle.Render(plan.Name) + " " + StyleDim.Render(plan.ID))
	t := newTable("CATEGORY", "ROOT", "SELECTED", "ACTIVE", "ORPHAN", "POSSIBLE")
	for _, cs := range ov.Categories {
		name := cs.Name
		if cs.Name == plan.Category {
			name = StyleHighlight.Render(name + " *")
		}
		t.Row(name, cs.Root,
			strconv.Itoa(cs.Selected), strconv.Itoa(cs.Active),
			strconv.Itoa(cs.Orphan), strconv.Itoa(cs.Possible))
	}
	fmt.Fprintln(stdout, t)
	printEffects(ov.Effects)
}

func printEffects(eff reach.Effects) {
	if len(eff) == 0 {
		return
	}
	parts := make([]string, 0, len(eff))
	for _, tag := range eff.Tags() {
		parts = append(parts, fmt.Sprintf("%s ×%d", tag, eff[tag]))
	}
	printDetail("Effects: %s", strings.Join(parts, ", "))
}
