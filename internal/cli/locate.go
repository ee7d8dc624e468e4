package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hexplanner/pkg/errors"
	"github.com/matzehuels/hexplanner/pkg/hexgrid"
)

// locateCommand creates the locate command, which maps a canvas point to a
// grid cell and optionally to the node on it.
func (c *CLI) locateCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "locate <x> <y>",
		Short: "Find the hex cell (and node) under a canvas point",
		Example: `  hexplanner locate 120 250
  hexplanner locate 120 250 --category Firepower`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, errX := strconv.ParseFloat(args[0], 64)
			y, errY := strconv.ParseFloat(args[1], 64)
			if errX != nil || errY != nil {
				return errors.New(errors.ErrCodeInvalidInput, "x and y must be numbers")
			}

			ws, err := c.workspace()
			if err != nil {
				return err
			}
			pt := hexgrid.Point{X: x, Y: y}
			cell, ok := ws.Grid.CellAtPoint(pt)
			if !ok {
				printInfo("No cell at (%g, %g)", x, y)
				return nil
			}

			center := ws.Grid.CellCenter(cell)
			printKeyValue("Cell", cell.String())
			printKeyValue("Center", fmt.Sprintf("(%.1f, %.1f)", center.X, center.Y))

			if category == "" {
				return nil
			}
			if _, ok := ws.Tree.Category(category); !ok {
				return errors.New(errors.ErrCodeUnknownCategory, "unknown category %q", category)
			}
			id, ok := ws.Tree.NodeAt(category, cell)
			if !ok {
				printKeyValue("Node", StyleDim.Render("none"))
				return nil
			}
			n, _ := ws.Tree.Node(id)
			printKeyValue("Node", StyleHighlight.Render(id)+" "+StyleDim.Render(n.Name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "resolve the node of this category")
	return cmd
}
