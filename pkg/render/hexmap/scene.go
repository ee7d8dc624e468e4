package hexmap

import (
	"cmp"
	"slices"

	"github.com/matzehuels/hexplanner/pkg/hexgrid"
	"github.com/matzehuels/hexplanner/pkg/planner"
	"github.com/matzehuels/hexplanner/pkg/reach"
	"github.com/matzehuels/hexplanner/pkg/skilltree"
	"github.com/matzehuels/hexplanner/pkg/style"
)

// DefaultMargin is the space kept around the outermost cells.
const DefaultMargin = 16.0

// Cell is one drawn hexagon.
type Cell struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Lines    []string         `json:"lines"`
	Desc     string           `json:"desc,omitempty"`
	Cell     hexgrid.Cell     `json:"cell"`
	Center   hexgrid.Point    `json:"center"`
	Vertices [6]hexgrid.Point `json:"vertices"`
	State    reach.NodeState  `json:"state"`
	Effects  []string         `json:"effects,omitempty"`
}

// Link is one drawn link between two cell centers.
type Link struct {
	From  string          `json:"from"`
	To    string          `json:"to"`
	X1    float64         `json:"x1"`
	Y1    float64         `json:"y1"`
	X2    float64         `json:"x2"`
	Y2    float64         `json:"y2"`
	State reach.NodeState `json:"state"`
}

// Scene is everything needed to draw one category.
type Scene struct {
	Category string        `json:"category"`
	MinX     float64       `json:"min_x"`
	MinY     float64       `json:"min_y"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Radius   float64       `json:"radius"`
	Cells    []Cell        `json:"cells"`
	Links    []Link        `json:"links"`
	Selected int           `json:"selected"`
	Effects  reach.Effects `json:"effects"`
}

// Build lays out snap's category of tree on grid.
func Build(tree *skilltree.Tree, grid *hexgrid.Grid, snap planner.Snapshot) Scene {
	members := tree.Members(snap.Category)
	sc := Scene{
		Category: snap.Category,
		Radius:   grid.Radius(),
		Cells:    make([]Cell, 0, len(members)),
		Selected: snap.Selected,
		Effects:  snap.Effects,
	}

	cells := make([]hexgrid.Cell, 0, len(members))
	for _, n := range members {
		cells = append(cells, n.Cell)
		sc.Cells = append(sc.Cells, Cell{
			ID:       n.ID,
			Name:     n.Name,
			Lines:    style.Lines(n.Name),
			Desc:     n.Desc,
			Cell:     n.Cell,
			Center:   grid.CellCenter(n.Cell),
			Vertices: grid.Vertices(n.Cell),
			State:    snap.State(n.ID),
			Effects:  n.Effects,
		})

		for _, to := range n.Links {
			dst, ok := tree.Node(to)
			if !ok {
				continue
			}
			a, b := grid.CellCenter(n.Cell), grid.CellCenter(dst.Cell)
			sc.Links = append(sc.Links, Link{
				From: n.ID, To: to,
				X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y,
				State: linkState(snap.Classification, n.ID, to),
			})
		}
	}

	slices.SortStableFunc(sc.Cells, func(a, b Cell) int {
		return cmp.Compare(paintRank(a.State), paintRank(b.State))
	})

	tl, br := grid.Bounds(cells)
	sc.MinX, sc.MinY = tl.X, tl.Y
	sc.Width, sc.Height = br.X-tl.X, br.Y-tl.Y
	return sc
}

// linkState is active when the link is part of the active chain.
func linkState(c reach.Classification, from, to string) reach.NodeState {
	if c.Active.Has(from) && c.Active.Has(to) {
		return reach.Active
	}
	return reach.Inactive
}

func paintRank(s reach.NodeState) int { return slices.Index(reach.States, s) }

// Count returns how many cells are in state s.
func (sc Scene) Count(s reach.NodeState) int {
	n := 0
	for _, c := range sc.Cells {
		if c.State == s {
			n++
		}
	}
	return n
}
