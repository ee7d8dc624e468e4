package hexgrid

import (
	"fmt"
	"math"
)

// Cell addresses one hexagon by column and row.
type Cell struct {
	Col int `json:"col" yaml:"col"`
	Row int `json:"row" yaml:"row"`
}

// String formats the cell as "(col, row)".
func (c Cell) String() string { return fmt.Sprintf("(%d, %d)", c.Col, c.Row) }

// IsOdd reports whether the cell sits in an odd column. Odd columns are the
// raised half of the offset pattern.
func (c Cell) IsOdd() bool { return c.Col&1 == 1 }

// Grid holds the fixed layout parameters of a hexagonal grid.
// Use [New] to build one; the zero value has no cells.
type Grid struct {
	origin Point
	radius float64

	cellHeight float64 // √3·r, flat edge to flat edge
	cellWidth  float64 // 2r, vertex to vertex
	delta      float64 // 1.5r, horizontal center distance without padding

	padWidth  float64
	padHeight float64

	hexWidth  float64 // horizontal distance between column centers
	hexHeight float64 // vertical distance between row centers
}

// New builds a grid of hexagons with circumradius radius, separated by padding,
// with cell (0, 0) anchored relative to origin.
func New(radius, padding float64, origin Point) *Grid {
	g := &Grid{
		origin:     origin,
		radius:     radius,
		cellHeight: math.Sqrt(3) * radius,
		cellWidth:  2 * radius,
		delta:      1.5 * radius,
		padWidth:   padding,
		padHeight:  math.Sqrt(3) / 2 * padding,
	}
	g.hexWidth = g.delta + g.padWidth
	g.hexHeight = g.cellHeight + g.padHeight
	return g
}

// Origin returns the grid's origin point.
func (g *Grid) Origin() Point { return g.origin }

// Radius returns the circumradius of each cell.
func (g *Grid) Radius() float64 { return g.radius }

// CellHeight returns the flat-to-flat height of a cell.
func (g *Grid) CellHeight() float64 { return g.cellHeight }

// CellWidth returns the vertex-to-vertex width of a cell.
func (g *Grid) CellWidth() float64 { return g.cellWidth }

// Spacing returns the horizontal and vertical distance between neighboring
// cell centers in the same row and column.
func (g *Grid) Spacing() (width, height float64) { return g.hexWidth, g.hexHeight }

// columnOffset is the vertical shift applied to a column: even columns are
// lowered by half a row.
func (g *Grid) columnOffset(col int) float64 {
	if col&1 == 1 {
		return 0
	}
	return g.hexHeight / 2
}

// CellCenter returns the center of cell c.
func (g *Grid) CellCenter(c Cell) Point {
	x := float64(c.Col) * g.hexWidth
	y := float64(c.Row)*g.hexHeight + g.columnOffset(c.Col)
	return g.origin.Add(Point{X: x, Y: y})
}

// Vertices returns the six corners of cell c, clockwise (in screen
// coordinates) starting from the vertex at Cartesian 0°.
func (g *Grid) Vertices(c Cell) [6]Point {
	ctr := g.CellCenter(c)
	r, h := g.radius, g.cellHeight/2
	return [6]Point{
		{X: ctr.X + r, Y: ctr.Y},
		{X: ctr.X + r/2, Y: ctr.Y + h},
		{X: ctr.X - r/2, Y: ctr.Y + h},
		{X: ctr.X - r, Y: ctr.Y},
		{X: ctr.X - r/2, Y: ctr.Y - h},
		{X: ctr.X + r/2, Y: ctr.Y - h},
	}
}

// PointInCell reports whether p lies inside cell c.
//
// The hexagon is split into the triangle (v3, v4, v5) on the left, the
// rectangle spanned by v5 and v2 in the middle and the triangle (v6, v1, v2)
// on the right, tested in that order.
func (g *Grid) PointInCell(p Point, c Cell) bool {
	v := g.Vertices(c)
	return p.InTriangle(v[2], v[3], v[4]) ||
		p.InRectangle(v[4], v[1]) ||
		p.InTriangle(v[5], v[0], v[1])
}

// Guess returns the cell whose center is the nearest grid point up and to
// the left of p. The guess is not verified; see [Grid.CellAtPoint].
func (g *Grid) Guess(p Point) Cell {
	off := p.Sub(g.origin)
	col := int(math.Floor(off.X / g.hexWidth))
	row := int(math.Floor((off.Y - g.columnOffset(col)) / g.hexHeight))
	return Cell{Col: col, Row: row}
}

// Candidates returns the cells CellAtPoint verifies for p, in test order:
// the guess, the cell below it and the cell to its bottom-right.
// The bottom-right cell keeps the guess row for odd columns and takes the
// next row for even ones.
func (g *Grid) Candidates(p Point) [3]Cell {
	guess := g.Guess(p)
	brRow := guess.Row + 1
	if guess.IsOdd() {
		brRow = guess.Row
	}
	return [3]Cell{
		guess,
		{Col: guess.Col, Row: guess.Row + 1},
		{Col: guess.Col + 1, Row: brRow},
	}
}

// CellAtPoint returns the cell containing p and true, or the zero Cell and
// false when none of the candidate cells contains it.
func (g *Grid) CellAtPoint(p Point) (Cell, bool) {
	for _, c := range g.Candidates(p) {
		if g.PointInCell(p, c) {
			return c, true
		}
	}
	return Cell{}, false
}

// Neighbors returns the six cells sharing an edge with c: above, below, and
// the upper and lower cells in each adjacent column.
func (g *Grid) Neighbors(c Cell) [6]Cell {
	// Adjacent columns straddle rows (row-1, row) for odd columns and
	// (row, row+1) for even ones.
	lo, hi := c.Row, c.Row+1
	if c.IsOdd() {
		lo, hi = c.Row-1, c.Row
	}
	return [6]Cell{
		{Col: c.Col, Row: c.Row - 1},
		{Col: c.Col + 1, Row: lo},
		{Col: c.Col + 1, Row: hi},
		{Col: c.Col, Row: c.Row + 1},
		{Col: c.Col - 1, Row: hi},
		{Col: c.Col - 1, Row: lo},
	}
}

// Bounds returns the top-left and bottom-right corners of the smallest
// axis-aligned box holding every cell in cells. It returns the origin twice
// for an empty slice.
func (g *Grid) Bounds(cells []Cell) (Point, Point) {
	if len(cells) == 0 {
		return g.origin, g.origin
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range cells {
		ctr := g.CellCenter(c)
		minX = math.Min(minX, ctr.X-g.radius)
		maxX = math.Max(maxX, ctr.X+g.radius)
		minY = math.Min(minY, ctr.Y-g.cellHeight/2)
		maxY = math.Max(maxY, ctr.Y+g.cellHeight/2)
	}
	return Point{X: minX, Y: minY}, Point{X: maxX, Y: maxY}
}
