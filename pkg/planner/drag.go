package planner

import "github.com/matzehuels/hexplanner/pkg/hexgrid"

// Drag tracks a pointer gesture over a planner. While the pointer is down
// each node it enters is toggled once; re-entering the node just toggled
// does nothing until the pointer moves to a different node or is released.
type Drag struct {
	p    *Planner
	down bool
	prev string
}

// NewDrag returns a gesture tracker for p.
func NewDrag(p *Planner) *Drag { return &Drag{p: p} }

// Down starts a gesture. No node is toggled until the pointer moves or is released.
func (d *Drag) Down() { d.down = true }

// Move handles pointer motion to pt and returns the toggled node, if any.
func (d *Drag) Move(pt hexgrid.Point) (string, bool) {
	if !d.down {
		return "", false
	}
	return d.visit(pt)
}

// Up ends the gesture at pt, toggling the node there unless it was the last
// one toggled.
func (d *Drag) Up(pt hexgrid.Point) (string, bool) {
	id, ok := d.visit(pt)
	d.Cancel()
	return id, ok
}

// Cancel ends the gesture without toggling anything.
func (d *Drag) Cancel() {
	d.down = false
	d.prev = ""
}

// Active reports whether the pointer is down.
func (d *Drag) Active() bool { return d.down }

// visit toggles the node under pt. Crossing an empty cell forgets the last
// toggled node; points outside every cell leave it alone.
func (d *Drag) visit(pt hexgrid.Point) (string, bool) {
	if d.p.Grid() == nil {
		return "", false
	}
	cell, ok := d.p.Grid().CellAtPoint(pt)
	if !ok {
		return "", false
	}
	id, ok := d.p.Tree().NodeAt(d.p.Category(), cell)
	if !ok {
		d.prev = ""
		return "", false
	}
	if id == d.prev {
		return "", false
	}
	d.prev = id
	return id, d.p.Toggle(id)
}
