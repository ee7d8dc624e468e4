package skilltree

// CenterColumns returns a copy of t with every category shifted
// horizontally so the middle of its root's reachable span lands on column
// center.
//
// The shift is always rounded to an even number of columns so every node
// keeps its column parity and its place in the offset pattern. An odd
// center therefore lands the middle one column off.
func (t *Tree) CenterColumns(center int) (*Tree, error) {
	data := t.Data()
	for name, cd := range data {
		shift := t.columnShift(name, center)
		if shift == 0 {
			continue
		}
		for id, nd := range cd.Nodes {
			nd.Col -= shift
			cd.Nodes[id] = nd
		}
	}
	return Build(data)
}

// columnShift computes how far category name must move left.
func (t *Tree) columnShift(name string, center int) int {
	cat := t.categories[name]
	left, right := 0, 0
	first := true
	for id := range t.Reachable(cat.Root) {
		col := t.nodes[id].Cell.Col
		if first || col < left {
			left = col
		}
		if first || col > right {
			right = col
		}
		first = false
	}
	mid := floorDiv(left+right, 2)
	shift := mid - (center + (mid & 1))
	return shift - shift&1
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
