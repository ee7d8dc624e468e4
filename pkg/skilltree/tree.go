package skilltree

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/hexplanner/pkg/hexgrid"
	"github.com/matzehuels/hexplanner/pkg/reach"
)

var (
	// ErrRootNotMember is returned when a category's root is not one of its nodes.
	ErrRootNotMember = errors.New("root is not a member of its category")
	// ErrDuplicateNode is returned when two nodes share an ID.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrCellTaken is returned when two nodes of one category share a cell.
	ErrCellTaken = errors.New("cell already taken")
	// ErrEmptyTree is returned when the input defines no categories.
	ErrEmptyTree = errors.New("tree has no categories")
)

// Node is a single selectable node.
type Node struct {
	ID       string
	Name     string
	Desc     string
	Cell     hexgrid.Cell
	Effects  []string
	Links    []string // "" marks an absent target
	Category string
}

// Category groups nodes under one root.
type Category struct {
	Name    string
	Root    string
	Members reach.Set
}

// Tree is the full node graph across all categories.
type Tree struct {
	nodes      map[string]*Node
	categories map[string]*Category
	cells      map[string]map[hexgrid.Cell]string
}

// Build assembles a tree from decoded category data.
func Build(data Data) (*Tree, error) {
	if len(data) == 0 {
		return nil, ErrEmptyTree
	}

	t := &Tree{
		nodes:      make(map[string]*Node),
		categories: make(map[string]*Category, len(data)),
		cells:      make(map[string]map[hexgrid.Cell]string, len(data)),
	}

	// Sorted so duplicate errors name the same category on every run.
	for _, name := range slices.Sorted(maps.Keys(data)) {
		cd := data[name]
		cat := &Category{Name: name, Root: cd.Root, Members: reach.NewSet()}
		cells := make(map[hexgrid.Cell]string, len(cd.Nodes))

		for _, id := range slices.Sorted(maps.Keys(cd.Nodes)) {
			nd := cd.Nodes[id]
			if prev, ok := t.nodes[id]; ok {
				return nil, fmt.Errorf("node %s in %q and %q: %w", id, prev.Category, name, ErrDuplicateNode)
			}
			cell := hexgrid.Cell{Col: nd.Col, Row: nd.Row}
			if other, ok := cells[cell]; ok {
				return nil, fmt.Errorf("node %s at %s held by %s: %w", id, cell, other, ErrCellTaken)
			}

			links := make([]string, len(nd.Links))
			for i, l := range nd.Links {
				if l != nil {
					links[i] = *l
				}
			}
			t.nodes[id] = &Node{
				ID:       id,
				Name:     nd.Name,
				Desc:     nd.Desc,
				Cell:     cell,
				Effects:  slices.Clone(nd.Effects),
				Links:    links,
				Category: name,
			}
			cells[cell] = id
			cat.Members.Add(id)
		}

		if !cat.Members.Has(cat.Root) {
			return nil, fmt.Errorf("category %q root %q: %w", name, cat.Root, ErrRootNotMember)
		}
		t.categories[name] = cat
		t.cells[name] = cells
	}
	return t, nil
}

// Has reports whether id is a node of the tree.
func (t *Tree) Has(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Links returns the stored link targets of id, or nil for unknown IDs.
func (t *Tree) Links(id string) []string {
	if n, ok := t.nodes[id]; ok {
		return n.Links
	}
	return nil
}

// Effects returns the effect tags of id, or nil for unknown IDs.
func (t *Tree) Effects(id string) []string {
	if n, ok := t.nodes[id]; ok {
		return n.Effects
	}
	return nil
}

// Node returns the node with the given ID.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Nodes returns every node ordered by ID.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.nodes))
	for _, id := range slices.Sorted(maps.Keys(t.nodes)) {
		out = append(out, t.nodes[id])
	}
	return out
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Category returns the named category.
func (t *Tree) Category(name string) (*Category, bool) {
	c, ok := t.categories[name]
	return c, ok
}

// Categories returns the category names in ascending order.
func (t *Tree) Categories() []string { return slices.Sorted(maps.Keys(t.categories)) }

// Members returns the nodes of a category ordered by ID.
func (t *Tree) Members(category string) []*Node {
	c, ok := t.categories[category]
	if !ok {
		return nil
	}
	out := make([]*Node, 0, c.Members.Len())
	for _, id := range c.Members.Sorted() {
		out = append(out, t.nodes[id])
	}
	return out
}

// NodeAt returns the ID of the node of category placed on cell.
func (t *Tree) NodeAt(category string, cell hexgrid.Cell) (string, bool) {
	id, ok := t.cells[category][cell]
	return id, ok
}

// Reachable returns every node reachable from root by following links,
// root included. Selection plays no part.
func (t *Tree) Reachable(root string) reach.Set {
	seen := reach.NewSet()
	if !t.Has(root) {
		return seen
	}
	stack := []string{root}
	seen.Add(root)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range t.Links(cur) {
			if next == "" || seen.Has(next) || !t.Has(next) {
				continue
			}
			seen.Add(next)
			stack = append(stack, next)
		}
	}
	return seen
}

// Data returns the tree in its decoded form, suitable for [WriteJSON].
func (t *Tree) Data() Data {
	out := make(Data, len(t.categories))
	for name, cat := range t.categories {
		cd := CategoryData{Root: cat.Root, Nodes: make(map[string]NodeData, cat.Members.Len())}
		for id := range cat.Members {
			n := t.nodes[id]
			links := make([]*string, len(n.Links))
			for i, l := range n.Links {
				if l != "" {
					links[i] = &l
				}
			}
			cd.Nodes[id] = NodeData{
				Name:    n.Name,
				Desc:    n.Desc,
				Col:     n.Cell.Col,
				Row:     n.Cell.Row,
				Effects: slices.Clone(n.Effects),
				Links:   links,
			}
		}
		out[name] = cd
	}
	return out
}
