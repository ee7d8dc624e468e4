package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/hexplanner/pkg/hexgrid"
	"github.com/matzehuels/hexplanner/pkg/observability"
	"github.com/matzehuels/hexplanner/pkg/reach"
	"github.com/matzehuels/hexplanner/pkg/skilltree"
)

// ErrUnknownCategory is returned when a category name is not part of the tree.
var ErrUnknownCategory = errors.New("unknown category")

// Snapshot is the result of the latest recompute.
type Snapshot struct {
	Category string
	Root     string

	// Selected is the number of selected nodes across all categories.
	Selected int

	// Classification covers the whole graph relative to Root.
	Classification reach.Classification

	// Visible is Classification projected onto the category's members.
	Visible reach.Classification

	// Effects counts effect tags over every active node.
	Effects reach.Effects
}

// State returns the display state of id within the snapshot's category.
// Nodes outside the category are always inactive.
func (s Snapshot) State(id string) reach.NodeState { return s.Visible.State(id) }

// Planner is the mutable state of one plan.
type Planner struct {
	tree  *skilltree.Tree
	grid  *hexgrid.Grid
	hooks observability.PlannerHooks

	selection reach.Set
	category  string
	snap      Snapshot
}

// Option configures a Planner.
type Option func(*Planner) error

// WithCategory sets the initial category. The default is the first category
// in name order.
func WithCategory(name string) Option {
	return func(p *Planner) error {
		if _, ok := p.tree.Category(name); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		p.category = name
		return nil
	}
}

// WithSelection seeds the selection. Unknown IDs are dropped.
func WithSelection(ids []string) Option {
	return func(p *Planner) error {
		p.selection = p.filter(ids)
		return nil
	}
}

// WithHooks overrides the hooks registered with [observability.SetPlannerHooks].
func WithHooks(h observability.PlannerHooks) Option {
	return func(p *Planner) error {
		if h != nil {
			p.hooks = h
		}
		return nil
	}
}

// New returns a planner over tree. grid resolves points for [Planner.ToggleAt]
// and may be nil when point input is not needed.
//
// New fails if a category root is missing from the tree.
func New(tree *skilltree.Tree, grid *hexgrid.Grid, opts ...Option) (*Planner, error) {
	if tree == nil {
		return nil, errors.New("planner: nil tree")
	}
	names := tree.Categories()
	if len(names) == 0 {
		return nil, skilltree.ErrEmptyTree
	}
	for _, name := range names {
		cat, _ := tree.Category(name)
		if !tree.Has(cat.Root) {
			return nil, fmt.Errorf("category %q: %w: %q", name, reach.ErrUnknownRoot, cat.Root)
		}
	}

	p := &Planner{
		tree:      tree,
		grid:      grid,
		hooks:     observability.Planner(),
		selection: reach.NewSet(),
		category:  names[0],
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.recompute()
	return p, nil
}

// Tree returns the tree the planner works on.
func (p *Planner) Tree() *skilltree.Tree { return p.tree }

// Grid returns the planner's grid, possibly nil.
func (p *Planner) Grid() *hexgrid.Grid { return p.grid }

// Category returns the current category name.
func (p *Planner) Category() string { return p.category }

// Snapshot returns the result of the latest recompute.
func (p *Planner) Snapshot() Snapshot { return p.snap }

// State returns the display state of id in the current category.
func (p *Planner) State(id string) reach.NodeState { return p.snap.State(id) }

// Selected reports whether id is selected.
func (p *Planner) Selected(id string) bool { return p.selection.Has(id) }

// Selection returns the selected IDs in ascending order.
func (p *Planner) Selection() []string { return p.selection.Sorted() }

// Toggle flips id in or out of the selection. IDs outside the current
// category are ignored. Toggle reports whether the selection changed.
func (p *Planner) Toggle(id string) bool {
	cat, _ := p.tree.Category(p.category)
	if id == "" || !cat.Members.Has(id) {
		return false
	}

	selected := !p.selection.Has(id)
	next := p.selection.Clone()
	if selected {
		next.Add(id)
	} else {
		next.Remove(id)
	}
	p.selection = next

	p.hooks.OnToggle(p.category, id, selected)
	p.recompute()
	return true
}

// ToggleCell toggles the node of the current category on cell, if any, and
// returns its ID.
func (p *Planner) ToggleCell(cell hexgrid.Cell) (string, bool) {
	id, ok := p.tree.NodeAt(p.category, cell)
	if !ok {
		return "", false
	}
	return id, p.Toggle(id)
}

// ToggleAt resolves pt to a cell through the planner's grid and toggles the
// node there. Points outside every cell are ignored.
func (p *Planner) ToggleAt(pt hexgrid.Point) (string, bool) {
	id, ok := p.NodeAt(pt)
	if !ok {
		return "", false
	}
	return id, p.Toggle(id)
}

// NodeAt returns the node of the current category under pt.
func (p *Planner) NodeAt(pt hexgrid.Point) (string, bool) {
	if p.grid == nil {
		return "", false
	}
	cell, ok := p.grid.CellAtPoint(pt)
	if !ok {
		return "", false
	}
	return p.tree.NodeAt(p.category, cell)
}

// SwitchCategory makes name the current category. The selection is kept.
func (p *Planner) SwitchCategory(name string) error {
	if _, ok := p.tree.Category(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	if name == p.category {
		return nil
	}
	prev := p.category
	p.category = name
	p.hooks.OnCategorySwitch(prev, name)
	p.recompute()
	return nil
}

// ClearCategory removes the current category's members from the selection.
func (p *Planner) ClearCategory() {
	cat, _ := p.tree.Category(p.category)
	p.selection = p.selection.Difference(cat.Members)
	p.recompute()
}

// ClearAll empties the selection.
func (p *Planner) ClearAll() {
	p.selection = reach.NewSet()
	p.recompute()
}

// Load replaces the selection with ids, dropping unknown ones.
func (p *Planner) Load(ids []string) {
	p.selection = p.filter(ids)
	p.recompute()
}

func (p *Planner) filter(ids []string) reach.Set {
	out := reach.NewSet()
	for _, id := range ids {
		if p.tree.Has(id) {
			out.Add(id)
		}
	}
	return out
}

// recompute rebuilds the snapshot from scratch.
func (p *Planner) recompute() {
	start := time.Now()
	cat, _ := p.tree.Category(p.category)

	// Roots were checked in New and the tree is immutable.
	c, _ := reach.Classify(p.tree, p.selection, cat.Root)

	p.snap = Snapshot{
		Category:       p.category,
		Root:           cat.Root,
		Selected:       p.selection.Len(),
		Classification: c,
		Visible:        reach.Project(c, cat.Members),
		Effects:        reach.Aggregate(p.tree, c.Active),
	}
	p.hooks.OnRecompute(p.category, c.Active.Len(), c.Orphan.Len(), c.Possible.Len(), time.Since(start))
}
