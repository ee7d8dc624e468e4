package reach

import (
	"errors"
	"fmt"
)

// ErrUnknownRoot is returned by [Classify] when the root is not a node of the graph.
var ErrUnknownRoot = errors.New("root node not in graph")

// Graph is the read-only adjacency view Classify walks.
type Graph interface {
	// Has reports whether id is a node of the graph.
	Has(id string) bool
	// Links returns the outgoing link targets of id in stored order.
	// Empty strings stand for absent targets and are skipped.
	Links(id string) []string
}

// Classification is the result of one classification pass.
type Classification struct {
	Active   Set
	Orphan   Set
	Possible Set
}

// State returns the display state of id.
func (c Classification) State(id string) NodeState {
	switch {
	case c.Orphan.Has(id):
		return Orphan
	case c.Possible.Has(id):
		return Possible
	case c.Active.Has(id):
		return Active
	default:
		return Inactive
	}
}

// Equal reports whether both classifications hold the same sets.
func (c Classification) Equal(other Classification) bool {
	return c.Active.Equal(other.Active) &&
		c.Orphan.Equal(other.Orphan) &&
		c.Possible.Equal(other.Possible)
}

// Classify partitions selection relative to root.
//
// Selected IDs that are not nodes of g are ignored. The selection itself is
// not modified. Classify returns ErrUnknownRoot if root is not in g.
func Classify(g Graph, selection Set, root string) (Classification, error) {
	if !g.Has(root) {
		return Classification{}, fmt.Errorf("%w: %q", ErrUnknownRoot, root)
	}

	remaining := make(Set, len(selection))
	for id := range selection {
		if g.Has(id) {
			remaining.Add(id)
		}
	}

	if !remaining.Has(root) {
		return Classification{
			Active:   Set{},
			Orphan:   remaining,
			Possible: NewSet(root),
		}, nil
	}

	visited := Set{}
	possible := Set{}
	queued := NewSet(root)
	stack := []string{root}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		queued.Remove(cur)

		visited.Add(cur)
		remaining.Remove(cur)

		for _, next := range g.Links(cur) {
			if next == "" || visited.Has(next) || queued.Has(next) {
				continue
			}
			if remaining.Has(next) {
				stack = append(stack, next)
				queued.Add(next)
			} else {
				possible.Add(next)
			}
		}
	}

	return Classification{
		Active:   visited,
		Orphan:   remaining,
		Possible: possible,
	}, nil
}

// Project narrows each set of c to the IDs in members.
func Project(c Classification, members Set) Classification {
	return Classification{
		Active:   c.Active.Intersect(members),
		Orphan:   c.Orphan.Intersect(members),
		Possible: c.Possible.Intersect(members),
	}
}
