package reach

import (
	"maps"
	"slices"
)

// EffectSource yields the effect tags carried by a node.
type EffectSource interface {
	Effects(id string) []string
}

// Effects maps an effect tag to the number of active nodes carrying it,
// counting duplicate tags on one node individually.
type Effects map[string]int

// Aggregate counts effect tags over every node in active.
func Aggregate(src EffectSource, active Set) Effects {
	out := Effects{}
	for id := range active {
		for _, tag := range src.Effects(id) {
			out[tag]++
		}
	}
	return out
}

// Add merges the counts of other into e.
func (e Effects) Add(other Effects) {
	for tag, n := range other {
		e[tag] += n
	}
}

// Tags returns the effect tags in ascending order.
func (e Effects) Tags() []string { return slices.Sorted(maps.Keys(e)) }

// Total returns the sum of all counts.
func (e Effects) Total() int {
	n := 0
	for _, c := range e {
		n += c
	}
	return n
}
