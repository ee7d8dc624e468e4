package planner

import "github.com/matzehuels/hexplanner/pkg/reach"

// CategorySummary is the state of one category classified against its own root.
type CategorySummary struct {
	Name     string        `json:"name"`
	Root     string        `json:"root"`
	Selected int           `json:"selected"`
	Active   int           `json:"active"`
	Orphan   int           `json:"orphan"`
	Possible int           `json:"possible"`
	Effects  reach.Effects `json:"effects"`
}

// Overview summarizes every category of a plan.
type Overview struct {
	Categories []CategorySummary `json:"categories"`
	// Effects sums the effects of all categories.
	Effects reach.Effects `json:"effects"`
}

// Overview classifies the selection against each category's root in turn.
// Only members of a category count toward its summary, so nodes are never
// counted twice. The current category and snapshot are left unchanged.
func (p *Planner) Overview() Overview {
	out := Overview{Effects: reach.Effects{}}
	for _, name := range p.tree.Categories() {
		cat, _ := p.tree.Category(name)
		c, _ := reach.Classify(p.tree, p.selection, cat.Root)
		v := reach.Project(c, cat.Members)
		eff := reach.Aggregate(p.tree, v.Active)

		out.Categories = append(out.Categories, CategorySummary{
			Name:     name,
			Root:     cat.Root,
			Selected: p.selection.Intersect(cat.Members).Len(),
			Active:   v.Active.Len(),
			Orphan:   v.Orphan.Len(),
			Possible: v.Possible.Len(),
			Effects:  eff,
		})
		out.Effects.Add(eff)
	}
	return out
}
