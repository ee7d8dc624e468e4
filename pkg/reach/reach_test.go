package reach

import (
	"errors"
	"math/rand"
	"reflect"
	"strconv"
	"testing"
)

// mapGraph is an adjacency list keyed by node ID.
type mapGraph map[string][]string

func (g mapGraph) Has(id string) bool       { _, ok := g[id]; return ok }
func (g mapGraph) Links(id string) []string { return g[id] }

type mapEffects map[string][]string

func (m mapEffects) Effects(id string) []string { return m[id] }

func chain() mapGraph {
	return mapGraph{"R": {"A"}, "A": {"B"}, "B": nil}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		graph    mapGraph
		sel      Set
		active   []string
		orphan   []string
		possible []string
	}{
		{
			name:     "connected prefix",
			graph:    chain(),
			sel:      NewSet("R", "A"),
			active:   []string{"A", "R"},
			possible: []string{"B"},
		},
		{
			name:     "root not selected",
			graph:    chain(),
			sel:      NewSet("A"),
			orphan:   []string{"A"},
			possible: []string{"R"},
		},
		{
			name:     "gap in chain",
			graph:    chain(),
			sel:      NewSet("R", "B"),
			active:   []string{"R"},
			orphan:   []string{"B"},
			possible: []string{"A"},
		},
		{
			name:     "empty selection",
			graph:    chain(),
			sel:      NewSet(),
			possible: []string{"R"},
		},
		{
			name:     "unknown ids are dropped",
			graph:    chain(),
			sel:      NewSet("R", "ghost"),
			active:   []string{"R"},
			possible: []string{"A"},
		},
		{
			name:     "empty link targets are skipped",
			graph:    mapGraph{"R": {"", "A", ""}, "A": nil},
			sel:      NewSet("R"),
			active:   []string{"R"},
			possible: []string{"A"},
		},
		{
			name:     "cycle back to root",
			graph:    mapGraph{"R": {"A"}, "A": {"B", "R"}, "B": {"R"}},
			sel:      NewSet("R", "A", "B"),
			active:   []string{"A", "B", "R"},
		},
		{
			name:     "links are directed",
			graph:    mapGraph{"R": nil, "A": {"R"}},
			sel:      NewSet("R", "A"),
			active:   []string{"R"},
			orphan:   []string{"A"},
		},
		{
			name:     "diamond shares a possible node",
			graph:    mapGraph{"R": {"A", "B"}, "A": {"C"}, "B": {"C"}, "C": nil},
			sel:      NewSet("R", "A", "B"),
			active:   []string{"A", "B", "R"},
			possible: []string{"C"},
		},
		{
			name:     "cross category link",
			graph:    mapGraph{"R": {"x1"}, "x1": {"x2"}, "x2": nil, "S": {"x2"}},
			sel:      NewSet("R", "x1", "S"),
			active:   []string{"R", "x1"},
			orphan:   []string{"S"},
			possible: []string{"x2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.graph, tt.sel, "R")
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			check := func(label string, s Set, want []string) {
				t.Helper()
				if want == nil {
					want = []string{}
				}
				if got := s.Sorted(); !reflect.DeepEqual(got, want) {
					t.Errorf("%s = %v, want %v", label, got, want)
				}
			}
			check("active", got.Active, tt.active)
			check("orphan", got.Orphan, tt.orphan)
			check("possible", got.Possible, tt.possible)
		})
	}
}

func TestClassifyUnknownRoot(t *testing.T) {
	_, err := Classify(chain(), NewSet("R"), "Z")
	if !errors.Is(err, ErrUnknownRoot) {
		t.Fatalf("err = %v, want ErrUnknownRoot", err)
	}
}

func TestClassifyLeavesSelectionUntouched(t *testing.T) {
	sel := NewSet("R", "A", "ghost")
	if _, err := Classify(chain(), sel, "R"); err != nil {
		t.Fatal(err)
	}
	if !sel.Equal(NewSet("R", "A", "ghost")) {
		t.Errorf("selection mutated: %v", sel.Sorted())
	}
}

// randomGraph builds n nodes with up to three random outgoing links each.
func randomGraph(rng *rand.Rand, n int) mapGraph {
	g := make(mapGraph, n)
	for i := range n {
		var links []string
		for range rng.Intn(4) {
			if rng.Intn(6) == 0 {
				links = append(links, "")
				continue
			}
			links = append(links, strconv.Itoa(rng.Intn(n)))
		}
		g[strconv.Itoa(i)] = links
	}
	return g
}

func TestClassifyInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := range 300 {
		g := randomGraph(rng, 2+rng.Intn(30))
		sel := NewSet()
		for id := range g {
			if rng.Intn(2) == 0 {
				sel.Add(id)
			}
		}
		sel.Add("missing")

		got, err := Classify(g, sel, "0")
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}

		filtered := sel.Clone()
		filtered.Remove("missing")

		if n := got.Active.Intersect(got.Orphan).Len(); n != 0 {
			t.Errorf("trial %d: active and orphan overlap by %d", trial, n)
		}
		if !got.Active.Union(got.Orphan).Equal(filtered) {
			t.Errorf("trial %d: active ∪ orphan = %v, want %v",
				trial, got.Active.Union(got.Orphan).Sorted(), filtered.Sorted())
		}
		if n := got.Possible.Intersect(sel).Len(); n != 0 {
			t.Errorf("trial %d: possible contains %d selected ids", trial, n)
		}
		if !filtered.Has("0") {
			if got.Active.Len() != 0 || !got.Possible.Equal(NewSet("0")) {
				t.Errorf("trial %d: root unselected but active=%v possible=%v",
					trial, got.Active.Sorted(), got.Possible.Sorted())
			}
		}

		again, _ := Classify(g, sel, "0")
		if !again.Equal(got) {
			t.Errorf("trial %d: second pass differs", trial)
		}
	}
}

func TestClassificationState(t *testing.T) {
	c, err := Classify(chain(), NewSet("R", "B"), "R")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]NodeState{
		"R":     Active,
		"A":     Possible,
		"B":     Orphan,
		"other": Inactive,
	}
	for id, st := range want {
		if got := c.State(id); got != st {
			t.Errorf("State(%q) = %v, want %v", id, got, st)
		}
	}
}

func TestProject(t *testing.T) {
	c := Classification{
		Active:   NewSet("R", "x1"),
		Orphan:   NewSet("S"),
		Possible: NewSet("A", "x2"),
	}
	got := Project(c, NewSet("R", "A", "S"))

	want := Classification{
		Active:   NewSet("R"),
		Orphan:   NewSet("S"),
		Possible: NewSet("A"),
	}
	if !got.Equal(want) {
		t.Errorf("Project() = %+v, want %+v", got, want)
	}
	if !c.Active.Equal(NewSet("R", "x1")) {
		t.Error("Project mutated its input")
	}
}

func TestAggregate(t *testing.T) {
	src := mapEffects{
		"R": {"X", "X", "Y"},
		"A": {"Y", "Z"},
		"B": {"X"},
	}

	tests := []struct {
		name   string
		active Set
		want   Effects
	}{
		{"duplicates count individually", NewSet("R"), Effects{"X": 2, "Y": 1}},
		{"sums across nodes", NewSet("R", "A"), Effects{"X": 2, "Y": 2, "Z": 1}},
		{"empty", NewSet(), Effects{}},
		{"node without effects", NewSet("nobody"), Effects{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(src, tt.active); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Aggregate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEffectsHelpers(t *testing.T) {
	e := Effects{"b": 1, "a": 2}
	e.Add(Effects{"a": 1, "c": 4})

	if got, want := e.Tags(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Tags() = %v, want %v", got, want)
	}
	if got := e.Total(); got != 8 {
		t.Errorf("Total() = %d, want 8", got)
	}
}

func TestParseState(t *testing.T) {
	for _, st := range []NodeState{Inactive, Active, Orphan, Possible} {
		got, err := ParseState(st.String())
		if err != nil || got != st {
			t.Errorf("ParseState(%q) = %v, %v", st.String(), got, err)
		}
	}
	if got, err := ParseState("orphaned"); err != nil || got != Orphan {
		t.Errorf("ParseState(orphaned) = %v, %v", got, err)
	}
	if _, err := ParseState("glowing"); err == nil {
		t.Error("ParseState(glowing) succeeded")
	}
	if got := NodeState(42).String(); got != "NodeState(42)" {
		t.Errorf("String() = %q", got)
	}
}
