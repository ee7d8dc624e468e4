package planner

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/hexplanner/pkg/hexgrid"
	"github.com/matzehuels/hexplanner/pkg/observability"
	"github.com/matzehuels/hexplanner/pkg/reach"
	"github.com/matzehuels/hexplanner/pkg/skilltree"
)

func ptr(s string) *string { return &s }

// testTree has two categories. Alpha is the chain R -> A -> B with B
// linking into Beta; Beta is S -> T.
func testTree(t *testing.T) *skilltree.Tree {
	t.Helper()
	tree, err := skilltree.Build(skilltree.Data{
		"Alpha": {Root: "R", Nodes: map[string]skilltree.NodeData{
			"R": {Name: "Root", Col: 2, Row: 0, Effects: []string{"X", "X", "Y"}, Links: []*string{ptr("A"), nil}},
			"A": {Name: "A", Col: 2, Row: 1, Effects: []string{"Y"}, Links: []*string{ptr("B")}},
			"B": {Name: "B", Col: 3, Row: 2, Effects: []string{"Z"}, Links: []*string{ptr("T")}},
		}},
		"Beta": {Root: "S", Nodes: map[string]skilltree.NodeData{
			"S": {Name: "S", Col: 2, Row: 0, Effects: []string{"W"}, Links: []*string{ptr("T")}},
			"T": {Name: "T", Col: 2, Row: 1, Effects: []string{"X"}},
		}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func testGrid() *hexgrid.Grid { return hexgrid.New(48, 16, hexgrid.Point{X: 0, Y: 160}) }

func newPlanner(t *testing.T, opts ...Option) *Planner {
	t.Helper()
	p, err := New(testTree(t), testGrid(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func sorted(s reach.Set) []string {
	if s.Len() == 0 {
		return nil
	}
	return s.Sorted()
}

func TestNewDefaults(t *testing.T) {
	p := newPlanner(t)
	if p.Category() != "Alpha" {
		t.Errorf("Category() = %q, want Alpha", p.Category())
	}
	snap := p.Snapshot()
	if snap.Root != "R" || snap.Selected != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
	if got := sorted(snap.Visible.Possible); !reflect.DeepEqual(got, []string{"R"}) {
		t.Errorf("possible = %v, want [R]", got)
	}
}

func TestNewOptions(t *testing.T) {
	p := newPlanner(t, WithCategory("Beta"), WithSelection([]string{"S", "ghost", "R"}))
	if p.Category() != "Beta" {
		t.Errorf("Category() = %q", p.Category())
	}
	if got := p.Selection(); !reflect.DeepEqual(got, []string{"R", "S"}) {
		t.Errorf("Selection() = %v", got)
	}

	_, err := New(testTree(t), nil, WithCategory("Gamma"))
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("New(WithCategory(Gamma)) error = %v", err)
	}
	if _, err := New(nil, nil); err == nil {
		t.Error("New(nil) succeeded")
	}
}

func TestToggleScenarios(t *testing.T) {
	tests := []struct {
		name     string
		toggles  []string
		active   []string
		orphan   []string
		possible []string
		effects  reach.Effects
	}{
		{"connected prefix", []string{"R", "A"}, []string{"A", "R"}, nil, []string{"B"}, reach.Effects{"X": 2, "Y": 2}},
		{"root not selected", []string{"A"}, nil, []string{"A"}, []string{"R"}, reach.Effects{}},
		{"gap in chain", []string{"R", "B"}, []string{"R"}, []string{"B"}, []string{"A"}, reach.Effects{"X": 2, "Y": 1}},
		{"toggle off again", []string{"R", "A", "A"}, []string{"R"}, nil, []string{"A"}, reach.Effects{"X": 2, "Y": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlanner(t)
			for _, id := range tt.toggles {
				if !p.Toggle(id) {
					t.Fatalf("Toggle(%q) = false", id)
				}
			}
			snap := p.Snapshot()
			if got := sorted(snap.Visible.Active); !reflect.DeepEqual(got, tt.active) {
				t.Errorf("active = %v, want %v", got, tt.active)
			}
			if got := sorted(snap.Visible.Orphan); !reflect.DeepEqual(got, tt.orphan) {
				t.Errorf("orphan = %v, want %v", got, tt.orphan)
			}
			if got := sorted(snap.Visible.Possible); !reflect.DeepEqual(got, tt.possible) {
				t.Errorf("possible = %v, want %v", got, tt.possible)
			}
			if !reflect.DeepEqual(snap.Effects, tt.effects) {
				t.Errorf("effects = %v, want %v", snap.Effects, tt.effects)
			}
		})
	}
}

func TestToggleIgnoresOtherCategories(t *testing.T) {
	p := newPlanner(t)
	before := p.Snapshot()

	for _, id := range []string{"S", "ghost", ""} {
		if p.Toggle(id) {
			t.Errorf("Toggle(%q) changed the selection", id)
		}
	}
	if p.Snapshot().Selected != before.Selected {
		t.Error("selection changed")
	}
}

func TestCrossCategoryProjection(t *testing.T) {
	p := newPlanner(t)
	for _, id := range []string{"R", "A", "B"} {
		p.Toggle(id)
	}

	snap := p.Snapshot()
	if !snap.Classification.Possible.Has("T") {
		t.Error("T should be possible in the full classification")
	}
	if snap.Visible.Possible.Has("T") {
		t.Error("T belongs to Beta and should not be visible in Alpha")
	}
	if got := p.State("T"); got != reach.Inactive {
		t.Errorf("State(T) = %v, want inactive", got)
	}
}

func TestSwitchCategoryKeepsSelection(t *testing.T) {
	p := newPlanner(t)
	p.Toggle("R")

	if err := p.SwitchCategory("Beta"); err != nil {
		t.Fatal(err)
	}
	if !p.Toggle("S") {
		t.Fatal("Toggle(S) in Beta failed")
	}
	if got := p.Selection(); !reflect.DeepEqual(got, []string{"R", "S"}) {
		t.Errorf("Selection() = %v", got)
	}
	if got := p.State("S"); got != reach.Active {
		t.Errorf("State(S) = %v, want active", got)
	}
	if got := p.State("R"); got != reach.Inactive {
		t.Errorf("State(R) in Beta = %v, want inactive", got)
	}

	err := p.SwitchCategory("Gamma")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("SwitchCategory(Gamma) = %v", err)
	}
	if p.Category() != "Beta" {
		t.Error("failed switch changed the category")
	}
}

func TestClear(t *testing.T) {
	p := newPlanner(t, WithSelection([]string{"R", "A", "S"}))

	p.ClearCategory()
	if got := p.Selection(); !reflect.DeepEqual(got, []string{"S"}) {
		t.Errorf("after ClearCategory: %v", got)
	}
	p.ClearAll()
	if got := p.Selection(); len(got) != 0 {
		t.Errorf("after ClearAll: %v", got)
	}
	if p.Snapshot().Selected != 0 {
		t.Error("snapshot not recomputed")
	}
}

func TestLoadFiltersUnknownIDs(t *testing.T) {
	p := newPlanner(t)
	p.Load([]string{"R", "nope", "A"})
	if got := p.Selection(); !reflect.DeepEqual(got, []string{"A", "R"}) {
		t.Errorf("Selection() = %v", got)
	}
	if got := p.State("A"); got != reach.Active {
		t.Errorf("State(A) = %v", got)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	p := newPlanner(t)
	p.Toggle("R")
	old := p.Snapshot()
	p.Toggle("A")

	if old.Classification.Active.Has("A") {
		t.Error("earlier snapshot was patched in place")
	}
}

func TestToggleAt(t *testing.T) {
	p := newPlanner(t)
	g := testGrid()

	id, ok := p.ToggleAt(g.CellCenter(hexgrid.Cell{Col: 2, Row: 1}))
	if !ok || id != "A" {
		t.Errorf("ToggleAt(center of A) = %q, %v", id, ok)
	}
	if _, ok := p.ToggleAt(g.CellCenter(hexgrid.Cell{Col: 9, Row: 9})); ok {
		t.Error("empty cell toggled something")
	}
	if _, ok := p.ToggleAt(hexgrid.Point{X: 88, Y: 208.5}); ok {
		t.Error("padding toggled something")
	}

	id, ok = p.ToggleCell(hexgrid.Cell{Col: 2, Row: 0})
	if !ok || id != "R" {
		t.Errorf("ToggleCell((2, 0)) = %q, %v", id, ok)
	}

	noGrid, _ := New(testTree(t), nil)
	if _, ok := noGrid.ToggleAt(hexgrid.Point{}); ok {
		t.Error("planner without grid resolved a point")
	}
}

func TestOverview(t *testing.T) {
	p := newPlanner(t, WithSelection([]string{"R", "A", "S", "T"}))
	ov := p.Overview()

	want := []CategorySummary{
		{Name: "Alpha", Root: "R", Selected: 2, Active: 2, Possible: 1, Effects: reach.Effects{"X": 2, "Y": 2}},
		{Name: "Beta", Root: "S", Selected: 2, Active: 2, Effects: reach.Effects{"W": 1, "X": 1}},
	}
	if !reflect.DeepEqual(ov.Categories, want) {
		t.Errorf("Categories = %+v\nwant %+v", ov.Categories, want)
	}
	if want := (reach.Effects{"W": 1, "X": 3, "Y": 2}); !reflect.DeepEqual(ov.Effects, want) {
		t.Errorf("Effects = %v, want %v", ov.Effects, want)
	}
	if p.Category() != "Alpha" {
		t.Error("Overview changed the category")
	}
}

func TestEffectsAcrossCategories(t *testing.T) {
	// T is only reachable from Alpha through B.
	p := newPlanner(t, WithSelection([]string{"R", "A", "B", "T"}))

	tests := []struct {
		name string
		got  reach.Effects
		want reach.Effects
	}{
		{"snapshot", p.Snapshot().Effects, reach.Effects{"X": 3, "Y": 2, "Z": 1}},
		{"overview alpha", p.Overview().Categories[0].Effects, reach.Effects{"X": 2, "Y": 2, "Z": 1}},
	}
	for _, tt := range tests {
		if !reflect.DeepEqual(tt.got, tt.want) {
			t.Errorf("%s effects = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

type recordingHooks struct {
	mu       sync.Mutex
	toggles  []string
	switches []string
	passes   int
}

func (h *recordingHooks) OnToggle(category, id string, selected bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state := "off"
	if selected {
		state = "on"
	}
	h.toggles = append(h.toggles, category+"/"+id+"="+state)
}

func (h *recordingHooks) OnRecompute(string, int, int, int, time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.passes++
}

func (h *recordingHooks) OnCategorySwitch(from, to string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.switches = append(h.switches, from+">"+to)
}

func TestHooks(t *testing.T) {
	h := &recordingHooks{}
	p := newPlanner(t, WithHooks(h))
	p.Toggle("R")
	p.Toggle("R")
	_ = p.SwitchCategory("Beta")
	_ = p.SwitchCategory("Beta")

	if want := []string{"Alpha/R=on", "Alpha/R=off"}; !reflect.DeepEqual(h.toggles, want) {
		t.Errorf("toggles = %v, want %v", h.toggles, want)
	}
	if want := []string{"Alpha>Beta"}; !reflect.DeepEqual(h.switches, want) {
		t.Errorf("switches = %v, want %v", h.switches, want)
	}
	if h.passes != 4 {
		t.Errorf("recompute passes = %d, want 4", h.passes)
	}
}

func TestRegisteredHooksAreDefault(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPlannerHooks(h)
	t.Cleanup(observability.Reset)

	p := newPlanner(t)
	p.Toggle("R")
	if len(h.toggles) != 1 {
		t.Errorf("registered hooks saw %d toggles, want 1", len(h.toggles))
	}
}
