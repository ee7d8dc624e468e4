package hexmap

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/hexplanner/pkg/hexgrid"
	"github.com/matzehuels/hexplanner/pkg/planner"
	"github.com/matzehuels/hexplanner/pkg/reach"
	"github.com/matzehuels/hexplanner/pkg/skilltree"
	"github.com/matzehuels/hexplanner/pkg/style"
)

func ptr(s string) *string { return &s }

func testScene(t *testing.T, selected ...string) Scene {
	t.Helper()
	tree, err := skilltree.Build(skilltree.Data{
		"Alpha": {Root: "R", Nodes: map[string]skilltree.NodeData{
			"R": {Name: "Weapon Cooling", Col: 2, Row: 0, Effects: []string{"heat"}, Links: []*string{ptr("A"), nil}},
			"A": {Name: "Range", Col: 2, Row: 1, Effects: []string{"range"}, Links: []*string{ptr("B"), ptr("gone")}},
			"B": {Name: "Heat <Gen>", Desc: "Less & less heat", Col: 3, Row: 1, Links: []*string{ptr("S")}},
		}},
		"Beta": {Root: "S", Nodes: map[string]skilltree.NodeData{
			"S": {Name: "Shields", Col: 8, Row: 0},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	grid := hexgrid.New(48, 16, hexgrid.Point{X: 0, Y: 160})
	p, err := planner.New(tree, grid, planner.WithSelection(selected))
	if err != nil {
		t.Fatal(err)
	}
	return Build(tree, grid, p.Snapshot())
}

func TestBuild(t *testing.T) {
	sc := testScene(t, "R", "B")

	if sc.Category != "Alpha" || len(sc.Cells) != 3 {
		t.Fatalf("scene = %q with %d cells", sc.Category, len(sc.Cells))
	}

	// Paint order: inactive, active, possible, orphan.
	var order []string
	for _, c := range sc.Cells {
		order = append(order, c.ID+":"+c.State.String())
	}
	if got, want := strings.Join(order, " "), "R:active A:possible B:orphan"; got != want {
		t.Errorf("cell order = %s, want %s", got, want)
	}

	// R->A, A->B and the cross-category B->S; the dangling A->gone is dropped.
	if len(sc.Links) != 3 {
		t.Errorf("links = %d, want 3", len(sc.Links))
	}
	for _, l := range sc.Links {
		if l.State != reach.Inactive {
			t.Errorf("link %s->%s = %v, want inactive", l.From, l.To, l.State)
		}
	}

	if sc.Width <= 0 || sc.Height <= 0 {
		t.Errorf("size = %vx%v", sc.Width, sc.Height)
	}
	if sc.Count(reach.Orphan) != 1 || sc.Count(reach.Inactive) != 0 {
		t.Errorf("counts: orphan=%d inactive=%d", sc.Count(reach.Orphan), sc.Count(reach.Inactive))
	}
}

func TestBuildActiveLinks(t *testing.T) {
	sc := testScene(t, "R", "A")
	active := 0
	for _, l := range sc.Links {
		if l.State == reach.Active {
			active++
			if l.From != "R" || l.To != "A" {
				t.Errorf("unexpected active link %s->%s", l.From, l.To)
			}
		}
	}
	if active != 1 {
		t.Errorf("active links = %d, want 1", active)
	}
}

func TestRenderSVG(t *testing.T) {
	sc := testScene(t, "R")
	tbl := style.Default()
	svg := string(RenderSVG(sc, WithStyle(tbl), WithStatus()))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		`id="node-R" class="cell active"`,
		`fill="` + tbl.Cell.Get(reach.Active) + `"`,
		`id="node-A" class="cell possible"`,
		`>Weapon<`,
		`>Cooling<`,
		`Heat &lt;Gen&gt;`,
		`<title>Less &amp; less heat</title>`,
		`class="status"`,
		"1 selected",
		"heat ×1",
		"</svg>",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, `node-S`) {
		t.Error("SVG contains a node from another category")
	}
}

func TestRenderSVGMargin(t *testing.T) {
	sc := testScene(t)
	tight := string(RenderSVG(sc, WithMargin(0)))
	if !strings.Contains(tight, `viewBox="`) {
		t.Fatal("no viewBox")
	}
	if strings.Contains(tight, `class="status"`) {
		t.Error("status rendered without WithStatus")
	}
}

func TestRenderJSON(t *testing.T) {
	sc := testScene(t, "R", "A")
	data, err := RenderJSON(sc)
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Category string `json:"category"`
		Cells    []struct {
			ID    string   `json:"id"`
			State string   `json:"state"`
			Lines []string `json:"lines"`
		} `json:"cells"`
		Effects map[string]int `json:"effects"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Category != "Alpha" || len(out.Cells) != 3 {
		t.Fatalf("decoded = %+v", out)
	}
	states := map[string]string{}
	for _, c := range out.Cells {
		states[c.ID] = c.State
	}
	if states["R"] != "active" || states["B"] != "possible" {
		t.Errorf("states = %v", states)
	}
	if out.Effects["range"] != 1 {
		t.Errorf("effects = %v", out.Effects)
	}
}
