package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/hexplanner/pkg/cache"
	"github.com/matzehuels/hexplanner/pkg/errors"
	"github.com/matzehuels/hexplanner/pkg/hexgrid"
	"github.com/matzehuels/hexplanner/pkg/httputil"
	"github.com/matzehuels/hexplanner/pkg/metrics"
	"github.com/matzehuels/hexplanner/pkg/observability"
	"github.com/matzehuels/hexplanner/pkg/pipeline"
	"github.com/matzehuels/hexplanner/pkg/planner"
	"github.com/matzehuels/hexplanner/pkg/skilltree"
	"github.com/matzehuels/hexplanner/pkg/store"
	"github.com/matzehuels/hexplanner/pkg/style"
)

func ptr(s string) *string { return &s }

// Alpha: R -> A -> B, Beta: S -> T.
func testWorkspace(t *testing.T) *pipeline.Workspace {
	t.Helper()
	tree, err := skilltree.Build(skilltree.Data{
		"Alpha": {Root: "R", Nodes: map[string]skilltree.NodeData{
			"R": {Name: "Root", Col: 2, Row: 0, Effects: []string{"x"}, Links: []*string{ptr("A")}},
			"A": {Name: "Step", Col: 2, Row: 1, Effects: []string{"y"}, Links: []*string{ptr("B")}},
			"B": {Name: "Tip", Col: 3, Row: 2, Effects: []string{"z"}},
		}},
		"Beta": {Root: "S", Nodes: map[string]skilltree.NodeData{
			"S": {Name: "Start", Col: 2, Row: 0, Effects: []string{"w"}, Links: []*string{ptr("T")}},
			"T": {Name: "Then", Col: 2, Row: 1, Effects: []string{"x"}},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	grid := hexgrid.New(48, 16, hexgrid.Point{X: 0, Y: 160})
	ws, err := pipeline.NewWorkspace(tree, grid, style.Default(), 0, "")
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

type testServer struct {
	t  *testing.T
	ts *httptest.Server
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(fc, nil, nil)
	srv := New(testWorkspace(t), store.NewMemoryStore(), runner, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testServer{t: t, ts: ts}
}

func (s *testServer) do(method, path string, body any) (*http.Response, []byte) {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.ts.URL+path, r)
	if err != nil {
		s.t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func (s *testServer) plan(method, path string, body any, wantStatus int) planView {
	s.t.Helper()
	resp, data := s.do(method, path, body)
	if resp.StatusCode != wantStatus {
		s.t.Fatalf("%s %s = %d, want %d: %s", method, path, resp.StatusCode, wantStatus, data)
	}
	var v planView
	if err := json.Unmarshal(data, &v); err != nil {
		s.t.Fatalf("decode plan view: %v (%s)", err, data)
	}
	return v
}

func (s *testServer) errorCode(method, path string, body any, wantStatus int) errors.Code {
	s.t.Helper()
	resp, data := s.do(method, path, body)
	if resp.StatusCode != wantStatus {
		s.t.Fatalf("%s %s = %d, want %d: %s", method, path, resp.StatusCode, wantStatus, data)
	}
	var e httputil.ErrorBody
	if err := json.Unmarshal(data, &e); err != nil {
		s.t.Fatalf("decode error: %v (%s)", err, data)
	}
	return e.Error.Code
}

func TestHealthAndCategories(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do("GET", "/healthz", nil)
	if resp.StatusCode != 200 || !strings.Contains(string(body), "ok") {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}

	resp, body = s.do("GET", "/api/categories", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("categories = %d", resp.StatusCode)
	}
	var cats []categoryView
	if err := json.Unmarshal(body, &cats); err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0].Name != "Alpha" || cats[0].Root != "R" {
		t.Errorf("categories = %+v", cats)
	}
	if !slices.Equal(cats[0].Members, []string{"A", "B", "R"}) {
		t.Errorf("Alpha members = %v", cats[0].Members)
	}
}

func TestCell(t *testing.T) {
	s := newTestServer(t)
	grid := hexgrid.New(48, 16, hexgrid.Point{X: 0, Y: 160})
	c := grid.CellCenter(hexgrid.Cell{Col: 2, Row: 1})

	resp, body := s.do("GET", fmt.Sprintf("/api/cell?x=%v&y=%v&category=Beta", c.X, c.Y), nil)
	if resp.StatusCode != 200 {
		t.Fatalf("cell = %d %s", resp.StatusCode, body)
	}
	var v cellView
	json.Unmarshal(body, &v)
	if !v.Hit || v.Cell != (hexgrid.Cell{Col: 2, Row: 1}) || v.Node != "T" {
		t.Errorf("cell view = %+v", v)
	}

	// The padding gap between cells belongs to no cell.
	resp, body = s.do("GET", "/api/cell?x=88&y=208.5", nil)
	json.Unmarshal(body, &v)
	if resp.StatusCode != 200 || v.Hit {
		t.Errorf("gap lookup = %d %+v", resp.StatusCode, v)
	}

	if code := s.errorCode("GET", "/api/cell?x=abc&y=1", nil, 400); code != errors.ErrCodeInvalidInput {
		t.Errorf("code = %s", code)
	}
	if code := s.errorCode("GET", fmt.Sprintf("/api/cell?x=%v&y=%v&category=Nope", c.X, c.Y), nil, 404); code != errors.ErrCodeUnknownCategory {
		t.Errorf("code = %s", code)
	}
}

func TestPlanLifecycle(t *testing.T) {
	s := newTestServer(t)

	created := s.plan("POST", "/api/plans", createPlanRequest{Name: "mine", Category: "Alpha"}, http.StatusCreated)
	id := created.Plan.ID
	if created.Plan.Category != "Alpha" || len(created.Plan.Selected) != 0 {
		t.Fatalf("created = %+v", created.Plan)
	}
	if !slices.Equal(created.Possible, []string{"R"}) {
		t.Errorf("empty plan possible = %v, want [R]", created.Possible)
	}

	v := s.plan("POST", "/api/plans/"+id+"/toggle", toggleRequest{Node: "R"}, 200)
	if v.Toggled != "R" || !slices.Equal(v.Active, []string{"R"}) || !slices.Equal(v.Possible, []string{"A"}) {
		t.Errorf("after toggle R: %+v", v)
	}

	v = s.plan("POST", "/api/plans/"+id+"/toggle", toggleRequest{Node: "A"}, 200)
	if !slices.Equal(v.Active, []string{"A", "R"}) || v.Effects["x"] != 1 || v.Effects["y"] != 1 {
		t.Errorf("after toggle A: %+v", v)
	}

	// Deselecting the root orphans the rest.
	v = s.plan("POST", "/api/plans/"+id+"/toggle", toggleRequest{Node: "R"}, 200)
	if !slices.Equal(v.Orphan, []string{"A"}) || len(v.Active) != 0 {
		t.Errorf("after deselecting root: %+v", v)
	}

	// Nodes outside the current category are ignored.
	v = s.plan("POST", "/api/plans/"+id+"/toggle", toggleRequest{Node: "S"}, 200)
	if v.Toggled != "" || slices.Contains(v.Plan.Selected, "S") {
		t.Errorf("cross-category toggle should be a no-op: %+v", v)
	}

	got := s.plan("GET", "/api/plans/"+id, nil, 200)
	if !slices.Equal(got.Plan.Selected, []string{"A"}) {
		t.Errorf("persisted selection = %v", got.Plan.Selected)
	}

	resp, body := s.do("GET", "/api/plans", nil)
	var plans []*store.Plan
	json.Unmarshal(body, &plans)
	if resp.StatusCode != 200 || len(plans) != 1 || plans[0].ID != id {
		t.Errorf("list = %d %s", resp.StatusCode, body)
	}

	resp, _ = s.do("DELETE", "/api/plans/"+id, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete = %d", resp.StatusCode)
	}
	if code := s.errorCode("GET", "/api/plans/"+id, nil, 404); code != errors.ErrCodePlanNotFound {
		t.Errorf("code after delete = %s", code)
	}
}

func TestToggleByPoint(t *testing.T) {
	s := newTestServer(t)
	id := s.plan("POST", "/api/plans", createPlanRequest{Category: "Beta"}, 201).Plan.ID

	c := hexgrid.New(48, 16, hexgrid.Point{X: 0, Y: 160}).CellCenter(hexgrid.Cell{Col: 2, Row: 0})
	v := s.plan("POST", "/api/plans/"+id+"/toggle", toggleRequest{X: &c.X, Y: &c.Y}, 200)
	if v.Toggled != "S" || !slices.Equal(v.Active, []string{"S"}) {
		t.Errorf("point toggle = %+v", v)
	}

	gx, gy := 88.0, 208.5
	v = s.plan("POST", "/api/plans/"+id+"/toggle", toggleRequest{X: &gx, Y: &gy}, 200)
	if v.Toggled != "" || !slices.Equal(v.Active, []string{"S"}) {
		t.Errorf("miss should not change the plan: %+v", v)
	}
}

func TestCategoryAndClear(t *testing.T) {
	s := newTestServer(t)
	id := s.plan("POST", "/api/plans", createPlanRequest{Category: "Alpha", Selected: []string{"R", "A", "S"}}, 201).Plan.ID

	v := s.plan("POST", "/api/plans/"+id+"/category", categoryRequest{Category: "Beta"}, 200)
	if v.Plan.Category != "Beta" || !slices.Equal(v.Active, []string{"S"}) {
		t.Errorf("after switch: %+v", v)
	}
	if code := s.errorCode("POST", "/api/plans/"+id+"/category", categoryRequest{Category: "Gamma"}, 404); code != errors.ErrCodeUnknownCategory {
		t.Errorf("code = %s", code)
	}

	v = s.plan("POST", "/api/plans/"+id+"/clear", clearRequest{}, 200)
	if !slices.Equal(v.Plan.Selected, []string{"A", "R"}) {
		t.Errorf("clear section left %v, want Alpha's nodes", v.Plan.Selected)
	}

	v = s.plan("POST", "/api/plans/"+id+"/clear", clearRequest{All: true}, 200)
	if len(v.Plan.Selected) != 0 {
		t.Errorf("clear all left %v", v.Plan.Selected)
	}
}

func TestOverview(t *testing.T) {
	s := newTestServer(t)
	id := s.plan("POST", "/api/plans", createPlanRequest{Selected: []string{"R", "A", "S", "T"}}, 201).Plan.ID

	resp, body := s.do("GET", "/api/plans/"+id+"/overview", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("overview = %d %s", resp.StatusCode, body)
	}
	var ov planner.Overview
	if err := json.Unmarshal(body, &ov); err != nil {
		t.Fatal(err)
	}
	if len(ov.Categories) != 2 || ov.Effects["x"] != 2 || ov.Effects["w"] != 1 {
		t.Errorf("overview = %+v", ov)
	}
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   errors.Code
	}{
		{"bad plan id", "GET", "/api/plans/bad.id", nil, 400, errors.ErrCodeInvalidPlanID},
		{"missing plan", "GET", "/api/plans/nope", nil, 404, errors.ErrCodePlanNotFound},
		{"unknown category", "POST", "/api/plans", createPlanRequest{Category: "Gamma"}, 404, errors.ErrCodeUnknownCategory},
		{"unknown field", "POST", "/api/plans", map[string]any{"colour": "red"}, 400, errors.ErrCodeInvalidInput},
		{"empty toggle", "POST", "/api/plans/nope/toggle", toggleRequest{}, 400, errors.ErrCodeInvalidInput},
		{"toggle missing plan", "POST", "/api/plans/nope/toggle", toggleRequest{Node: "R"}, 404, errors.ErrCodePlanNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := s.errorCode(tt.method, tt.path, tt.body, tt.status); code != tt.code {
				t.Errorf("code = %s, want %s", code, tt.code)
			}
		})
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t)
	id := s.plan("POST", "/api/plans", createPlanRequest{Category: "Alpha", Selected: []string{"R"}}, 201).Plan.ID

	resp, body := s.do("GET", "/api/plans/"+id+"/render.svg?status=true", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("render = %d %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	if resp.Header.Get("X-Cache") != "MISS" || !strings.Contains(string(body), `id="node-R"`) {
		t.Errorf("first render: cache %s", resp.Header.Get("X-Cache"))
	}

	resp, _ = s.do("GET", "/api/plans/"+id+"/render.svg?status=true", nil)
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Errorf("second render should hit the cache")
	}

	resp, body = s.do("GET", "/api/plans/"+id+"/render.dot?renderer=nodelink", nil)
	if resp.StatusCode != 200 || !strings.HasPrefix(string(body), "digraph") {
		t.Errorf("dot render = %d %.30s", resp.StatusCode, body)
	}

	if code := s.errorCode("GET", "/api/plans/"+id+"/render.gif", nil, 400); code != errors.ErrCodeInvalidFormat {
		t.Errorf("gif code = %s", code)
	}
	if code := s.errorCode("GET", "/api/plans/"+id+"/render.dot", nil, 501); code != errors.ErrCodeUnsupported {
		t.Errorf("hexmap dot code = %s", code)
	}
}

func TestConcurrentToggles(t *testing.T) {
	s := newTestServer(t)
	id := s.plan("POST", "/api/plans", createPlanRequest{Category: "Alpha"}, 201).Plan.ID

	// Toggling R an even number of times must leave it unselected.
	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, _ := json.Marshal(toggleRequest{Node: "R"})
			resp, err := http.Post(s.ts.URL+"/api/plans/"+id+"/toggle", "application/json", bytes.NewReader(data))
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	v := s.plan("GET", "/api/plans/"+id, nil, 200)
	if len(v.Plan.Selected) != 0 {
		t.Errorf("selection after %d toggles = %v, want empty", n, v.Plan.Selected)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Cleanup(observability.Reset)
	m := metrics.New()
	m.Install()
	s := newTestServer(t, WithMetrics(m.Handler()))

	s.do("GET", "/healthz", nil)
	resp, body := s.do("GET", "/metrics", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("metrics = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `route="/healthz"`) {
		t.Error("metrics should include the healthz request")
	}
}
