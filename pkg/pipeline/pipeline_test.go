package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/hexplanner/pkg/cache"
	"github.com/matzehuels/hexplanner/pkg/config"
	"github.com/matzehuels/hexplanner/pkg/errors"
	"github.com/matzehuels/hexplanner/pkg/observability"
	"github.com/matzehuels/hexplanner/pkg/reach"
	"github.com/matzehuels/hexplanner/pkg/render"
	"github.com/matzehuels/hexplanner/pkg/render/hexmap"
)

const testTree = `{
  "Firepower": {
    "root": "0",
    "nodes": {
      "0": {"name": "Weapon Cooling", "col": 3, "row": 0, "effects": ["heat"], "links": ["1", "2"]},
      "1": {"name": "Range", "col": 3, "row": 1, "effects": ["range"], "links": ["3"]},
      "2": {"name": "Velocity", "col": 4, "row": 1, "effects": ["velocity"]},
      "3": {"name": "Heat Gen", "col": 3, "row": 2, "effects": ["heat"]}
    }
  },
  "Survival": {
    "root": "10",
    "nodes": {
      "10": {"name": "Armor", "col": 3, "row": 0, "effects": ["armor"], "links": ["11"]},
      "11": {"name": "Shock", "col": 3, "row": 1, "effects": ["fall"]}
    }
  }
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.json")
	if err := os.WriteFile(path, []byte(testTree), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Data.Tree = path
	return cfg
}

func testWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := LoadWorkspace(testConfig(t))
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}
	return ws
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
	}{
		{"defaults", Options{}, ""},
		{"nodelink dot", Options{Renderer: RendererNodelink, Format: render.FormatDOT}, ""},
		{"hexmap json", Options{Format: render.FormatJSON}, ""},
		{"unknown renderer", Options{Renderer: "tower"}, errors.ErrCodeInvalidInput},
		{"unknown format", Options{Format: "gif"}, errors.ErrCodeInvalidFormat},
		{"negative scale", Options{Scale: -2}, errors.ErrCodeInvalidInput},
		{"hexmap dot", Options{Format: render.FormatDOT}, errors.ErrCodeUnsupported},
		{"nodelink json", Options{Renderer: RendererNodelink, Format: render.FormatJSON}, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q (err %v)", got, tt.wantCode, err)
			}
		})
	}

	var o Options
	_ = o.ValidateAndSetDefaults()
	if o.Renderer != DefaultRenderer || o.Format != DefaultFormat || o.Scale != DefaultScale {
		t.Errorf("defaults not applied: %+v", o)
	}
}

func TestLoadWorkspace(t *testing.T) {
	ws := testWorkspace(t)
	if ws.Tree.Len() != 6 {
		t.Errorf("tree has %d nodes, want 6", ws.Tree.Len())
	}
	if len(ws.TreeHash) != 64 || len(ws.StyleHash) != 64 {
		t.Errorf("hashes not set: %q %q", ws.TreeHash, ws.StyleHash)
	}

	again := testWorkspace(t)
	if again.TreeHash != ws.TreeHash {
		t.Error("same content should hash the same")
	}
}

func TestLoadWorkspaceErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Tree = filepath.Join(t.TempDir(), "missing.json")
	if _, err := LoadWorkspace(cfg); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing tree err = %v, want FILE_NOT_FOUND", err)
	}

	cfg = testConfig(t)
	cfg.Planner.DefaultCategory = "Mobility"
	if _, err := LoadWorkspace(cfg); !errors.Is(err, errors.ErrCodeUnknownCategory) {
		t.Errorf("bad default category err = %v, want UNKNOWN_CATEGORY", err)
	}

	cfg = testConfig(t)
	colors := filepath.Join(t.TempDir(), "colors.json")
	os.WriteFile(colors, []byte(`{"cell": {"active": "not-a-color"}}`), 0o644)
	cfg.Data.Colors = colors
	if _, err := LoadWorkspace(cfg); !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("bad colors err = %v, want INVALID_STYLE", err)
	}
}

func TestLoadWorkspaceCentered(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Center = 8
	ws, err := LoadWorkspace(cfg)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := ws.Tree.Node("0")
	if n.Cell.Col == 3 {
		t.Error("centering should move the Firepower root")
	}
	if n.Cell.Col%2 != 1 {
		t.Errorf("col = %d, an even center must keep column parity", n.Cell.Col)
	}
}

func TestWorkspaceNewPlanner(t *testing.T) {
	ws := testWorkspace(t)
	ws.DefaultCategory = "Survival"

	p, err := ws.NewPlanner("", []string{"10", "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Category() != "Survival" {
		t.Errorf("category = %q, want the workspace default", p.Category())
	}
	if got := p.Selection(); len(got) != 1 || got[0] != "10" {
		t.Errorf("selection = %v, unknown IDs should be dropped", got)
	}

	if _, err := ws.NewPlanner("Mobility", nil); !errors.Is(err, errors.ErrCodeUnknownCategory) {
		t.Errorf("err = %v, want UNKNOWN_CATEGORY", err)
	}
}

func TestRunnerRenderSVG(t *testing.T) {
	ws := testWorkspace(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()
	opts := Options{Category: "Firepower", Selection: []string{"0", "1"}, Status: true}

	res, err := r.Render(ctx, ws, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.CacheHit {
		t.Error("first render should miss")
	}
	svg := string(res.Data)
	for _, want := range []string{"<svg", `id="node-0"`, `id="node-3"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if got := res.Snapshot.State("1"); got != reach.Active {
		t.Errorf("state(1) = %v, want active", got)
	}

	res2, err := r.Render(ctx, ws, Options{Category: "Firepower", Selection: []string{"1", "0"}, Status: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res2.CacheHit {
		t.Error("same selection in another order should hit the cache")
	}
	if string(res2.Data) != svg {
		t.Error("cached artifact differs")
	}

	opts.Refresh = true
	res3, err := r.Render(ctx, ws, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res3.CacheHit {
		t.Error("Refresh should bypass the cache")
	}

	res4, err := r.Render(ctx, ws, Options{Category: "Firepower", Selection: []string{"0"}, Status: true})
	if err != nil {
		t.Fatal(err)
	}
	if res4.CacheHit {
		t.Error("a different selection should miss")
	}
}

func TestRunnerRenderJSON(t *testing.T) {
	ws := testWorkspace(t)
	r := NewRunner(nil, nil, nil)

	res, err := r.Render(context.Background(), ws, Options{Category: "Survival", Format: render.FormatJSON, Selection: []string{"11"}})
	if err != nil {
		t.Fatal(err)
	}
	var sc hexmap.Scene
	if err := json.Unmarshal(res.Data, &sc); err != nil {
		t.Fatalf("scene JSON: %v", err)
	}
	if sc.Category != "Survival" || len(sc.Cells) != 2 {
		t.Errorf("scene = %s with %d cells", sc.Category, len(sc.Cells))
	}
	if sc.Count(reach.Orphan) != 1 {
		t.Errorf("orphans = %d, want 1 (root not selected)", sc.Count(reach.Orphan))
	}
}

func TestRunnerRenderDOT(t *testing.T) {
	ws := testWorkspace(t)
	r := NewRunner(nil, nil, nil)

	res, err := r.Render(context.Background(), ws, Options{
		Category: "Firepower",
		Renderer: RendererNodelink,
		Format:   render.FormatDOT,
		External: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(res.Data), "digraph") {
		t.Errorf("dot output = %.40q", res.Data)
	}
}

func TestRunnerConverterMissing(t *testing.T) {
	if render.Available() {
		t.Skip("rsvg-convert installed")
	}
	ws := testWorkspace(t)
	r := NewRunner(nil, nil, nil)
	_, err := r.Render(context.Background(), ws, Options{Format: render.FormatPNG})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}

type renderRecorder struct {
	observability.NoopRenderHooks
	mu       sync.Mutex
	started  int
	finished []error
}

func (h *renderRecorder) OnRenderStart(context.Context, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started++
}

func (h *renderRecorder) OnRenderComplete(_ context.Context, _, _ string, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finished = append(h.finished, err)
}

func TestRunnerRenderHooks(t *testing.T) {
	hooks := &renderRecorder{}
	observability.SetRenderHooks(hooks)
	t.Cleanup(observability.Reset)

	ws := testWorkspace(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()
	for range 2 {
		if _, err := r.Render(ctx, ws, Options{}); err != nil {
			t.Fatal(err)
		}
	}
	if hooks.started != 1 || len(hooks.finished) != 1 || hooks.finished[0] != nil {
		t.Errorf("hooks: started %d, finished %v; cache hits must not render", hooks.started, hooks.finished)
	}
}
