package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/hexplanner/pkg/buildinfo"
	"github.com/matzehuels/hexplanner/pkg/errors"
	"github.com/matzehuels/hexplanner/pkg/hexgrid"
	"github.com/matzehuels/hexplanner/pkg/httputil"
	"github.com/matzehuels/hexplanner/pkg/pipeline"
	"github.com/matzehuels/hexplanner/pkg/planner"
	"github.com/matzehuels/hexplanner/pkg/reach"
	"github.com/matzehuels/hexplanner/pkg/render"
	"github.com/matzehuels/hexplanner/pkg/store"
)

// =============================================================================
// Response types
// =============================================================================

type categoryView struct {
	Name    string   `json:"name"`
	Root    string   `json:"root"`
	Members []string `json:"members"`
}

type cellView struct {
	Cell hexgrid.Cell `json:"cell"`
	Hit  bool         `json:"hit"`
	Node string       `json:"node,omitempty"`
}

// planView is a plan plus the classification of its current category.
type planView struct {
	Plan     *store.Plan   `json:"plan"`
	Active   []string      `json:"active"`
	Orphan   []string      `json:"orphan"`
	Possible []string      `json:"possible"`
	Effects  reach.Effects `json:"effects"`
	Toggled  string        `json:"toggled,omitempty"`
}

func newPlanView(plan *store.Plan, snap planner.Snapshot) planView {
	return planView{
		Plan:     plan,
		Active:   snap.Visible.Active.Sorted(),
		Orphan:   snap.Visible.Orphan.Sorted(),
		Possible: snap.Visible.Possible.Sorted(),
		Effects:  snap.Effects,
	}
}

// =============================================================================
// Static endpoints
// =============================================================================

type healthView struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, healthView{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	tree := s.ws.Tree
	out := []categoryView{}
	for _, name := range tree.Categories() {
		cat, _ := tree.Category(name)
		out = append(out, categoryView{Name: name, Root: cat.Root, Members: cat.Members.Sorted()})
	}
	httputil.JSON(w, http.StatusOK, out)
}

// handleCell resolves a pixel to a cell and, with ?category=, to a node.
func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		httputil.Error(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "x and y must be numbers"))
		return
	}

	cell, hit := s.ws.Grid.CellAtPoint(hexgrid.Point{X: x, Y: y})
	out := cellView{Hit: hit}
	if hit {
		out.Cell = cell
		if category := q.Get("category"); category != "" {
			if _, ok := s.ws.Tree.Category(category); !ok {
				httputil.Error(w, s.logger, errors.New(errors.ErrCodeUnknownCategory, "unknown category %q", category))
				return
			}
			out.Node, _ = s.ws.Tree.NodeAt(category, cell)
		}
	}
	httputil.JSON(w, http.StatusOK, out)
}

// =============================================================================
// Plan CRUD
// =============================================================================

type createPlanRequest struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Selected []string `json:"selected"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context())
	if err != nil {
		httputil.Error(w, s.logger, errors.Wrap(errors.ErrCodeStore, err, "list plans"))
		return
	}
	httputil.JSON(w, http.StatusOK, plans)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	for _, id := range req.Selected {
		if err := errors.ValidateNodeID(id); err != nil {
			httputil.Error(w, s.logger, err)
			return
		}
	}

	p, err := s.ws.NewPlanner(req.Category, req.Selected)
	if err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	plan := store.NewPlan(req.Name, p.Category())
	plan.Update(p.Category(), p.Selection())

	s.mu.Lock()
	err = s.plans.Set(r.Context(), plan)
	s.mu.Unlock()
	if err != nil {
		httputil.Error(w, s.logger, errors.Wrap(errors.ErrCodeStore, err, "save plan"))
		return
	}
	s.logger.Info("plan created", "id", plan.ID, "category", plan.Category)
	w.Header().Set("Location", "/api/plans/"+plan.ID)
	httputil.JSON(w, http.StatusCreated, newPlanView(plan, p.Snapshot()))
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, p, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, newPlanView(plan, p.Snapshot()))
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidatePlanID(id); err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	s.mu.Lock()
	err := s.plans.Delete(r.Context(), id)
	s.mu.Unlock()
	if err != nil {
		httputil.Error(w, s.logger, errors.Wrap(errors.ErrCodeStore, err, "delete plan"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	_, p, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, p.Overview())
}

// =============================================================================
// Plan mutations
// =============================================================================

type toggleRequest struct {
	Node string   `json:"node,omitempty"`
	X    *float64 `json:"x,omitempty"`
	Y    *float64 `json:"y,omitempty"`
}

// handleToggle toggles a node by ID or by pixel. IDs outside the current
// category and points that miss every cell leave the plan unchanged.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	byPoint := req.X != nil && req.Y != nil
	if !byPoint && req.Node == "" {
		httputil.Error(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "toggle needs a node or an x/y point"))
		return
	}
	if !byPoint {
		if err := errors.ValidateNodeID(req.Node); err != nil {
			httputil.Error(w, s.logger, err)
			return
		}
	}

	s.mutate(w, r, func(p *planner.Planner) (string, error) {
		if byPoint {
			id, _ := p.ToggleAt(hexgrid.Point{X: *req.X, Y: *req.Y})
			return id, nil
		}
		if p.Toggle(req.Node) {
			return req.Node, nil
		}
		return "", nil
	})
}

type categoryRequest struct {
	Category string `json:"category"`
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	s.mutate(w, r, func(p *planner.Planner) (string, error) {
		if err := p.SwitchCategory(req.Category); err != nil {
			return "", errors.Wrap(errors.ErrCodeUnknownCategory, err, "unknown category %q", req.Category)
		}
		return "", nil
	})
}

type clearRequest struct {
	All bool `json:"all"`
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	s.mutate(w, r, func(p *planner.Planner) (string, error) {
		if req.All {
			p.ClearAll()
		} else {
			p.ClearCategory()
		}
		return "", nil
	})
}

// mutate applies fn to the plan named in the URL and saves the result.
// fn returns the toggled node ID, if any.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*planner.Planner) (string, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, p, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	toggled, err := fn(p)
	if err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	plan.Update(p.Category(), p.Selection())
	if err := s.plans.Set(r.Context(), plan); err != nil {
		httputil.Error(w, s.logger, errors.Wrap(errors.ErrCodeStore, err, "save plan"))
		return
	}

	view := newPlanView(plan, p.Snapshot())
	view.Toggled = toggled
	httputil.JSON(w, http.StatusOK, view)
}

// load fetches a plan and rebuilds its planner.
func (s *Server) load(ctx context.Context, id string) (*store.Plan, *planner.Planner, error) {
	if err := errors.ValidatePlanID(id); err != nil {
		return nil, nil, err
	}
	plan, err := s.plans.Get(ctx, id)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeStore, err, "load plan")
	}
	if plan == nil {
		return nil, nil, errors.New(errors.ErrCodePlanNotFound, "plan %q not found", id)
	}
	p, err := s.ws.NewPlanner(plan.Category, plan.Selected)
	if err != nil {
		return nil, nil, err
	}
	return plan, p, nil
}

// =============================================================================
// Rendering
// =============================================================================

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		httputil.Error(w, s.logger, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid format"))
		return
	}
	q := r.URL.Query()
	opts := pipeline.Options{
		Renderer: q.Get("renderer"),
		Format:   format,
		Category: q.Get("category"),
		Status:   q.Get("status") == "true",
		Detailed: q.Get("detailed") == "true",
		External: q.Get("external") == "true",
		Refresh:  q.Get("refresh") == "true",
	}
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			httputil.Error(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
	}

	plan, _, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	if opts.Category == "" {
		opts.Category = plan.Category
	}
	opts.Selection = plan.Selected

	res, err := s.runner.Render(r.Context(), s.ws, opts)
	if err != nil {
		httputil.Error(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", res.Format.ContentType())
	if res.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}
