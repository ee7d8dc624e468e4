package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hexplanner/pkg/cache"
	"github.com/matzehuels/hexplanner/pkg/observability"
	"github.com/matzehuels/hexplanner/pkg/planner"
	"github.com/matzehuels/hexplanner/pkg/render"
)

// DefaultTTL is how long rendered artifacts stay cached.
const DefaultTTL = 7 * 24 * time.Hour

// Runner encapsulates rendering with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The cache is wrapped so lookups reach the observability cache hooks.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Instrument(c),
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Result is one rendered artifact.
type Result struct {
	Data     []byte
	Format   render.Format
	Snapshot planner.Snapshot
	CacheHit bool
	Duration time.Duration
}

// Render classifies opts.Selection against ws and encodes the category
// in opts.Format, consulting the cache first unless opts.Refresh is set.
func (r *Runner) Render(ctx context.Context, ws *Workspace, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	p, err := ws.NewPlanner(opts.Category, opts.Selection)
	if err != nil {
		return nil, err
	}
	return r.RenderPlanner(ctx, ws, p, opts)
}

// RenderPlanner renders the current state of p. opts.Category and
// opts.Selection are ignored in favor of p's own state.
func (r *Runner) RenderPlanner(ctx context.Context, ws *Workspace, p *planner.Planner, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	snap := p.Snapshot()
	start := time.Now()

	key := r.Keyer.ArtifactKey(ws.TreeHash, cache.ArtifactKeyOpts{
		Renderer:  opts.Renderer,
		Category:  snap.Category,
		Format:    string(opts.Format),
		Selection: p.Selection(),
		StyleHash: ws.StyleHash,
		Scale:     opts.Scale,
		Detailed:  opts.Detailed,
		External:  opts.External,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		} else if hit {
			r.Logger.Debug("artifact from cache", "category", snap.Category, "format", opts.Format)
			return &Result{Data: data, Format: opts.Format, Snapshot: snap, CacheHit: true, Duration: time.Since(start)}, nil
		}
	}

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, snap.Category, string(opts.Format))
	data, err := renderArtifact(ctx, ws, snap, opts)
	hooks.OnRenderComplete(ctx, snap.Category, string(opts.Format), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", opts.Format, err)
	}

	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	}

	res := &Result{Data: data, Format: opts.Format, Snapshot: snap, Duration: time.Since(start)}
	r.Logger.Info("rendered",
		"category", snap.Category,
		"renderer", opts.Renderer,
		"format", opts.Format,
		"bytes", len(data),
		"duration", res.Duration)
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
