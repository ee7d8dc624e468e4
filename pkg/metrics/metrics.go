// Package metrics implements the observability hooks with Prometheus.
//
//	m := metrics.New()
//	m.Install()                  // route hooks to m
//	http.Handle("/metrics", m.Handler())
//
// Each Collector owns its registry, so tests and embedded servers do not
// collide on the global default registry.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/hexplanner/pkg/observability"
	"github.com/matzehuels/hexplanner/pkg/reach"
)

const namespace = "hexplanner"

// Collector records planner, render, cache and HTTP events.
type Collector struct {
	reg *prometheus.Registry

	toggles         *prometheus.CounterVec
	recomputes      *prometheus.HistogramVec
	nodes           *prometheus.GaugeVec
	switches        *prometheus.CounterVec
	renders         *prometheus.HistogramVec
	rendersInFlight prometheus.Gauge
	cacheRequests   *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	httpRequests    *prometheus.HistogramVec
}

// New creates a Collector with its own registry, including Go runtime and
// process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Collector{
		reg: reg,

		toggles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "toggles_total",
			Help:      "Node selection toggles.",
		}, []string{"category", "action"}),

		recomputes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "recompute_duration_seconds",
			Help:      "Time to classify, project and aggregate after a mutation.",
			Buckets:   []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2},
		}, []string{"category"}),

		nodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "nodes",
			Help:      "Visible nodes per state after the last recompute.",
		}, []string{"category", "state"}),

		switches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "category_switches_total",
			Help:      "Category switches by destination.",
		}, []string{"to"}),

		renders: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Render latency by output format.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"format", "status"}),

		rendersInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "in_flight",
			Help:      "Renders currently running.",
		}),

		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups by result.",
		}, []string{"key_type", "result"}),

		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),

		httpRequests: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Registry returns the registry backing c.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves c's metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

// Install routes all global observability hooks to c.
func (c *Collector) Install() {
	observability.SetPlannerHooks(c)
	observability.SetRenderHooks(c)
	observability.SetCacheHooks(c)
	observability.SetHTTPHooks(c)
}

// =============================================================================
// Planner hooks
// =============================================================================

func (c *Collector) OnToggle(category, _ string, selected bool) {
	action := "deselect"
	if selected {
		action = "select"
	}
	c.toggles.WithLabelValues(category, action).Inc()
}

func (c *Collector) OnRecompute(category string, active, orphan, possible int, d time.Duration) {
	c.recomputes.WithLabelValues(category).Observe(d.Seconds())
	c.nodes.WithLabelValues(category, reach.Active.String()).Set(float64(active))
	c.nodes.WithLabelValues(category, reach.Orphan.String()).Set(float64(orphan))
	c.nodes.WithLabelValues(category, reach.Possible.String()).Set(float64(possible))
}

func (c *Collector) OnCategorySwitch(_, to string) {
	c.switches.WithLabelValues(to).Inc()
}

// =============================================================================
// Render hooks
// =============================================================================

func (c *Collector) OnRenderStart(context.Context, string, string) {
	c.rendersInFlight.Inc()
}

func (c *Collector) OnRenderComplete(_ context.Context, _, format string, d time.Duration, err error) {
	c.rendersInFlight.Dec()
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.renders.WithLabelValues(format, status).Observe(d.Seconds())
}

// =============================================================================
// Cache hooks
// =============================================================================

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, keyType string, size int) {
	c.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// HTTP hooks
// =============================================================================

func (c *Collector) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

var (
	_ observability.PlannerHooks = (*Collector)(nil)
	_ observability.RenderHooks  = (*Collector)(nil)
	_ observability.CacheHooks   = (*Collector)(nil)
	_ observability.HTTPHooks    = (*Collector)(nil)
)
