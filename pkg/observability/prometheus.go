package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements [PipelineHooks], [CacheHooks] and [HTTPHooks]
// on top of Prometheus collectors.
type PrometheusHooks struct {
	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	buildNodes     prometheus.Gauge
	buildEdges     prometheus.Gauge
	buildWarnings  prometheus.Counter
	layoutDuration *prometheus.HistogramVec
	layoutErrors   prometheus.Counter
	renderTotal    *prometheus.CounterVec
	staleLoads     prometheus.Counter
	cacheOps       *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)

// NewPrometheusHooks creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer in production or a fresh registry in tests.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erchart_schema_fetch_total",
			Help: "Schema fetches by source and outcome",
		}, []string{"source", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "erchart_schema_fetch_seconds",
			Help:    "Schema fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		buildNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "erchart_diagram_nodes",
			Help: "Nodes in the most recently built diagram",
		}),
		buildEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "erchart_diagram_edges",
			Help: "Edges in the most recently built diagram",
		}),
		buildWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "erchart_build_warnings_total",
			Help: "Malformed attributes and unresolved relations seen while building",
		}),
		layoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "erchart_layout_seconds",
			Help:    "Layout computation time",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"rankdir"}),
		layoutErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "erchart_layout_errors_total",
			Help: "Layout invariant violations",
		}),
		renderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erchart_render_total",
			Help: "Render runs by outcome",
		}, []string{"outcome"}),
		staleLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "erchart_stale_loads_total",
			Help: "Loads discarded because a newer load superseded them",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erchart_cache_operations_total",
			Help: "Cache operations by key type and result",
		}, []string{"key_type", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erchart_http_client_requests_total",
			Help: "Outgoing HTTP requests by host and status",
		}, []string{"host", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "erchart_http_client_request_seconds",
			Help:    "Outgoing HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
	}
	if reg != nil {
		reg.MustRegister(
			h.fetchTotal, h.fetchDuration,
			h.buildNodes, h.buildEdges, h.buildWarnings,
			h.layoutDuration, h.layoutErrors,
			h.renderTotal, h.staleLoads,
			h.cacheOps,
			h.httpRequests, h.httpDuration,
		)
	}
	return h
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnFetchStart(context.Context, string) {}

func (h *PrometheusHooks) OnFetchComplete(_ context.Context, source string, _ int, d time.Duration, err error) {
	h.fetchTotal.WithLabelValues(source, outcome(err)).Inc()
	h.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnBuildComplete(_ context.Context, nodes, edges, warnings int, _ time.Duration) {
	h.buildNodes.Set(float64(nodes))
	h.buildEdges.Set(float64(edges))
	h.buildWarnings.Add(float64(warnings))
}

func (h *PrometheusHooks) OnLayoutStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnLayoutComplete(_ context.Context, rankDir string, d time.Duration, err error) {
	h.layoutDuration.WithLabelValues(rankDir).Observe(d.Seconds())
	if err != nil {
		h.layoutErrors.Inc()
	}
}

func (h *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, _ time.Duration, err error) {
	h.renderTotal.WithLabelValues(outcome(err)).Inc()
}

func (h *PrometheusHooks) OnStaleLoad(context.Context, uint64) { h.staleLoads.Inc() }

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpRequests.WithLabelValues(host, "error").Inc()
}
