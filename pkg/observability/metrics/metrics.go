// Package metrics implements the observability hooks on top of Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus series for the editor and its API. It
// satisfies every hook interface in the observability package.
type Collector struct {
	registry *prometheus.Registry

	mutations   *prometheus.CounterVec
	transitions *prometheus.CounterVec

	loads        *prometheus.CounterVec
	saves        *prometheus.CounterVec
	saveDuration prometheus.Histogram
	snapshotSize prometheus.Gauge

	exports        *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, so several
// collectors can coexist in one process.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_mutations_total",
			Help:      "Chart mutations by operation and outcome",
		}, []string{"op", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_mode_transitions_total",
			Help:      "Editor state machine transitions",
		}, []string{"from", "to"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_loads_total",
			Help:      "Snapshot loads by source",
		}, []string{"source", "status"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_saves_total",
			Help:      "Snapshot saves by storage backend",
		}, []string{"backend", "status"}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_save_duration_seconds",
			Help:      "Snapshot save duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		snapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_size_bytes",
			Help:      "Size of the last saved snapshot",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Exports by format and outcome",
		}, []string{"format", "status"}),
		exportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Export duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Artifact cache hits",
		}, []string{"type"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Artifact cache misses",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		c.mutations, c.transitions,
		c.loads, c.saves, c.saveDuration, c.snapshotSize,
		c.exports, c.exportDuration,
		c.cacheHits, c.cacheMisses,
		c.httpRequests, c.httpDuration,
	)
	return c
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collected series in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *Collector) OnMutation(op string, err error) {
	c.mutations.WithLabelValues(op, status(err)).Inc()
}

func (c *Collector) OnModeChange(from, to string) {
	c.transitions.WithLabelValues(from, to).Inc()
}

func (c *Collector) OnLoad(_ context.Context, source string, _ time.Duration, err error) {
	c.loads.WithLabelValues(source, status(err)).Inc()
}

func (c *Collector) OnSave(_ context.Context, backend string, size int, d time.Duration, err error) {
	c.saves.WithLabelValues(backend, status(err)).Inc()
	c.saveDuration.Observe(d.Seconds())
	if err == nil {
		c.snapshotSize.Set(float64(size))
	}
}

func (c *Collector) OnExportStart(context.Context, string) {}

func (c *Collector) OnExportComplete(_ context.Context, format string, _ int, d time.Duration, err error) {
	c.exports.WithLabelValues(format, status(err)).Inc()
	c.exportDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.cacheHits.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.cacheMisses.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheSet(context.Context, string, int) {}

func (c *Collector) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
