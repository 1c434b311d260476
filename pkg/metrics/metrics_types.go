package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRateLimitedTotal prometheus.Counter

	// Build Metrics
	BuildsTotal          *prometheus.CounterVec
	BuildDuration        prometheus.Histogram
	FloorFailuresTotal   *prometheus.CounterVec
	GraphNodes           prometheus.Gauge
	GraphEdges           prometheus.Gauge
	GraphInterFloorEdges prometheus.Gauge
	GraphComponents      prometheus.Gauge
	FloorsBuilt          prometheus.Gauge
	GraphReady           prometheus.Gauge

	// Navigation Metrics
	NavigationsTotal      *prometheus.CounterVec
	NavigationDuration    prometheus.Histogram
	NavigationExpansions  prometheus.Histogram
	NavigationHops        prometheus.Histogram
	DirectoryRooms        prometheus.Gauge
	DirectoryReloadsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initBuildMetrics()
	r.initNavigationMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
