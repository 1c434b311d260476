package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBuildMetrics() {
	r.BuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_nav_builds_total",
			Help: "Campus graph builds by result",
		},
		[]string{"result"}, // success, failure
	)

	r.BuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campus_nav_build_duration_seconds",
			Help:    "Time spent building the campus graph",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
	)

	r.FloorFailuresTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_nav_floor_failures_total",
			Help: "Floors that could not be built, by floor",
		},
		[]string{"floor"},
	)

	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "campus_nav_graph_nodes",
			Help: "Nodes in the serving campus graph",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "campus_nav_graph_edges",
			Help: "Edges in the serving campus graph",
		},
	)

	r.GraphInterFloorEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "campus_nav_graph_interfloor_edges",
			Help: "Stairs and elevator links between floors",
		},
	)

	r.GraphComponents = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "campus_nav_graph_components",
			Help: "Connected components of the serving campus graph",
		},
	)

	r.FloorsBuilt = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "campus_nav_floors_built",
			Help: "Floors present in the serving campus graph",
		},
	)

	r.GraphReady = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "campus_nav_graph_ready",
			Help: "Whether a campus graph is being served (1=yes, 0=no)",
		},
	)
}
