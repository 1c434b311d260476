package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initNavigationMetrics() {
	r.NavigationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_nav_navigations_total",
			Help: "Navigation requests by outcome",
		},
		[]string{"outcome"}, // success, not_found, no_path, aborted, unavailable
	)

	r.NavigationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campus_nav_navigation_duration_seconds",
			Help:    "Time spent resolving and searching a route",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	r.NavigationExpansions = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campus_nav_search_expansions",
			Help:    "Nodes expanded per search",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	r.NavigationHops = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campus_nav_route_hops",
			Help:    "Edges in returned routes",
			Buckets: prometheus.LinearBuckets(0, 10, 10),
		},
	)

	r.DirectoryRooms = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "campus_nav_directory_rooms",
			Help: "Rooms in the serving room directory",
		},
	)

	r.DirectoryReloadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_nav_directory_reloads_total",
			Help: "Room directory reloads by result",
		},
		[]string{"result"},
	)
}
