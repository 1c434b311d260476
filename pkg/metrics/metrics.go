package metrics

import (
	"time"
)

// Navigation outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeNoPath      = "no_path"
	OutcomeAborted     = "aborted"
	OutcomeUnavailable = "unavailable"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRateLimited counts a rejected request.
func (r *Registry) RecordRateLimited() {
	if r == nil {
		return
	}
	r.HTTPRateLimitedTotal.Inc()
}

// GraphSize is what RecordBuild needs to know about a finished build.
type GraphSize struct {
	Nodes, Edges, InterFloorEdges, Components, Floors int
	FailedFloors                                      []string
}

// RecordBuild records a successful campus build and updates the graph gauges.
func (r *Registry) RecordBuild(size GraphSize, duration time.Duration) {
	if r == nil {
		return
	}
	r.BuildsTotal.WithLabelValues("success").Inc()
	r.BuildDuration.Observe(duration.Seconds())
	for _, f := range size.FailedFloors {
		r.FloorFailuresTotal.WithLabelValues(f).Inc()
	}
	r.GraphNodes.Set(float64(size.Nodes))
	r.GraphEdges.Set(float64(size.Edges))
	r.GraphInterFloorEdges.Set(float64(size.InterFloorEdges))
	r.GraphComponents.Set(float64(size.Components))
	r.FloorsBuilt.Set(float64(size.Floors))
	r.GraphReady.Set(1)
}

// RecordBuildFailure records a failed build. ready tells whether an older
// graph is still being served.
func (r *Registry) RecordBuildFailure(duration time.Duration, ready bool) {
	if r == nil {
		return
	}
	r.BuildsTotal.WithLabelValues("failure").Inc()
	r.BuildDuration.Observe(duration.Seconds())
	if ready {
		r.GraphReady.Set(1)
	} else {
		r.GraphReady.Set(0)
	}
}

// RecordNavigation records a navigation request.
func (r *Registry) RecordNavigation(outcome string, duration time.Duration, expansions, hops int) {
	if r == nil {
		return
	}
	r.NavigationsTotal.WithLabelValues(outcome).Inc()
	r.NavigationDuration.Observe(duration.Seconds())
	if outcome == OutcomeSuccess || outcome == OutcomeNoPath || outcome == OutcomeAborted {
		r.NavigationExpansions.Observe(float64(expansions))
	}
	if outcome == OutcomeSuccess {
		r.NavigationHops.Observe(float64(hops))
	}
}

// RecordDirectory records a directory (re)load.
func (r *Registry) RecordDirectory(rooms int, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.DirectoryReloadsTotal.WithLabelValues("failure").Inc()
		return
	}
	r.DirectoryReloadsTotal.WithLabelValues("success").Inc()
	r.DirectoryRooms.Set(float64(rooms))
}
