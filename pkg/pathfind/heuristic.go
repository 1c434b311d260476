package pathfind

import (
	"fmt"
	"math"

	"github.com/ritzau/campus-nav/pkg/geometry"
	"github.com/ritzau/campus-nav/pkg/graph"
)

// Metric measures planar distance between two points.
type Metric func(a, b geometry.Point) float64

// MetricByName returns the metric registered under name.
func MetricByName(name string) (Metric, error) {
	switch name {
	case "", "euclidean":
		return geometry.Euclidean, nil
	case "manhattan":
		return geometry.Manhattan, nil
	}
	return nil, fmt.Errorf("unknown heuristic %q", name)
}

// Heuristic estimates the remaining cost between two positions: planar
// distance plus a flat penalty per floor changed.
type Heuristic struct {
	Metric       Metric
	FloorPenalty float64
}

// Estimate returns the heuristic value. floorDelta is the number of floors
// between the two positions.
func (h Heuristic) Estimate(a, b geometry.Point, floorDelta int) float64 {
	return h.metric()(a, b) + h.FloorPenalty*math.Abs(float64(floorDelta))
}

func (h Heuristic) metric() Metric {
	if h.Metric == nil {
		return geometry.Euclidean
	}
	return h.Metric
}

// scaled returns h with its planar term multiplied by factor.
func (h Heuristic) scaled(factor float64) Heuristic {
	m := h.metric()
	h.Metric = func(a, b geometry.Point) float64 { return factor * m(a, b) }
	return h
}

// planarScale returns the largest factor, at most 1, for which the scaled
// metric never exceeds the weight of a same-floor edge. Graphs weighted by
// traversal cost rather than distance need a factor below 1 for the
// estimate to stay a lower bound.
func planarScale(g *graph.Graph, m Metric) float64 {
	scale := 1.0
	for _, a := range g.Nodes() {
		for _, b := range g.Neighbors(a) {
			if b.ID() <= a.ID() || a.Floor != b.Floor {
				continue
			}
			d := m(a.Center, b.Center)
			if d <= 0 {
				continue
			}
			w, _ := g.Weight(a, b)
			if r := w / d; r < scale {
				scale = r
			}
		}
	}
	return scale
}
