package graph

import (
	"fmt"

	"github.com/ritzau/campus-nav/pkg/geometry"
	"github.com/ritzau/campus-nav/pkg/model"
)

// Weighting selects how same-floor edge weights are computed.
type Weighting string

const (
	// WeightDistance uses the distance between node centers.
	WeightDistance Weighting = "distance"
	// WeightCost uses the mean of both nodes' traversal costs.
	WeightCost Weighting = "cost"
)

// LinkPolicy selects how stairs and elevators are joined across floors.
type LinkPolicy string

const (
	// LinkExact joins vertical nodes with identical identifiers.
	LinkExact LinkPolicy = "exact"
	// LinkProximity joins vertical nodes of the same kind whose centers are
	// within a planar distance.
	LinkProximity LinkPolicy = "proximity"
)

// Options controls graph construction.
type Options struct {
	Tolerance        float64
	MinEdgeWeight    float64
	Weighting        Weighting
	DefaultCost      float64
	InterFloorWeight float64
	Linking          LinkPolicy
	LinkDistance     float64
	Classifier       model.Classifier
}

// DefaultOptions returns the settings the campus maps are drawn for.
func DefaultOptions() Options {
	return Options{
		Tolerance:        geometry.DefaultTolerance,
		MinEdgeWeight:    0.1,
		Weighting:        WeightDistance,
		DefaultCost:      1.0,
		InterFloorWeight: 2.0,
		Linking:          LinkExact,
		LinkDistance:     25.0,
		Classifier:       model.DefaultClassifier(),
	}
}

// Linker returns the inter-floor linking strategy the options select.
func (o Options) Linker() (Linker, error) {
	switch o.Linking {
	case LinkExact, "":
		return ExactLinker{}, nil
	case LinkProximity:
		return ProximityLinker{MaxDistance: o.LinkDistance}, nil
	}
	return nil, fmt.Errorf("unknown linking policy %q", o.Linking)
}

func (o Options) edgeWeight(a, b *model.Node) float64 {
	var w float64
	switch o.Weighting {
	case WeightCost:
		w = (a.CostOr(o.DefaultCost) + b.CostOr(o.DefaultCost)) / 2
	default:
		w = geometry.Euclidean(a.Center, b.Center)
	}
	if w < o.MinEdgeWeight {
		return o.MinEdgeWeight
	}
	return w
}
