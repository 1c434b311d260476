package graph

import (
	"github.com/ritzau/campus-nav/pkg/geometry"
	"github.com/ritzau/campus-nav/pkg/model"
)

// Linker decides which vertical-transport nodes on two adjacent floors are
// the same physical staircase or elevator.
type Linker interface {
	Name() string
	Link(lower, upper []*model.Node) [][2]*model.Node
}

// ExactLinker pairs nodes whose identifiers match exactly, case included.
type ExactLinker struct{}

func (ExactLinker) Name() string { return string(LinkExact) }

func (ExactLinker) Link(lower, upper []*model.Node) [][2]*model.Node {
	var pairs [][2]*model.Node
	for _, a := range lower {
		for _, b := range upper {
			if a.Category == b.Category {
				pairs = append(pairs, [2]*model.Node{a, b})
			}
		}
	}
	return pairs
}

// ProximityLinker pairs nodes of the same kind whose centers lie within
// MaxDistance of each other in the plane.
type ProximityLinker struct {
	MaxDistance float64
}

func (ProximityLinker) Name() string { return string(LinkProximity) }

func (p ProximityLinker) Link(lower, upper []*model.Node) [][2]*model.Node {
	var pairs [][2]*model.Node
	for _, a := range lower {
		for _, b := range upper {
			if a.Kind != b.Kind {
				continue
			}
			if geometry.Euclidean(a.Center, b.Center) <= p.MaxDistance {
				pairs = append(pairs, [2]*model.Node{a, b})
			}
		}
	}
	return pairs
}

func verticalNodes(nodes []*model.Node) []*model.Node {
	var out []*model.Node
	for _, n := range nodes {
		if n.Kind.IsVertical() {
			out = append(out, n)
		}
	}
	return out
}
