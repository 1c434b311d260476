package route

import (
	"github.com/ritzau/campus-nav/pkg/geometry"
	"github.com/ritzau/campus-nav/pkg/model"
)

// Segment is a run of consecutive path nodes on one floor. The last node of
// a segment is where the route leaves the floor, or the destination.
type Segment struct {
	Floor       model.Floor      `json:"floor"`
	Coords      []geometry.Point `json:"coords"`
	NodeTypes   []string         `json:"node_types"`
	EndNodeType string           `json:"end_node_type"`
	EndNodeKind model.NodeKind   `json:"end_node_kind"`
}

// Route is a path ready for display.
type Route struct {
	Segments []Segment     `json:"path_segments"`
	Floors   []model.Floor `json:"floors"`
	Cost     float64       `json:"cost"`
	Hops     int           `json:"hops"`
}

// Segments splits a path wherever it changes floor.
func Segments(nodes []*model.Node) []Segment {
	var out []Segment
	for _, n := range nodes {
		if len(out) == 0 || out[len(out)-1].Floor != n.Floor {
			out = append(out, Segment{Floor: n.Floor})
		}
		seg := &out[len(out)-1]
		seg.Coords = append(seg.Coords, n.Center)
		seg.NodeTypes = append(seg.NodeTypes, n.Category)
		seg.EndNodeType = n.Category
		seg.EndNodeKind = n.Kind
	}
	return out
}

// New builds the route for a path and its cost.
func New(nodes []*model.Node, cost float64) *Route {
	r := &Route{
		Segments: Segments(nodes),
		Cost:     cost,
	}
	if len(nodes) > 0 {
		r.Hops = len(nodes) - 1
	}
	for _, s := range r.Segments {
		r.Floors = append(r.Floors, s.Floor)
	}
	return r
}

// Transitions returns the kind of each floor change along the route.
func (r *Route) Transitions() []model.NodeKind {
	if len(r.Segments) < 2 {
		return nil
	}
	out := make([]model.NodeKind, 0, len(r.Segments)-1)
	for _, s := range r.Segments[:len(r.Segments)-1] {
		out = append(out, s.EndNodeKind)
	}
	return out
}
