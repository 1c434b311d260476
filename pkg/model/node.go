package model

import "github.com/ritzau/campus-nav/pkg/geometry"

// Node is one navigable (or blocking) area of a floor plan. It satisfies
// gonum's graph.Node once the campus graph has assigned it an ID.
type Node struct {
	id int64

	// Key is unique across the campus.
	Key      string         `json:"key"`
	Floor    Floor          `json:"floor"`
	Category string         `json:"category"`
	Kind     NodeKind       `json:"kind"`
	Bounds   geometry.Rect  `json:"bounds"`
	Center   geometry.Point `json:"center"`
	Cost     float64        `json:"cost,omitempty"`
	HasCost  bool           `json:"-"`
}

// NewNode builds a node and derives its center from bounds.
func NewNode(key string, floor Floor, category string, kind NodeKind, bounds geometry.Rect) *Node {
	return &Node{
		id:       -1,
		Key:      key,
		Floor:    floor,
		Category: category,
		Kind:     kind,
		Bounds:   bounds,
		Center:   bounds.Center(),
	}
}

// ID returns the graph ID, or -1 while the node is not part of a graph.
func (n *Node) ID() int64 { return n.id }

// SetID is called by the graph that owns the node.
func (n *Node) SetID(id int64) { n.id = id }

// WithCost sets an explicit traversal cost.
func (n *Node) WithCost(cost float64) *Node {
	n.Cost = cost
	n.HasCost = true
	return n
}

// CostOr returns the node cost, or fallback when none was given.
func (n *Node) CostOr(fallback float64) float64 {
	if n.HasCost {
		return n.Cost
	}
	return fallback
}
