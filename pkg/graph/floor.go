package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/ritzau/campus-nav/pkg/floorplan"
	"github.com/ritzau/campus-nav/pkg/geometry"
	"github.com/ritzau/campus-nav/pkg/model"
)

// FloorGraph is the graph of a single floor before it joins the campus.
type FloorGraph struct {
	Floor model.Floor
	Nodes []*model.Node
	Edges []FloorEdge

	// Unlabeled counts rects without an id, which are decoration.
	Unlabeled int
	// Malformed counts rects the parser dropped.
	Malformed int
}

// FloorEdge joins Nodes[From] and Nodes[To], From < To.
type FloorEdge struct {
	From, To int
	Weight   float64
}

// NodeKey builds the campus-unique key of a floor plan rect.
func NodeKey(floor model.Floor, r floorplan.LabeledRect) string {
	return fmt.Sprintf("%s_%s_%.1f_%.1f_%d", floor, r.ID, r.Rect.X, r.Rect.Y, r.Seq)
}

// BuildFloor loads one floor plan and builds its graph.
func BuildFloor(ctx context.Context, loader *floorplan.Loader, floor model.Floor, opts Options) (*FloorGraph, error) {
	doc, err := loader.Load(ctx, floor)
	if err != nil {
		return nil, err
	}
	fg := NewFloorGraph(floor, doc.Rects, opts)
	fg.Malformed = doc.Malformed
	return fg, nil
}

// NewFloorGraph turns labeled rects into nodes and links every adjacent
// pair, except two obstacles.
func NewFloorGraph(floor model.Floor, rects []floorplan.LabeledRect, opts Options) *FloorGraph {
	fg := &FloorGraph{Floor: floor}

	for _, r := range rects {
		if r.ID == "" {
			fg.Unlabeled++
			continue
		}
		n := model.NewNode(NodeKey(floor, r), floor, r.ID, opts.Classifier.Classify(r.ID), r.Rect)
		if r.HasCost {
			n.WithCost(r.Cost)
		}
		fg.Nodes = append(fg.Nodes, n)
	}

	// Sweep by left edge: once a candidate starts beyond the right edge
	// plus tolerance, no later candidate can touch.
	order := make([]int, len(fg.Nodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return fg.Nodes[order[i]].Bounds.Left() < fg.Nodes[order[j]].Bounds.Left()
	})

	for oi, i := range order {
		a := fg.Nodes[i]
		limit := a.Bounds.Right() + opts.Tolerance
		for _, j := range order[oi+1:] {
			b := fg.Nodes[j]
			if b.Bounds.Left() >= limit {
				break
			}
			if a.Kind == model.KindObstacle && b.Kind == model.KindObstacle {
				continue
			}
			if !geometry.Adjacent(a.Bounds, b.Bounds, opts.Tolerance) {
				continue
			}
			from, to := min(i, j), max(i, j)
			fg.Edges = append(fg.Edges, FloorEdge{From: from, To: to, Weight: opts.edgeWeight(a, b)})
		}
	}

	sort.Slice(fg.Edges, func(i, j int) bool {
		if fg.Edges[i].From != fg.Edges[j].From {
			return fg.Edges[i].From < fg.Edges[j].From
		}
		return fg.Edges[i].To < fg.Edges[j].To
	})
	return fg
}
