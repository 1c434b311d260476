package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ritzau/campus-nav/pkg/model"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrDuplicateNode is returned when a node key is added twice.
var ErrDuplicateNode = errors.New("duplicate node key")

// Graph is the campus graph: every floor's areas plus the stairs and
// elevator links between floors. It is built once and then only read.
type Graph struct {
	graph  *simple.WeightedUndirectedGraph
	nodes  []*model.Node          // indexed by graph ID
	byKey  map[string]*model.Node // node key -> node
	floors []model.Floor

	edges      int
	interFloor int
}

// New creates an empty campus graph for the given floor ordering.
func New(floors ...model.Floor) *Graph {
	return &Graph{
		graph:  simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		byKey:  make(map[string]*model.Node),
		floors: append([]model.Floor(nil), floors...),
	}
}

// AddNode inserts a node and assigns its ID.
func (g *Graph) AddNode(n *model.Node) error {
	if _, exists := g.byKey[n.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.Key)
	}
	n.SetID(int64(len(g.nodes)))
	g.nodes = append(g.nodes, n)
	g.byKey[n.Key] = n
	g.graph.AddNode(n)
	return nil
}

// AddEdge connects two nodes already in the graph. It returns false for
// self loops and for pairs that are already connected.
func (g *Graph) AddEdge(a, b *model.Node, weight float64) bool {
	if a.ID() == b.ID() || g.HasEdge(a, b) {
		return false
	}
	g.graph.SetWeightedEdge(g.graph.NewWeightedEdge(a, b, weight))
	g.edges++
	if a.Floor != b.Floor {
		g.interFloor++
	}
	return true
}

// HasEdge reports whether a and b are directly connected.
func (g *Graph) HasEdge(a, b *model.Node) bool {
	return g.graph.HasEdgeBetween(a.ID(), b.ID())
}

// Weight returns the weight of the edge between a and b.
func (g *Graph) Weight(a, b *model.Node) (float64, bool) {
	if !g.HasEdge(a, b) {
		return 0, false
	}
	return g.graph.Weight(a.ID(), b.ID())
}

// Node returns a node by key.
func (g *Graph) Node(key string) (*model.Node, bool) {
	n, ok := g.byKey[key]
	return n, ok
}

// NodeByID returns a node by its graph ID, or nil.
func (g *Graph) NodeByID(id int64) *model.Node {
	if id < 0 || id >= int64(len(g.nodes)) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns all nodes in insertion order: floor by floor, then in
// document order within a floor. The slice must not be modified.
func (g *Graph) Nodes() []*model.Node {
	return g.nodes
}

// FloorNodes returns the nodes of one floor in insertion order.
func (g *Graph) FloorNodes(floor model.Floor) []*model.Node {
	var out []*model.Node
	for _, n := range g.nodes {
		if n.Floor == floor {
			out = append(out, n)
		}
	}
	return out
}

// Neighbors returns the nodes adjacent to n, ordered by ID.
func (g *Graph) Neighbors(n *model.Node) []*model.Node {
	iter := g.graph.From(n.ID())
	out := make([]*model.Node, 0, iter.Len())
	for iter.Next() {
		out = append(out, g.nodes[iter.Node().ID()])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Floors returns the floor ordering the graph was built with.
func (g *Graph) Floors() []model.Floor {
	return g.floors
}

// FloorIndex returns the position of floor in the ordering, or -1.
func (g *Graph) FloorIndex(floor model.Floor) int {
	for i, f := range g.floors {
		if f == floor {
			return i
		}
	}
	return -1
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, inter-floor edges included.
func (g *Graph) EdgeCount() int { return g.edges }

// InterFloorEdgeCount returns the number of edges joining two floors.
func (g *Graph) InterFloorEdgeCount() int { return g.interFloor }

// Weighted exposes the underlying gonum graph for read-only algorithms.
func (g *Graph) Weighted() gonum.WeightedUndirected {
	return g.graph
}

// Components returns the connected components, largest first. Ties are
// broken by the smallest node ID so the order is stable.
func (g *Graph) Components() [][]*model.Node {
	raw := topo.ConnectedComponents(g.graph)
	out := make([][]*model.Node, 0, len(raw))
	for _, comp := range raw {
		nodes := make([]*model.Node, 0, len(comp))
		for _, n := range comp {
			nodes = append(nodes, g.nodes[n.ID()])
		}
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
		out = append(out, nodes)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0].ID() < out[j][0].ID()
	})
	return out
}

// FloorStats summarizes one floor of the graph.
type FloorStats struct {
	Floor      model.Floor `json:"floor"`
	Nodes      int         `json:"nodes"`
	Edges      int         `json:"edges"`
	Rooms      int         `json:"rooms"`
	Vertical   int         `json:"vertical"`
	Obstacles  int         `json:"obstacles"`
	LinksAbove int         `json:"linksAbove"`
}

// Stats returns per-floor statistics in floor order.
func (g *Graph) Stats() []FloorStats {
	stats := make([]FloorStats, len(g.floors))
	index := make(map[model.Floor]int, len(g.floors))
	for i, f := range g.floors {
		stats[i].Floor = f
		index[f] = i
	}

	for _, n := range g.nodes {
		i, ok := index[n.Floor]
		if !ok {
			continue
		}
		s := &stats[i]
		s.Nodes++
		switch {
		case n.Kind == model.KindRoom:
			s.Rooms++
		case n.Kind.IsVertical():
			s.Vertical++
		case n.Kind == model.KindObstacle:
			s.Obstacles++
		}
	}

	g.eachEdge(func(a, b *model.Node, _ float64) {
		ia, okA := index[a.Floor]
		ib, okB := index[b.Floor]
		if !okA || !okB {
			return
		}
		if ia == ib {
			stats[ia].Edges++
			return
		}
		stats[min(ia, ib)].LinksAbove++
	})
	return stats
}

// View returns a serializable copy of one floor, or of the whole campus
// when floor is empty. Edges leaving the floor are left out.
func (g *Graph) View(floor model.Floor) *model.GraphView {
	view := model.NewGraphView(floor)
	for _, n := range g.nodes {
		if floor == "" || n.Floor == floor {
			view.AddNode(n)
		}
	}
	g.eachEdge(func(a, b *model.Node, w float64) {
		if floor != "" && (a.Floor != floor || b.Floor != floor) {
			return
		}
		view.AddEdge(&model.EdgeView{
			Source:     a.Key,
			Target:     b.Key,
			Weight:     w,
			InterFloor: a.Floor != b.Floor,
		})
	})
	return view
}

// eachEdge visits every edge once, lower ID first, in ID order.
func (g *Graph) eachEdge(fn func(a, b *model.Node, w float64)) {
	for _, a := range g.nodes {
		for _, b := range g.Neighbors(a) {
			if b.ID() <= a.ID() {
				continue
			}
			w, _ := g.graph.Weight(a.ID(), b.ID())
			fn(a, b, w)
		}
	}
}
