package model

// GraphView is a serializable picture of the campus graph, or of one floor
// of it. It is what the API and the inspect command hand out instead of the
// live graph.
type GraphView struct {
	Floor Floor       `json:"floor,omitempty"`
	Nodes []*Node     `json:"nodes"`
	Edges []*EdgeView `json:"edges"`
}

// EdgeView is an undirected edge between two node keys.
type EdgeView struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Weight     float64 `json:"weight"`
	InterFloor bool    `json:"interFloor,omitempty"`
}

// NewGraphView creates an empty view.
func NewGraphView(floor Floor) *GraphView {
	return &GraphView{
		Floor: floor,
		Nodes: make([]*Node, 0),
		Edges: make([]*EdgeView, 0),
	}
}

// AddNode appends a node to the view.
func (v *GraphView) AddNode(node *Node) {
	v.Nodes = append(v.Nodes, node)
}

// AddEdge appends an edge to the view.
func (v *GraphView) AddEdge(edge *EdgeView) {
	v.Edges = append(v.Edges, edge)
}
