package pathfind

import (
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/ritzau/campus-nav/pkg/floorplan"
	"github.com/ritzau/campus-nav/pkg/geometry"
	"github.com/ritzau/campus-nav/pkg/graph"
	"github.com/ritzau/campus-nav/pkg/model"
)

type fixture struct {
	t     *testing.T
	graph *graph.Graph
	nodes map[string]*model.Node
}

func newFixture(t *testing.T, floors ...model.Floor) *fixture {
	t.Helper()
	if len(floors) == 0 {
		floors = []model.Floor{"A"}
	}
	return &fixture{t: t, graph: graph.New(floors...), nodes: map[string]*model.Node{}}
}

func (fx *fixture) add(name string, floor model.Floor, kind model.NodeKind, x, y float64) *model.Node {
	fx.t.Helper()
	n := model.NewNode(name, floor, name, kind, geometry.Rect{X: x, Y: y})
	if err := fx.graph.AddNode(n); err != nil {
		fx.t.Fatal(err)
	}
	fx.nodes[name] = n
	return n
}

func (fx *fixture) link(a, b string, w float64) {
	fx.graph.AddEdge(fx.nodes[a], fx.nodes[b], w)
}

func names(nodes []*model.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Category
	}
	return out
}

// grid builds the 3x3 grid
//
//	A B C
//	D E F
//	G H I
//
// with unit weights, except for the edges listed in heavy.
func grid(t *testing.T, heavy map[[2]string]float64) *fixture {
	fx := newFixture(t)
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"} {
		fx.add(name, "A", model.KindWalkable, float64(i%3), float64(i/3))
	}
	for _, e := range [][2]string{
		{"A", "B"}, {"B", "C"}, {"D", "E"}, {"E", "F"}, {"G", "H"}, {"H", "I"},
		{"A", "D"}, {"D", "G"}, {"B", "E"}, {"E", "H"}, {"C", "F"}, {"F", "I"},
	} {
		w, ok := heavy[e]
		if !ok {
			w = 1
		}
		fx.link(e[0], e[1], w)
	}
	return fx
}

// assertValidPath checks that consecutive nodes are connected and that the
// edge weights add up to the reported cost.
func assertValidPath(t *testing.T, g *graph.Graph, res *Result) {
	t.Helper()
	total := 0.0
	for i := 1; i < len(res.Nodes); i++ {
		w, ok := g.Weight(res.Nodes[i-1], res.Nodes[i])
		if !ok {
			t.Fatalf("path %v uses missing edge %s-%s", names(res.Nodes), res.Nodes[i-1].Key, res.Nodes[i].Key)
		}
		total += w
	}
	if math.Abs(total-res.Cost) > 1e-9 {
		t.Errorf("path cost %v, edges sum to %v", res.Cost, total)
	}
}

func TestGridShortestPath(t *testing.T) {
	fx := grid(t, nil)

	res, err := FindPath(fx.graph, "A", "I", DefaultOptions())
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	if len(res.Nodes) != 5 || res.Cost != 4 {
		t.Errorf("path = %v cost %v, want 5 nodes cost 4", names(res.Nodes), res.Cost)
	}
	if res.Nodes[0].Category != "A" || res.Nodes[4].Category != "I" {
		t.Errorf("path = %v, want A...I", names(res.Nodes))
	}
	assertValidPath(t, fx.graph, res)
}

func TestGridReroutesAroundExpensiveEdge(t *testing.T) {
	heavy := grid(t, map[[2]string]float64{{"B", "E"}: 1000})

	res, err := FindPath(heavy.graph, "A", "I", DefaultOptions())
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}

	acceptable := [][]string{
		{"A", "D", "E", "F", "I"},
		{"A", "D", "E", "H", "I"},
		{"A", "D", "G", "H", "I"},
		{"A", "B", "C", "F", "I"},
	}
	got := names(res.Nodes)
	ok := false
	for _, want := range acceptable {
		if slices.Equal(got, want) {
			ok = true
		}
	}
	if !ok {
		t.Errorf("path = %v, want one of %v", got, acceptable)
	}
	if res.Cost != 4 {
		t.Errorf("cost = %v, want 4", res.Cost)
	}
	assertValidPath(t, heavy.graph, res)
}

func TestStartEqualsGoal(t *testing.T) {
	fx := grid(t, nil)
	res, err := FindPath(fx.graph, "E", "E", DefaultOptions())
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	if len(res.Nodes) != 1 || res.Nodes[0].Key != "E" || res.Cost != 0 || res.Expansions != 0 {
		t.Errorf("result = %+v, want [E] without search", res)
	}
}

func TestMissingNode(t *testing.T) {
	fx := grid(t, nil)
	for _, pair := range [][2]string{{"A", "Z"}, {"Z", "A"}} {
		_, err := FindPath(fx.graph, pair[0], pair[1], DefaultOptions())
		if !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("FindPath(%s, %s) error = %v, want ErrNodeNotFound", pair[0], pair[1], err)
		}
	}

	other := newFixture(t)
	stranger := other.add("X", "A", model.KindWalkable, 0, 0)
	if _, err := NewFinder(fx.graph, DefaultOptions()).Between(fx.nodes["A"], stranger); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Between() with foreign node error = %v, want ErrNodeNotFound", err)
	}
}

func TestNoPath(t *testing.T) {
	fx := newFixture(t)
	fx.add("a", "A", model.KindWalkable, 0, 0)
	fx.add("b", "A", model.KindWalkable, 5, 0)

	_, err := FindPath(fx.graph, "a", "b", DefaultOptions())
	if !errors.Is(err, ErrNoPath) {
		t.Errorf("error = %v, want ErrNoPath", err)
	}
	if errors.Is(err, ErrSearchAborted) {
		t.Error("exhausted search must not report an abort")
	}
}

func TestIterationCap(t *testing.T) {
	fx := newFixture(t)
	prev := ""
	for i := 0; i < 100; i++ {
		name := string(rune('a'+i%26)) + string(rune('0'+i/26))
		fx.add(name, "A", model.KindWalkable, float64(i), 0)
		if prev != "" {
			fx.link(prev, name, 1)
		}
		prev = name
	}

	opts := DefaultOptions()
	opts.MaxIterations = 10
	_, err := FindPath(fx.graph, "a0", prev, opts)
	if !errors.Is(err, ErrSearchAborted) || !errors.Is(err, ErrNoPath) {
		t.Errorf("error = %v, want ErrSearchAborted wrapping ErrNoPath", err)
	}

	opts.MaxIterations = 0
	res, err := FindPath(fx.graph, "a0", prev, opts)
	if err != nil || len(res.Nodes) != 100 {
		t.Errorf("uncapped search = %v, %v", res, err)
	}
}

func TestRoomsAreEndpointsOnly(t *testing.T) {
	fx := newFixture(t)
	fx.add("walkable1", "A", model.KindWalkable, 0, 0)
	fx.add("A101", "A", model.KindRoom, 1, 0)
	fx.add("walkable2", "A", model.KindWalkable, 2, 0)
	fx.add("A102", "A", model.KindRoom, 3, 0)
	fx.link("walkable1", "A101", 1)
	fx.link("A101", "walkable2", 1)
	fx.link("walkable2", "A102", 1)

	if _, err := FindPath(fx.graph, "walkable1", "A102", DefaultOptions()); !errors.Is(err, ErrNoPath) {
		t.Errorf("cutting through A101: error = %v, want ErrNoPath", err)
	}
	res, err := FindPath(fx.graph, "A101", "A102", DefaultOptions())
	if err != nil {
		t.Fatalf("room to room: error = %v", err)
	}
	if got := names(res.Nodes); !slices.Equal(got, []string{"A101", "walkable2", "A102"}) {
		t.Errorf("path = %v", got)
	}
}

func TestObstaclesAreNeverWaypoints(t *testing.T) {
	fx := newFixture(t)
	fx.add("a", "A", model.KindWalkable, 0, 0)
	fx.add("obstacle", "A", model.KindObstacle, 1, 0)
	fx.add("b", "A", model.KindWalkable, 2, 0)
	fx.link("a", "obstacle", 0.1)
	fx.link("obstacle", "b", 0.1)

	if _, err := FindPath(fx.graph, "a", "b", DefaultOptions()); !errors.Is(err, ErrNoPath) {
		t.Errorf("error = %v, want ErrNoPath", err)
	}
}

func TestVerticalTransportGating(t *testing.T) {
	fx := newFixture(t, "A", "B")
	fx.add("start", "A", model.KindWalkable, 0, 0)
	fx.add("stairs1", "A", model.KindStairs, 1, 0)
	fx.add("stairs2", "A", model.KindStairs, 2, 0)
	fx.add("end", "A", model.KindWalkable, 3, 0)
	fx.add("upper", "B", model.KindStairs, 1, 0)
	fx.add("B201", "B", model.KindRoom, 1, 1)
	fx.link("start", "stairs1", 1)
	fx.link("stairs1", "stairs2", 1)
	fx.link("stairs2", "end", 1)
	fx.link("stairs1", "upper", 2)
	fx.link("upper", "B201", 1)

	t.Run("same floor walker may not enter stairs", func(t *testing.T) {
		if _, err := FindPath(fx.graph, "start", "end", DefaultOptions()); !errors.Is(err, ErrNoPath) {
			t.Errorf("error = %v, want ErrNoPath", err)
		}
	})

	t.Run("moving on from inside the stairs is allowed", func(t *testing.T) {
		res, err := FindPath(fx.graph, "stairs1", "end", DefaultOptions())
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got := names(res.Nodes); !slices.Equal(got, []string{"stairs1", "stairs2", "end"}) {
			t.Errorf("path = %v", got)
		}
	})

	t.Run("cross floor uses stairs", func(t *testing.T) {
		res, err := FindPath(fx.graph, "start", "B201", DefaultOptions())
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got := names(res.Nodes); !slices.Equal(got, []string{"start", "stairs1", "upper", "B201"}) {
			t.Errorf("path = %v", got)
		}
		if res.Cost != 4 {
			t.Errorf("cost = %v, want 4", res.Cost)
		}
	})
}

func TestCardinalMovement(t *testing.T) {
	fx := newFixture(t)
	fx.add("S", "A", model.KindWalkable, 0, 0)
	fx.add("M", "A", model.KindWalkable, 1, 1)
	fx.add("P", "A", model.KindWalkable, 2, 0)
	fx.add("X", "A", model.KindWalkable, 2, 2)
	fx.link("S", "M", math.Sqrt2)
	fx.link("M", "X", math.Sqrt2)
	fx.link("S", "P", 2)
	fx.link("P", "X", 2)

	free, err := FindPath(fx.graph, "S", "X", DefaultOptions())
	if err != nil {
		t.Fatalf("free movement: error = %v", err)
	}
	if got := names(free.Nodes); !slices.Equal(got, []string{"S", "M", "X"}) {
		t.Errorf("free path = %v, want diagonal", got)
	}

	opts := DefaultOptions()
	opts.Cardinal = true
	opts.CardinalTolerance = 0.5
	opts.Heuristic.Metric = geometry.Manhattan
	cardinal, err := FindPath(fx.graph, "S", "X", opts)
	if err != nil {
		t.Fatalf("cardinal movement: error = %v", err)
	}
	if got := names(cardinal.Nodes); !slices.Equal(got, []string{"S", "P", "X"}) {
		t.Errorf("cardinal path = %v, want S P X", got)
	}
}

// costFloor lays out a cheap but long detour (v1, h, v2) around an
// expensive corridor segment m:
//
//	s m m g
//	v     v
//	v     v
//	h h h h
func costFloor(t *testing.T) *graph.Graph {
	t.Helper()
	opts := graph.DefaultOptions()
	opts.Weighting = graph.WeightCost

	rects := []floorplan.LabeledRect{
		{ID: "walkable_s", Rect: geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}},
		{ID: "walkable_m", Rect: geometry.Rect{X: 10, Y: 0, Width: 20, Height: 10}, Cost: 100, HasCost: true},
		{ID: "walkable_g", Rect: geometry.Rect{X: 30, Y: 0, Width: 10, Height: 10}},
		{ID: "walkable_v1", Rect: geometry.Rect{X: 0, Y: 10, Width: 5, Height: 100}},
		{ID: "walkable_h", Rect: geometry.Rect{X: 0, Y: 110, Width: 40, Height: 10}},
		{ID: "walkable_v2", Rect: geometry.Rect{X: 35, Y: 10, Width: 5, Height: 100}},
	}
	for i := range rects {
		rects[i].Seq = i + 1
	}
	fg := graph.NewFloorGraph("A", rects, opts)

	g := graph.New("A")
	for _, n := range fg.Nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range fg.Edges {
		g.AddEdge(fg.Nodes[e.From], fg.Nodes[e.To], e.Weight)
	}
	return g
}

func TestCostWeightedGraphIsOptimal(t *testing.T) {
	g := costFloor(t)
	find := func(id string) *model.Node {
		n, ok := graph.FindNode(id, g)
		if !ok {
			t.Fatalf("node %s missing", id)
		}
		return n
	}
	start, goal := find("walkable_s"), find("walkable_g")

	tests := []struct {
		name   string
		metric Metric
	}{
		{"euclidean", geometry.Euclidean},
		{"manhattan", geometry.Manhattan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Heuristic.Metric = tt.metric
			res, err := NewFinder(g, opts).Between(start, goal)
			if err != nil {
				t.Fatal(err)
			}
			want := []string{"walkable_s", "walkable_v1", "walkable_h", "walkable_v2", "walkable_g"}
			if got := names(res.Nodes); !slices.Equal(got, want) {
				t.Errorf("path = %v, want %v", got, want)
			}
			if math.Abs(res.Cost-4) > 1e-9 {
				t.Errorf("cost = %v, want 4", res.Cost)
			}
			assertValidPath(t, g, res)
		})
	}
}

func TestPlanarScale(t *testing.T) {
	fx := grid(t, nil)
	if got := planarScale(fx.graph, geometry.Euclidean); got != 1 {
		t.Errorf("distance-weighted grid scale = %v, want 1", got)
	}

	fx = newFixture(t, "A", "B")
	fx.add("a", "A", model.KindWalkable, 0, 0)
	fx.add("b", "A", model.KindWalkable, 10, 0)
	fx.add("up", "B", model.KindStairs, 100, 0)
	fx.link("a", "b", 2)
	fx.link("b", "up", 0.5)
	if got := planarScale(fx.graph, geometry.Euclidean); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("scale = %v, want 0.2 (inter-floor edges ignored)", got)
	}
}

func TestHeuristic(t *testing.T) {
	h := Heuristic{Metric: geometry.Euclidean}
	if got := h.Estimate(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 3, Y: 4}, 0); got != 5.0 {
		t.Errorf("Euclidean estimate = %v, want 5", got)
	}

	h = Heuristic{Metric: geometry.Manhattan, FloorPenalty: 2}
	if got := h.Estimate(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 3, Y: 4}, -2); got != 11.0 {
		t.Errorf("Manhattan estimate two floors away = %v, want 11", got)
	}

	if got := (Heuristic{}).Estimate(geometry.Point{}, geometry.Point{X: 3, Y: 4}, 0); got != 5.0 {
		t.Errorf("zero heuristic falls back to Euclidean, got %v", got)
	}

	for _, name := range []string{"", "euclidean", "manhattan"} {
		if _, err := MetricByName(name); err != nil {
			t.Errorf("MetricByName(%q) error = %v", name, err)
		}
	}
	if _, err := MetricByName("chebyshev"); err == nil {
		t.Error("MetricByName(chebyshev) expected error")
	}
}

func TestResultKeys(t *testing.T) {
	fx := grid(t, nil)
	res, err := FindPath(fx.graph, "A", "C", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Keys(); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestDeterministic(t *testing.T) {
	fx := grid(t, nil)
	first, err := FindPath(fx.graph, "A", "I", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := FindPath(fx.graph, "A", "I", DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(first.Keys(), again.Keys()) {
			t.Fatalf("run %d returned %v, first run %v", i, again.Keys(), first.Keys())
		}
	}
}

// randomGraph builds a connected-ish single-floor graph whose edge weights
// never undercut the straight-line distance, so the Euclidean heuristic
// stays consistent.
func randomGraph(t *testing.T, seed int64, size int, unit bool) *fixture {
	rng := rand.New(rand.NewSource(seed))
	fx := newFixture(t)
	var keys []string
	for i := 0; i < size; i++ {
		key := "n" + string(rune('A'+i%26)) + string(rune('a'+i/26))
		fx.add(key, "A", model.KindWalkable, rng.Float64()*50, rng.Float64()*50)
		keys = append(keys, key)
	}
	for i := 1; i < size; i++ {
		for k := 0; k < 2; k++ {
			j := rng.Intn(i)
			a, b := fx.nodes[keys[i]], fx.nodes[keys[j]]
			w := 1.0
			if !unit {
				w = geometry.Euclidean(a.Center, b.Center) * (1 + rng.Float64())
			}
			fx.graph.AddEdge(a, b, w)
		}
	}
	return fx
}
