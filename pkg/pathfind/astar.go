package pathfind

import (
	"container/heap"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ritzau/campus-nav/pkg/geometry"
	"github.com/ritzau/campus-nav/pkg/graph"
	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/model"
)

var (
	// ErrNodeNotFound is returned when the start or goal is not in the graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNoPath is returned when the goal cannot be reached.
	ErrNoPath = errors.New("no path found")
	// ErrSearchAborted is returned when the iteration cap is hit. It wraps
	// ErrNoPath so callers may treat both alike.
	ErrSearchAborted = fmt.Errorf("%w: iteration limit exceeded", ErrNoPath)
)

// DefaultMaxIterations bounds the number of expanded nodes per search.
const DefaultMaxIterations = 50000

// Options controls a search.
type Options struct {
	Heuristic Heuristic
	// Cardinal rejects diagonal moves between nodes on the same floor.
	Cardinal bool
	// CardinalTolerance is how far off-axis a cardinal move may be.
	CardinalTolerance float64
	// MaxIterations caps node expansions; zero means no cap.
	MaxIterations int
}

// DefaultOptions returns free movement with a Euclidean heuristic.
func DefaultOptions() Options {
	return Options{
		Heuristic:         Heuristic{Metric: geometry.Euclidean, FloorPenalty: 2.0},
		CardinalTolerance: 1.0,
		MaxIterations:     DefaultMaxIterations,
	}
}

// Result is a found path.
type Result struct {
	Nodes      []*model.Node
	Cost       float64
	Expansions int
}

// Keys returns the node keys of the path.
func (r *Result) Keys() []string {
	keys := make([]string, len(r.Nodes))
	for i, n := range r.Nodes {
		keys[i] = n.Key
	}
	return keys
}

// Finder runs A* searches over one campus graph. It holds no per-search
// state and is safe for concurrent use.
type Finder struct {
	graph *graph.Graph
	opts  Options
	log   *slog.Logger
}

// NewFinder creates a finder over g. The planar part of the heuristic is
// scaled down when some same-floor edge is cheaper than the distance it
// spans, so searches stay optimal on cost-weighted graphs.
func NewFinder(g *graph.Graph, opts Options) *Finder {
	f := &Finder{graph: g, log: logging.New("pathfind")}
	if scale := planarScale(g, opts.Heuristic.metric()); scale < 1 {
		opts.Heuristic = opts.Heuristic.scaled(scale)
		f.log.Debug("heuristic scaled to edge weights", "scale", scale)
	}
	f.opts = opts
	return f
}

// FindPath searches between two node keys.
func FindPath(g *graph.Graph, startKey, goalKey string, opts Options) (*Result, error) {
	return NewFinder(g, opts).FindPath(startKey, goalKey)
}

// FindPath searches between two node keys.
func (f *Finder) FindPath(startKey, goalKey string) (*Result, error) {
	start, ok := f.graph.Node(startKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, startKey)
	}
	goal, ok := f.graph.Node(goalKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, goalKey)
	}
	return f.Between(start, goal)
}

// Between returns a minimum-cost path from start to goal. Rooms, stairs,
// elevators and obstacles are only entered under the traversal rules; the
// goal itself is always enterable.
func (f *Finder) Between(start, goal *model.Node) (*Result, error) {
	if f.graph.NodeByID(start.ID()) != start {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, start.Key)
	}
	if f.graph.NodeByID(goal.ID()) != goal {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, goal.Key)
	}
	if start == goal {
		return &Result{Nodes: []*model.Node{start}}, nil
	}

	s := newSearch(f, start, goal)
	res, err := s.run()
	switch {
	case errors.Is(err, ErrSearchAborted):
		f.log.Warn("search aborted", "from", start.Key, "to", goal.Key, "expansions", s.expansions)
	case err != nil:
		f.log.Info("no path", "from", start.Key, "to", goal.Key, "expansions", s.expansions)
	default:
		f.log.Debug("path found", "from", start.Key, "to", goal.Key,
			"hops", len(res.Nodes)-1, "cost", res.Cost, "expansions", res.Expansions)
	}
	return res, err
}

type search struct {
	*Finder
	start, goal *model.Node
	crossFloor  bool
	goalFloor   int

	g, f       []float64
	prev       []int64
	open       queue
	seq        int
	expansions int
}

func newSearch(f *Finder, start, goal *model.Node) *search {
	n := f.graph.NodeCount()
	s := &search{
		Finder:     f,
		start:      start,
		goal:       goal,
		crossFloor: start.Floor != goal.Floor,
		goalFloor:  f.graph.FloorIndex(goal.Floor),
		g:          make([]float64, n),
		f:          make([]float64, n),
		prev:       make([]int64, n),
	}
	for i := range s.g {
		s.g[i] = math.Inf(1)
		s.f[i] = math.Inf(1)
		s.prev[i] = -1
	}
	return s
}

func (s *search) heuristic(n *model.Node) float64 {
	delta := 0
	if n.Floor != s.goal.Floor {
		delta = 1
		if i := s.graph.FloorIndex(n.Floor); i >= 0 && s.goalFloor >= 0 {
			delta = i - s.goalFloor
		}
	}
	return s.opts.Heuristic.Estimate(n.Center, s.goal.Center, delta)
}

func (s *search) push(n *model.Node) {
	s.seq++
	heap.Push(&s.open, item{id: n.ID(), f: s.f[n.ID()], seq: s.seq})
}

func (s *search) run() (*Result, error) {
	startID := s.start.ID()
	s.g[startID] = 0
	s.f[startID] = s.heuristic(s.start)
	s.push(s.start)

	for s.open.Len() > 0 {
		it := heap.Pop(&s.open).(item)
		if it.f > s.f[it.id] {
			continue
		}
		current := s.graph.NodeByID(it.id)
		if current == s.goal {
			return s.result(), nil
		}

		s.expansions++
		if s.opts.MaxIterations > 0 && s.expansions > s.opts.MaxIterations {
			return nil, fmt.Errorf("%w after %d expansions", ErrSearchAborted, s.opts.MaxIterations)
		}

		for _, next := range s.graph.Neighbors(current) {
			if next != s.goal && !s.allowed(current, next) {
				continue
			}
			w, _ := s.graph.Weight(current, next)
			tentative := s.g[it.id] + w
			if tentative < s.g[next.ID()] {
				s.g[next.ID()] = tentative
				s.f[next.ID()] = tentative + s.heuristic(next)
				s.prev[next.ID()] = it.id
				s.push(next)
			}
		}
	}
	return nil, ErrNoPath
}

// allowed applies the traversal rules to a move that does not end at the
// goal.
func (s *search) allowed(current, next *model.Node) bool {
	switch next.Kind {
	case model.KindRoom, model.KindObstacle:
		return false
	case model.KindStairs, model.KindElevator:
		if !s.crossFloor && !current.Kind.IsVertical() {
			return false
		}
	}

	if s.opts.Cardinal && current.Floor == next.Floor {
		dx := math.Abs(current.Center.X - next.Center.X)
		dy := math.Abs(current.Center.Y - next.Center.Y)
		if dx > s.opts.CardinalTolerance && dy > s.opts.CardinalTolerance {
			return false
		}
	}
	return true
}

func (s *search) result() *Result {
	var path []*model.Node
	for id := s.goal.ID(); id != -1; id = s.prev[id] {
		path = append(path, s.graph.NodeByID(id))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return &Result{Nodes: path, Cost: s.g[s.goal.ID()], Expansions: s.expansions}
}
