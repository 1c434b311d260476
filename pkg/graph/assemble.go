package graph

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/ritzau/campus-nav/pkg/floorplan"
	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/model"
	"golang.org/x/sync/errgroup"
)

// ErrNoFloors is returned when not a single floor could be built.
var ErrNoFloors = errors.New("no floor could be built")

// FloorReport describes how one floor was built.
type FloorReport struct {
	Floor     model.Floor `json:"floor"`
	Built     bool        `json:"built"`
	Nodes     int         `json:"nodes"`
	Edges     int         `json:"edges"`
	Unlabeled int         `json:"unlabeled"`
	Malformed int         `json:"malformed"`
	Err       error       `json:"-"`
	Error     string      `json:"error,omitempty"`
}

// BuildReport describes a campus build.
type BuildReport struct {
	Floors          []FloorReport `json:"floors"`
	Nodes           int           `json:"nodes"`
	Edges           int           `json:"edges"`
	InterFloorEdges int           `json:"interFloorEdges"`
	Components      int           `json:"components"`
	Linking         string        `json:"linking"`
	Warnings        []string      `json:"warnings,omitempty"`
	Duration        time.Duration `json:"duration"`
}

// Built returns the floors that were built, in floor order.
func (r *BuildReport) Built() []model.Floor {
	var out []model.Floor
	for _, f := range r.Floors {
		if f.Built {
			out = append(out, f.Floor)
		}
	}
	return out
}

// FloorErrors returns the error of every floor that failed.
func (r *BuildReport) FloorErrors() map[model.Floor]error {
	out := make(map[model.Floor]error)
	for _, f := range r.Floors {
		if f.Err != nil {
			out[f.Floor] = f.Err
		}
	}
	return out
}

// Assemble builds every floor and joins them into one campus graph. Floors
// are parsed concurrently but merged in the given order, so the result is
// the same on every run. A floor that fails is reported and left out; its
// neighbours are not linked across the gap. Assemble only fails when no
// floor could be built or ctx is cancelled.
func Assemble(ctx context.Context, floors []model.Floor, loader *floorplan.Loader, opts Options) (*Graph, *BuildReport, error) {
	log := logging.New("graph")
	start := time.Now()

	if len(floors) == 0 {
		return nil, nil, ErrNoFloors
	}

	linker, err := opts.Linker()
	if err != nil {
		return nil, nil, err
	}

	report := &BuildReport{
		Floors:  make([]FloorReport, len(floors)),
		Linking: linker.Name(),
	}
	built := make([]*FloorGraph, len(floors))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, floor := range floors {
		eg.Go(func() error {
			fg, err := BuildFloor(egCtx, loader, floor, opts)
			if ctxErr := egCtx.Err(); ctxErr != nil {
				return ctxErr
			}
			report.Floors[i] = FloorReport{Floor: floor}
			if err != nil {
				report.Floors[i].Err = err
				report.Floors[i].Error = err.Error()
				return nil
			}
			built[i] = fg
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	g := New(floors...)
	var floorErrs []error
	for i, fg := range built {
		fr := &report.Floors[i]
		if fg == nil {
			log.Warn("floor skipped", "floor", fr.Floor, "error", fr.Err)
			floorErrs = append(floorErrs, fmt.Errorf("floor %s: %w", fr.Floor, fr.Err))
			continue
		}
		if err := g.addFloor(fg); err != nil {
			return nil, nil, err
		}
		fr.Built = true
		fr.Nodes = len(fg.Nodes)
		fr.Edges = len(fg.Edges)
		fr.Unlabeled = fg.Unlabeled
		fr.Malformed = fg.Malformed
		log.Debug("floor built", "floor", fg.Floor, "nodes", fr.Nodes, "edges", fr.Edges, "malformed", fr.Malformed)
	}

	if len(floorErrs) == len(floors) {
		return nil, report, fmt.Errorf("%w: %w", ErrNoFloors, errors.Join(floorErrs...))
	}

	for i := 0; i+1 < len(floors); i++ {
		if built[i] == nil || built[i+1] == nil {
			continue
		}
		lower := verticalNodes(built[i].Nodes)
		upper := verticalNodes(built[i+1].Nodes)
		for _, pair := range linker.Link(lower, upper) {
			g.AddEdge(pair[0], pair[1], opts.InterFloorWeight)
		}
	}

	report.Nodes = g.NodeCount()
	report.Edges = g.EdgeCount()
	report.InterFloorEdges = g.InterFloorEdgeCount()
	report.Components = len(g.Components())
	report.Duration = time.Since(start)

	if report.InterFloorEdges == 0 {
		msg := "no inter-floor edges: navigation between floors is impossible"
		report.Warnings = append(report.Warnings, msg)
		log.Warn(msg, "floors", len(report.Built()))
	}
	if n := len(floorErrs); n > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d of %d floors failed to build", n, len(floors)))
	}

	log.Info("campus graph built",
		"floors", len(report.Built()),
		"nodes", report.Nodes,
		"edges", report.Edges,
		"interFloor", report.InterFloorEdges,
		"linking", report.Linking,
		"duration", report.Duration)
	return g, report, nil
}

func (g *Graph) addFloor(fg *FloorGraph) error {
	for _, n := range fg.Nodes {
		if err := g.AddNode(n); err != nil {
			return err
		}
	}
	for _, e := range fg.Edges {
		g.AddEdge(fg.Nodes[e.From], fg.Nodes[e.To], e.Weight)
	}
	return nil
}
