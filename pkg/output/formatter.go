package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/ritzau/campus-nav/pkg/finder"
	"github.com/ritzau/campus-nav/pkg/graph"
	"github.com/ritzau/campus-nav/pkg/model"
	"github.com/ritzau/campus-nav/pkg/route"
)

var (
	bold   = color.New(color.Bold)
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

// PrintRoute prints a route floor by floor.
func PrintRoute(w io.Writer, from, to string, r *route.Route) {
	bold.Fprintf(w, "Route from %s to %s\n", from, to)
	fmt.Fprintf(w, "Cost: %.1f, %d steps, floors %s\n\n", r.Cost, r.Hops, joinFloors(r.Floors))

	for i, seg := range r.Segments {
		cyan.Fprintf(w, "Floor %s\n", seg.Floor)
		for j, id := range seg.NodeTypes {
			c := seg.Coords[j]
			fmt.Fprintf(w, "  %-20s (%.1f, %.1f)\n", label(id), c.X, c.Y)
		}
		if i < len(r.Segments)-1 {
			next := r.Segments[i+1].Floor
			yellow.Fprintf(w, "  take %s %s to floor %s\n", seg.EndNodeKind, seg.EndNodeType, next)
		} else {
			green.Fprintf(w, "  arrive at %s\n", seg.EndNodeType)
		}
	}
}

// PrintBuildReport prints how each floor was built and how the campus
// graph hangs together.
func PrintBuildReport(w io.Writer, report *graph.BuildReport, components [][]*model.Node) {
	bold.Fprintln(w, "Campus Graph Report")
	bold.Fprintln(w, "===================")

	for _, f := range report.Floors {
		if !f.Built {
			red.Fprintf(w, "Floor %s: failed: %s\n", f.Floor, f.Error)
			continue
		}
		fmt.Fprintf(w, "Floor %s: %d nodes, %d edges", f.Floor, f.Nodes, f.Edges)
		if f.Unlabeled > 0 || f.Malformed > 0 {
			yellow.Fprintf(w, " (%d unlabeled, %d malformed)", f.Unlabeled, f.Malformed)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Nodes: %d\n", report.Nodes)
	fmt.Fprintf(w, "Edges: %d (%d between floors, %s linking)\n", report.Edges, report.InterFloorEdges, report.Linking)
	fmt.Fprintf(w, "Built in %s\n", report.Duration.Round(time.Microsecond))

	for _, warning := range report.Warnings {
		yellow.Fprintf(w, "Warning: %s\n", warning)
	}

	printComponents(w, components)
}

func printComponents(w io.Writer, components [][]*model.Node) {
	if len(components) == 0 {
		return
	}
	if len(components) == 1 {
		green.Fprintf(w, "✓ All %d nodes are connected\n", len(components[0]))
		return
	}

	yellow.Fprintf(w, "Components: %d (largest has %d nodes)\n", len(components), len(components[0]))
	for _, comp := range components[1:] {
		names := make([]string, 0, len(comp))
		for _, n := range comp {
			names = append(names, fmt.Sprintf("%s:%s", n.Floor, label(n.Category)))
		}
		fmt.Fprintf(w, "  isolated: %s\n", strings.Join(names, ", "))
	}
}

// PrintUnconfigured lists floor plans on disk that no configured floor
// refers to.
func PrintUnconfigured(w io.Writer, files []finder.FloorPlanFile) {
	if len(files) == 0 {
		return
	}
	yellow.Fprintf(w, "Floor plans not in the configured floors: %d\n", len(files))
	for _, f := range files {
		fmt.Fprintf(w, "  %s (floor %s)\n", f.Path, f.Floor)
	}
}

func joinFloors(floors []model.Floor) string {
	parts := make([]string, len(floors))
	for i, f := range floors {
		parts[i] = string(f)
	}
	return strings.Join(parts, " → ")
}

func label(id string) string {
	if id == "" {
		return "(unlabeled)"
	}
	return id
}
