package navigation

import (
	"time"

	"github.com/google/uuid"
	"github.com/ritzau/campus-nav/pkg/directory"
	"github.com/ritzau/campus-nav/pkg/graph"
	"github.com/ritzau/campus-nav/pkg/pathfind"
)

// Snapshot is one immutable generation of navigation data. A rebuild
// produces a new snapshot; existing ones are never modified.
type Snapshot struct {
	ID        string
	Graph     *graph.Graph
	Report    *graph.BuildReport
	Directory *directory.Directory
	BuiltAt   time.Time

	finder *pathfind.Finder
}

// NewSnapshot bundles a built graph with its room directory. A nil
// directory is derived from the graph's room nodes.
func NewSnapshot(g *graph.Graph, report *graph.BuildReport, dir *directory.Directory, opts pathfind.Options) *Snapshot {
	if dir == nil {
		dir = directory.FromGraph(g)
	}
	return &Snapshot{
		ID:        uuid.NewString(),
		Graph:     g,
		Report:    report,
		Directory: dir,
		BuiltAt:   time.Now(),
		finder:    pathfind.NewFinder(g, opts),
	}
}

// withDirectory returns a copy that serves a different room directory.
func (s *Snapshot) withDirectory(dir *directory.Directory) *Snapshot {
	next := *s
	next.ID = uuid.NewString()
	next.Directory = dir
	if dir == nil {
		next.Directory = directory.FromGraph(s.Graph)
	}
	return &next
}

// Summary describes a snapshot for status endpoints.
type Summary struct {
	ID              string             `json:"id"`
	BuiltAt         time.Time          `json:"builtAt"`
	Floors          []graph.FloorStats `json:"floors"`
	Nodes           int                `json:"nodes"`
	Edges           int                `json:"edges"`
	InterFloorEdges int                `json:"interFloorEdges"`
	Rooms           int                `json:"rooms"`
	Warnings        []string           `json:"warnings,omitempty"`
	FloorErrors     map[string]string  `json:"floorErrors,omitempty"`
}

// Summary returns a description of the snapshot.
func (s *Snapshot) Summary() Summary {
	sum := Summary{
		ID:              s.ID,
		BuiltAt:         s.BuiltAt,
		Floors:          s.Graph.Stats(),
		Nodes:           s.Graph.NodeCount(),
		Edges:           s.Graph.EdgeCount(),
		InterFloorEdges: s.Graph.InterFloorEdgeCount(),
		Rooms:           s.Directory.Len(),
	}
	if s.Report != nil {
		sum.Warnings = s.Report.Warnings
		for floor, err := range s.Report.FloorErrors() {
			if sum.FloorErrors == nil {
				sum.FloorErrors = make(map[string]string)
			}
			sum.FloorErrors[string(floor)] = err.Error()
		}
	}
	return sum
}
