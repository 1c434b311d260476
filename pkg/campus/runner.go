package campus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ritzau/campus-nav/pkg/directory"
	"github.com/ritzau/campus-nav/pkg/floorplan"
	"github.com/ritzau/campus-nav/pkg/graph"
	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/metrics"
	"github.com/ritzau/campus-nav/pkg/model"
	"github.com/ritzau/campus-nav/pkg/navigation"
	"github.com/ritzau/campus-nav/pkg/pathfind"
	"github.com/ritzau/campus-nav/pkg/pubsub"
)

// Options configures what the runner builds.
type Options struct {
	Floors []model.Floor
	Graph  graph.Options
	Search pathfind.Options
	// Rooms is the path of a YAML room directory. When empty the directory
	// is derived from the room nodes of the graph.
	Rooms string
}

// Runner orchestrates campus builds: assemble the graph, swap it into the
// navigation service, publish status and record metrics.
type Runner struct {
	opts      Options
	loader    *floorplan.Loader
	service   *navigation.Service
	publisher pubsub.Publisher
	metrics   *metrics.Registry
	log       *slog.Logger

	mu sync.Mutex // one build at a time

	statusMu sync.RWMutex
	status   pubsub.CampusStatus
}

// NewRunner creates a runner. publisher and reg may be nil.
func NewRunner(opts Options, src floorplan.Source, svc *navigation.Service, pub pubsub.Publisher, reg *metrics.Registry) *Runner {
	return &Runner{
		opts:      opts,
		loader:    floorplan.NewLoader(src),
		service:   svc,
		publisher: pub,
		metrics:   reg,
		log:       logging.New("campus"),
		status:    pubsub.CampusStatus{State: pubsub.StateBuilding, Message: "campus map not built yet"},
	}
}

// Build assembles the campus and starts serving it. When the build fails the
// previous snapshot, if any, keeps being served.
func (r *Runner) Build(ctx context.Context, reason string) (*navigation.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	r.log.Info("building campus graph", "reason", reason, "floors", len(r.opts.Floors))
	r.publish(pubsub.CampusStatus{
		State:   pubsub.StateBuilding,
		Message: "Building campus graph...",
		Reason:  reason,
		Floors:  len(r.opts.Floors),
	})

	g, report, err := graph.Assemble(ctx, r.opts.Floors, r.loader, r.opts.Graph)
	if err != nil {
		serving := r.service.Snapshot() != nil
		r.metrics.RecordBuildFailure(time.Since(start), serving)
		r.log.Error("campus build failed", "reason", reason, "error", err, "serving_previous", serving)

		status := pubsub.CampusStatus{
			State:   pubsub.StateError,
			Message: fmt.Sprintf("Build failed: %v", err),
			Reason:  reason,
		}
		if report != nil {
			status.FailedFloors = failedFloors(report)
		}
		if prev := r.service.Snapshot(); prev != nil {
			status.Snapshot = prev.ID
		}
		r.publish(status)
		return nil, fmt.Errorf("campus build failed: %w", err)
	}

	dir := r.loadDirectory(g)
	snap := navigation.NewSnapshot(g, report, dir, r.opts.Search)
	r.service.Swap(snap)

	failed := failedFloors(report)
	r.metrics.RecordBuild(metrics.GraphSize{
		Nodes:           report.Nodes,
		Edges:           report.Edges,
		InterFloorEdges: report.InterFloorEdges,
		Components:      report.Components,
		Floors:          len(report.Built()),
		FailedFloors:    failed,
	}, time.Since(start))

	status := pubsub.CampusStatus{
		State:        pubsub.StateReady,
		Message:      "Campus map ready",
		Reason:       reason,
		Snapshot:     snap.ID,
		Floors:       len(report.Built()),
		Nodes:        report.Nodes,
		Edges:        report.Edges,
		FailedFloors: failed,
		Warnings:     report.Warnings,
	}
	if len(failed) > 0 || len(report.Warnings) > 0 {
		status.State = pubsub.StateDegraded
		status.Message = "Campus map ready with warnings"
	}
	r.publish(status)

	r.log.Info("campus graph swapped in", "snapshot", snap.ID, "rooms", snap.Directory.Len(),
		"failed_floors", len(failed), "duration", time.Since(start))
	return snap, nil
}

// ReloadDirectory rereads the room directory and serves it with the current
// graph. On failure the current directory stays in place.
func (r *Runner) ReloadDirectory(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if r.service.Snapshot() == nil {
		return navigation.ErrGraphUnavailable
	}

	var dir *directory.Directory
	source := "graph"
	if r.opts.Rooms != "" {
		source = r.opts.Rooms
		var err error
		dir, err = directory.Load(r.opts.Rooms)
		if err != nil {
			r.metrics.RecordDirectory(0, err)
			r.log.Warn("room directory reload failed", "path", r.opts.Rooms, "error", err)
			r.publishDirectory(pubsub.DirectoryStatus{Source: source, Error: err.Error()})
			return err
		}
	}

	if err := r.service.SetDirectory(dir); err != nil {
		return err
	}
	snap := r.service.Snapshot()
	r.publishDirectory(pubsub.DirectoryStatus{Rooms: snap.Directory.Len(), Source: source, Snapshot: snap.ID})
	return nil
}

// Status returns the last published campus status.
func (r *Runner) Status() pubsub.CampusStatus {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	return r.status
}

func (r *Runner) loadDirectory(g *graph.Graph) *directory.Directory {
	if r.opts.Rooms == "" {
		return nil
	}
	dir, err := directory.Load(r.opts.Rooms)
	if err != nil {
		r.metrics.RecordDirectory(0, err)
		r.log.Warn("using rooms from floor plans", "path", r.opts.Rooms, "error", err)
		return nil
	}
	for _, room := range dir.Rooms() {
		if _, ok := graph.FindNode(room.Endpoint(), g); !ok {
			r.log.Debug("room not on any floor plan", "room", room.ID, "node", room.Endpoint())
		}
	}
	return dir
}

func (r *Runner) publish(status pubsub.CampusStatus) {
	r.statusMu.Lock()
	r.status = status
	r.statusMu.Unlock()

	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(pubsub.TopicCampusStatus, status.State, status); err != nil && !errors.Is(err, pubsub.ErrClosed) {
		r.log.Warn("failed to publish campus status", "error", err)
	}
}

func (r *Runner) publishDirectory(status pubsub.DirectoryStatus) {
	if r.publisher == nil {
		return
	}
	eventType := "reloaded"
	if status.Error != "" {
		eventType = pubsub.StateError
	}
	if err := r.publisher.Publish(pubsub.TopicDirectory, eventType, status); err != nil && !errors.Is(err, pubsub.ErrClosed) {
		r.log.Warn("failed to publish directory status", "error", err)
	}
}

func failedFloors(report *graph.BuildReport) []string {
	var out []string
	for floor := range report.FloorErrors() {
		out = append(out, string(floor))
	}
	sort.Strings(out)
	return out
}
