package campus

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ritzau/campus-nav/pkg/floorplan"
	"github.com/ritzau/campus-nav/pkg/graph"
	"github.com/ritzau/campus-nav/pkg/metrics"
	"github.com/ritzau/campus-nav/pkg/model"
	"github.com/ritzau/campus-nav/pkg/navigation"
	"github.com/ritzau/campus-nav/pkg/pathfind"
	"github.com/ritzau/campus-nav/pkg/pubsub"
	"github.com/ritzau/campus-nav/pkg/watcher"
)

const (
	floorA = `<svg>
  <rect id="walkable" x="0" y="0" width="100" height="10"/>
  <rect id="stairs1" x="0" y="10" width="10" height="10"/>
  <rect id="A101" x="40" y="10" width="10" height="10"/>
</svg>`
	floorB = `<svg>
  <rect id="walkable" x="0" y="0" width="100" height="10"/>
  <rect id="stairs1" x="0" y="10" width="10" height="10"/>
  <rect id="B201" x="40" y="10" width="10" height="10"/>
</svg>`
)

type fixture struct {
	runner  *Runner
	source  *floorplan.MemorySource
	service *navigation.Service
	pub     *pubsub.SSEPublisher
	reg     *metrics.Registry
}

func newFixture(t *testing.T, rooms string) *fixture {
	t.Helper()
	src := &floorplan.MemorySource{Documents: map[model.Floor]string{"A": floorA, "B": floorB}}
	svc := navigation.NewService(nil)
	pub := pubsub.NewSSEPublisher()
	pub.ConfigureTopic(pubsub.TopicCampusStatus, pubsub.TopicConfig{BufferSize: 10, ReplayAll: true})
	t.Cleanup(func() { pub.Close() })
	reg := metrics.NewRegistry()

	opts := Options{
		Floors: []model.Floor{"A", "B"},
		Graph:  graph.DefaultOptions(),
		Search: pathfind.DefaultOptions(),
		Rooms:  rooms,
	}
	return &fixture{
		runner:  NewRunner(opts, src, svc, pub, reg),
		source:  src,
		service: svc,
		pub:     pub,
		reg:     reg,
	}
}

func (f *fixture) states(t *testing.T) []string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := f.pub.Subscribe(ctx, pubsub.TopicCampusStatus)
	if err != nil {
		t.Fatal(err)
	}

	var states []string
	for {
		select {
		case ev := <-sub.Events():
			var st pubsub.CampusStatus
			if err := json.Unmarshal(ev.Data, &st); err != nil {
				t.Fatal(err)
			}
			states = append(states, st.State)
		case <-time.After(50 * time.Millisecond):
			return states
		}
	}
}

func TestBuild(t *testing.T) {
	f := newFixture(t, "")

	if got := f.runner.Status().State; got != pubsub.StateBuilding {
		t.Errorf("initial state = %q", got)
	}

	snap, err := f.runner.Build(context.Background(), "startup")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if f.service.Snapshot() != snap {
		t.Error("Build() did not swap the snapshot in")
	}
	if snap.Graph.InterFloorEdgeCount() != 1 || snap.Directory.Len() != 2 {
		t.Errorf("snapshot = %+v", snap.Summary())
	}

	status := f.runner.Status()
	if status.State != pubsub.StateReady || status.Snapshot != snap.ID || status.Nodes != 6 {
		t.Errorf("Status() = %+v", status)
	}
	if got := f.states(t); len(got) != 2 || got[0] != pubsub.StateBuilding || got[1] != pubsub.StateReady {
		t.Errorf("published states = %v", got)
	}
	if got := testutil.ToFloat64(f.reg.BuildsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("builds{success} = %v", got)
	}
	if got := testutil.ToFloat64(f.reg.GraphNodes); got != 6 {
		t.Errorf("graph nodes = %v", got)
	}

	if _, err := f.service.Navigate(context.Background(), "A101", "B201"); err != nil {
		t.Errorf("Navigate() after Build() error = %v", err)
	}
}

func TestBuildPartialFailure(t *testing.T) {
	f := newFixture(t, "")
	f.source.Documents["B"] = "<svg><rect"

	if _, err := f.runner.Build(context.Background(), "startup"); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	status := f.runner.Status()
	if status.State != pubsub.StateDegraded || len(status.FailedFloors) != 1 || status.FailedFloors[0] != "B" {
		t.Errorf("Status() = %+v", status)
	}
	if got := testutil.ToFloat64(f.reg.FloorFailuresTotal.WithLabelValues("B")); got != 1 {
		t.Errorf("floor failures{B} = %v", got)
	}
}

func TestRebuildFailureKeepsSnapshot(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	first, err := f.runner.Build(ctx, "startup")
	if err != nil {
		t.Fatal(err)
	}

	f.source.Documents = nil
	if _, err := f.runner.Build(ctx, "floor plan changed"); !errors.Is(err, graph.ErrNoFloors) {
		t.Fatalf("Build() error = %v, want ErrNoFloors", err)
	}

	if f.service.Snapshot() != first {
		t.Error("failed rebuild replaced the served snapshot")
	}
	status := f.runner.Status()
	if status.State != pubsub.StateError || status.Snapshot != first.ID || len(status.FailedFloors) != 2 {
		t.Errorf("Status() = %+v", status)
	}
	if got := testutil.ToFloat64(f.reg.GraphReady); got != 1 {
		t.Errorf("graph ready = %v, want 1 while the old graph is served", got)
	}
	if got := testutil.ToFloat64(f.reg.BuildsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("builds{failure} = %v", got)
	}
}

func TestBuildFailureWithoutSnapshot(t *testing.T) {
	f := newFixture(t, "")
	f.source.Documents = nil

	if _, err := f.runner.Build(context.Background(), "startup"); err == nil {
		t.Fatal("Build() should fail without floor plans")
	}
	if got := testutil.ToFloat64(f.reg.GraphReady); got != 0 {
		t.Errorf("graph ready = %v, want 0", got)
	}
	if _, err := f.service.Navigate(context.Background(), "A101", "B201"); !errors.Is(err, navigation.ErrGraphUnavailable) {
		t.Errorf("Navigate() error = %v, want ErrGraphUnavailable", err)
	}
}

func TestRoomsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	write := func(content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(`rooms:
  - id: lecture
    name: Lecture Hall
    floor: A
    node: A101
`)

	f := newFixture(t, path)
	ctx := context.Background()

	if err := f.runner.ReloadDirectory(ctx); !errors.Is(err, navigation.ErrGraphUnavailable) {
		t.Errorf("ReloadDirectory() before Build() error = %v", err)
	}

	snap, err := f.runner.Build(ctx, "startup")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Directory.Len() != 1 {
		t.Fatalf("directory has %d rooms, want 1", snap.Directory.Len())
	}
	if _, err := f.service.Navigate(ctx, "Lecture Hall", "B201"); err != nil {
		t.Errorf("Navigate(Lecture Hall) error = %v", err)
	}

	write(`rooms:
  - id: lecture
    name: Lecture Hall
    floor: A
    node: A101
  - id: lab
    name: Lab
    floor: B
    node: B201
`)
	if err := f.runner.ReloadDirectory(ctx); err != nil {
		t.Fatalf("ReloadDirectory() error = %v", err)
	}
	if got := f.service.Snapshot(); got.Graph != snap.Graph || got.Directory.Len() != 2 {
		t.Errorf("after reload: same graph = %v, rooms = %d", got.Graph == snap.Graph, got.Directory.Len())
	}

	write("rooms: [")
	if err := f.runner.ReloadDirectory(ctx); err == nil {
		t.Error("ReloadDirectory() should fail for invalid YAML")
	}
	if got := f.service.Snapshot().Directory.Len(); got != 2 {
		t.Errorf("failed reload changed the directory to %d rooms", got)
	}
	if got := testutil.ToFloat64(f.reg.DirectoryReloadsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("directory reloads{failure} = %v", got)
	}
}

func TestMissingRoomsFileFallsBackToGraph(t *testing.T) {
	f := newFixture(t, filepath.Join(t.TempDir(), "missing.yaml"))

	snap, err := f.runner.Build(context.Background(), "startup")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Directory.Len() != 2 {
		t.Errorf("directory has %d rooms, want the 2 graph rooms", snap.Directory.Len())
	}
}

func TestApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	if err := os.WriteFile(path, []byte("rooms:\n  - {id: lab, name: Lab, floor: B, node: B201}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, path)
	ctx := context.Background()

	first, err := f.runner.Build(ctx, "startup")
	if err != nil {
		t.Fatal(err)
	}

	events := make(chan watcher.ChangeEvent, 2)
	events <- watcher.ChangeEvent{Type: watcher.ChangeTypeRooms, Paths: []string{path}}
	close(events)
	f.runner.Apply(ctx, events)

	afterRooms := f.service.Snapshot()
	if afterRooms == first || afterRooms.Graph != first.Graph {
		t.Error("room change should keep the graph and swap the directory")
	}

	f.source.Documents["A"] = floorA[:len(floorA)-len("</svg>")] + `<rect id="A102" x="70" y="10" width="10" height="10"/></svg>`
	events = make(chan watcher.ChangeEvent, 1)
	events <- watcher.ChangeEvent{Type: watcher.ChangeTypeFloorPlan, Paths: []string{"Floor_A.svg"}, Floors: []model.Floor{"A"}}
	close(events)
	f.runner.Apply(ctx, events)

	rebuilt := f.service.Snapshot()
	if rebuilt.Graph == first.Graph || rebuilt.Graph.NodeCount() != 7 {
		t.Errorf("floor plan change did not rebuild: %d nodes", rebuilt.Graph.NodeCount())
	}
	if f.runner.Status().Reason == "startup" {
		t.Error("status reason not updated by rebuild")
	}
}
