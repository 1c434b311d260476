package watcher

import (
	"context"
	"time"

	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/model"
)

// Debouncer batches rapid changes so that saving several floor plans at
// once causes one rebuild.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a debouncer that flushes after quietPeriod without
// changes, or maxWait after the first change of a batch.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins debouncing in the background.
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

type batch struct {
	paths     map[ChangeType][]string
	seen      map[string]bool
	floors    []model.Floor
	floorSeen map[model.Floor]bool
	count     int
}

func newBatch() *batch {
	return &batch{
		paths:     make(map[ChangeType][]string),
		seen:      make(map[string]bool),
		floorSeen: make(map[model.Floor]bool),
	}
}

func (b *batch) add(e ChangeEvent) {
	b.count++
	for _, p := range e.Paths {
		if !b.seen[p] {
			b.seen[p] = true
			b.paths[e.Type] = append(b.paths[e.Type], p)
		}
	}
	for _, f := range e.Floors {
		if !b.floorSeen[f] {
			b.floorSeen[f] = true
			b.floors = append(b.floors, f)
		}
	}
}

// events returns floor plan changes first, since a rebuild also reloads the
// room directory.
func (b *batch) events() []ChangeEvent {
	now := time.Now()
	var out []ChangeEvent
	if paths := b.paths[ChangeTypeFloorPlan]; len(paths) > 0 {
		out = append(out, ChangeEvent{Type: ChangeTypeFloorPlan, Paths: paths, Floors: b.floors, Timestamp: now})
	}
	if paths := b.paths[ChangeTypeRooms]; len(paths) > 0 {
		out = append(out, ChangeEvent{Type: ChangeTypeRooms, Paths: paths, Timestamp: now})
	}
	return out
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	quiet := time.NewTimer(d.quietPeriod)
	quiet.Stop()
	maxWait := time.NewTimer(d.maxWait)
	maxWait.Stop()
	defer quiet.Stop()
	defer maxWait.Stop()

	pending := newBatch()
	flush := func() {
		quiet.Stop()
		maxWait.Stop()
		if pending.count == 0 {
			return
		}
		logging.Debug("flushing accumulated changes", "count", pending.count)
		for _, e := range pending.events() {
			select {
			case d.output <- e:
			case <-ctx.Done():
			}
		}
		pending = newBatch()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			if pending.count == 0 {
				maxWait.Reset(d.maxWait)
			}
			pending.add(event)
			quiet.Reset(d.quietPeriod)

		case <-quiet.C:
			flush()

		case <-maxWait.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events.
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
