package campus

import (
	"context"
	"fmt"
	"time"

	"github.com/ritzau/campus-nav/pkg/watcher"
)

// Debounce timings for Watch.
const (
	QuietPeriod = 500 * time.Millisecond
	MaxWait     = 5 * time.Second
)

// Watch rebuilds when floor plans change and reloads the room directory
// when only the room file changes. It returns when ctx is done.
func (r *Runner) Watch(ctx context.Context, maps, pattern string) error {
	fw, err := watcher.NewFileWatcher(maps, pattern, r.opts.Rooms)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	d := watcher.NewDebouncer(fw.Events(), QuietPeriod, MaxWait)
	d.Start(ctx)
	r.Apply(ctx, d.Output())
	return ctx.Err()
}

// Apply acts on change events until the channel closes.
func (r *Runner) Apply(ctx context.Context, events <-chan watcher.ChangeEvent) {
	for event := range events {
		changes := watcher.AnalyzeChanges(event)
		r.log.Info("change detected", "type", event.Type, "files", len(changes.ChangedFiles), "floors", changes.Floors)

		switch {
		case changes.NeedRebuild:
			reason := fmt.Sprintf("floor plans changed: %v", changes.Floors)
			if _, err := r.Build(ctx, reason); err != nil {
				r.log.Warn("rebuild failed", "error", err)
			}
		case changes.NeedRoomsReload:
			if err := r.ReloadDirectory(ctx); err != nil {
				r.log.Warn("room directory reload failed", "error", err)
			}
		}
	}
}
