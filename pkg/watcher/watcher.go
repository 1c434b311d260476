package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/campus-nav/pkg/floorplan"
	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/model"
)

// ChangeType is the kind of file a change touched.
type ChangeType int

const (
	ChangeTypeFloorPlan ChangeType = iota
	ChangeTypeRooms
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeFloorPlan:
		return "floor_plan"
	case ChangeTypeRooms:
		return "rooms"
	}
	return "unknown"
}

// ChangeEvent is a batch of changes of one type.
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Floors    []model.Floor
	Timestamp time.Time
}

// FileWatcher watches the floor plan directory and the room directory file.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	maps    string
	pattern string
	rooms   string
	events  chan ChangeEvent
}

// NewFileWatcher creates a watcher for floor plans named by pattern in maps.
// rooms is the room directory file, or empty.
func NewFileWatcher(maps, pattern, rooms string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: w,
		maps:    filepath.Clean(maps),
		pattern: pattern,
		events:  make(chan ChangeEvent, 100),
	}
	if rooms != "" {
		fw.rooms = filepath.Clean(rooms)
	}
	return fw, nil
}

// Start adds the watches and processes events until ctx is done. The
// events channel is closed when processing stops.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watcher.Add(fw.maps); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", fw.maps, err)
	}
	// Editors replace files by renaming, so the directory is watched rather
	// than the file itself.
	if fw.rooms != "" {
		if dir := filepath.Dir(fw.rooms); dir != fw.maps {
			if err := fw.watcher.Add(dir); err != nil {
				logging.Warn("failed to watch room directory", "path", fw.rooms, "error", err)
			}
		}
	}

	logging.Info("watching floor plans", "path", fw.maps, "pattern", fw.pattern, "rooms", fw.rooms)
	go fw.processEvents(ctx)
	return nil
}

// Classify returns what kind of file path is, if it is one being watched.
func (fw *FileWatcher) Classify(path string) (ChangeEvent, bool) {
	path = filepath.Clean(path)
	if fw.rooms != "" && path == fw.rooms {
		return ChangeEvent{Type: ChangeTypeRooms, Paths: []string{path}}, true
	}
	if filepath.Dir(path) != fw.maps {
		return ChangeEvent{}, false
	}
	if floor, ok := floorplan.FloorFromPath(fw.pattern, path); ok {
		return ChangeEvent{Type: ChangeTypeFloorPlan, Paths: []string{path}, Floors: []model.Floor{floor}}, true
	}
	return ChangeEvent{}, false
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			change, ok := fw.Classify(event.Name)
			if !ok {
				continue
			}
			change.Timestamp = time.Now()
			logging.Trace("file changed", "path", event.Name, "op", event.Op.String(), "type", change.Type)

			select {
			case fw.events <- change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
