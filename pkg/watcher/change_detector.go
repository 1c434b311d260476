package watcher

import "github.com/ritzau/campus-nav/pkg/model"

// ChangeAnalysis says what has to be redone after a batch of changes.
type ChangeAnalysis struct {
	NeedRebuild     bool
	NeedRoomsReload bool
	Floors          []model.Floor
	ChangedFiles    []string
}

// AnalyzeChanges folds change events into the work they require. A floor
// plan change needs a full rebuild, which also reloads the rooms; a room
// file change on its own only reloads the directory.
func AnalyzeChanges(events ...ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{}
	for _, e := range events {
		analysis.ChangedFiles = append(analysis.ChangedFiles, e.Paths...)
		switch e.Type {
		case ChangeTypeFloorPlan:
			analysis.NeedRebuild = true
			analysis.Floors = append(analysis.Floors, e.Floors...)
		case ChangeTypeRooms:
			analysis.NeedRoomsReload = true
		}
	}
	if analysis.NeedRebuild {
		analysis.NeedRoomsReload = false
	}
	return analysis
}
