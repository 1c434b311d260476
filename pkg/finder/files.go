package finder

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ritzau/campus-nav/pkg/floorplan"
	"github.com/ritzau/campus-nav/pkg/model"
)

// FloorPlanFile is a floor plan found on disk.
type FloorPlanFile struct {
	Floor model.Floor
	Path  string
}

// FindFloorPlans walks the map directory and returns every file matching the
// floor plan pattern, sorted by path. Hidden directories are skipped.
func FindFloorPlans(root, pattern string) ([]FloorPlanFile, error) {
	var found []FloorPlanFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if floor, ok := floorplan.FloorFromPath(pattern, path); ok {
			found = append(found, FloorPlanFile{Floor: floor, Path: path})
		}
		return nil
	})

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, err
}

// Unconfigured returns the floor plans whose floor is not in floors.
func Unconfigured(files []FloorPlanFile, floors []model.Floor) []FloorPlanFile {
	known := make(map[model.Floor]bool, len(floors))
	for _, f := range floors {
		known[f] = true
	}
	var out []FloorPlanFile
	for _, file := range files {
		if !known[file.Floor] {
			out = append(out, file)
		}
	}
	return out
}
