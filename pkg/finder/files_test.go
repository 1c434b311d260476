package finder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ritzau/campus-nav/pkg/model"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindFloorPlans(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Floor_A.svg"))
	writeFile(t, filepath.Join(root, "Floor_B.svg"))
	writeFile(t, filepath.Join(root, "Floor_B.png"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, ".cache", "Floor_C.svg"))
	writeFile(t, filepath.Join(root, "annex", "Floor_X.svg"))

	files, err := FindFloorPlans(root, "Floor_%s.svg")
	if err != nil {
		t.Fatalf("FindFloorPlans() error = %v", err)
	}

	got := map[model.Floor]bool{}
	for _, f := range files {
		got[f.Floor] = true
	}
	for _, want := range []model.Floor{"A", "B", "X"} {
		if !got[want] {
			t.Errorf("FindFloorPlans() missing floor %s in %v", want, files)
		}
	}
	if got["C"] {
		t.Error("FindFloorPlans() should skip hidden directories")
	}
	if len(files) != 3 {
		t.Errorf("FindFloorPlans() found %d files, want 3", len(files))
	}

	extra := Unconfigured(files, []model.Floor{"A", "B"})
	if len(extra) != 1 || extra[0].Floor != "X" {
		t.Errorf("Unconfigured() = %v, want only floor X", extra)
	}
}

func TestFindFloorPlansMissingDir(t *testing.T) {
	if _, err := FindFloorPlans(filepath.Join(t.TempDir(), "nope"), ""); err == nil {
		t.Error("FindFloorPlans() on missing dir expected error")
	}
}
