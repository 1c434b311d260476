package floorplan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ritzau/campus-nav/pkg/model"
)

// ErrSourceNotFound is returned when a floor has no floor plan.
var ErrSourceNotFound = errors.New("floor plan not found")

// DefaultPattern names floor plan files; %s is the floor label.
const DefaultPattern = "Floor_%s.svg"

// Source supplies raw floor plan documents by floor.
type Source interface {
	Read(ctx context.Context, floor model.Floor) ([]byte, error)
}

// FileSource reads floor plans from a directory.
type FileSource struct {
	Dir     string
	Pattern string
}

// NewFileSource creates a source reading dir/<pattern>.
func NewFileSource(dir, pattern string) *FileSource {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &FileSource{Dir: dir, Pattern: pattern}
}

// Path returns the file a floor is read from.
func (s *FileSource) Path(floor model.Floor) string {
	return filepath.Join(s.Dir, fmt.Sprintf(s.Pattern, floor))
}

func (s *FileSource) Read(ctx context.Context, floor model.Floor) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path(floor)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read floor plan %s: %w", path, err)
	}
	return data, nil
}

// FloorFromPath returns the floor a file name belongs to under pattern.
func FloorFromPath(pattern, path string) (model.Floor, bool) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	prefix, suffix, ok := strings.Cut(pattern, "%s")
	if !ok {
		return "", false
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return "", false
	}
	label := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
	if label == "" || len(name) < len(prefix)+len(suffix) {
		return "", false
	}
	return model.Floor(label), true
}

// MemorySource serves floor plans held in memory. Errors take precedence
// over documents for the same floor.
type MemorySource struct {
	Documents map[model.Floor]string
	Errors    map[model.Floor]error
}

func (m *MemorySource) Read(ctx context.Context, floor model.Floor) ([]byte, error) {
	if err, ok := m.Errors[floor]; ok {
		return nil, err
	}
	doc, ok := m.Documents[floor]
	if !ok {
		return nil, fmt.Errorf("%w: floor %s", ErrSourceNotFound, floor)
	}
	return []byte(doc), nil
}

// Loader reads and parses floor plans.
type Loader struct {
	Source Source
	Parser *Parser
}

// NewLoader creates a loader over src.
func NewLoader(src Source) *Loader {
	return &Loader{Source: src, Parser: NewParser()}
}

// Load returns the parsed floor plan for one floor.
func (l *Loader) Load(ctx context.Context, floor model.Floor) (*Document, error) {
	data, err := l.Source.Read(ctx, floor)
	if err != nil {
		return nil, err
	}
	doc, err := l.Parser.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("floor %s: %w", floor, err)
	}
	return doc, nil
}
