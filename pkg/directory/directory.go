package directory

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ritzau/campus-nav/pkg/graph"
	"github.com/ritzau/campus-nav/pkg/model"
	"github.com/ritzau/campus-nav/pkg/validation"
	"gopkg.in/yaml.v3"
)

// ErrDuplicateRoom is returned when two rooms share an id.
var ErrDuplicateRoom = errors.New("duplicate room id")

// Room is the metadata the booking side keeps about a room.
type Room struct {
	ID          string      `yaml:"id" json:"roomId" validate:"required,max=64"`
	Name        string      `yaml:"name" json:"roomName" validate:"required,max=200"`
	Type        string      `yaml:"type" json:"type"`
	Description string      `yaml:"description" json:"description"`
	Floor       model.Floor `yaml:"floor" json:"floor" validate:"required"`
	X           float64     `yaml:"x" json:"x_coordinate"`
	Y           float64     `yaml:"y" json:"y_coordinate"`
	// Node is the floor plan identifier of the room when it differs from ID.
	Node string `yaml:"node,omitempty" json:"-"`
}

// Endpoint returns the identifier to look up in the campus graph.
func (r Room) Endpoint() string {
	if r.Node != "" {
		return r.Node
	}
	return r.ID
}

type file struct {
	Rooms []Room `yaml:"rooms"`
}

// Directory is a read-only set of rooms.
type Directory struct {
	rooms  []Room
	byID   map[string]int
	byName map[string]int
}

// New validates rooms and indexes them.
func New(rooms []Room) (*Directory, error) {
	d := &Directory{
		rooms:  make([]Room, 0, len(rooms)),
		byID:   make(map[string]int, len(rooms)),
		byName: make(map[string]int, len(rooms)),
	}
	for i, r := range rooms {
		r.ID = strings.TrimSpace(r.ID)
		r.Name = strings.TrimSpace(r.Name)
		if err := validation.Struct(&r); err != nil {
			return nil, fmt.Errorf("room %d: %w", i+1, err)
		}
		id := fold(r.ID)
		if _, exists := d.byID[id]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoom, r.ID)
		}
		d.byID[id] = len(d.rooms)
		if _, exists := d.byName[fold(r.Name)]; !exists {
			d.byName[fold(r.Name)] = len(d.rooms)
		}
		d.rooms = append(d.rooms, r)
	}
	return d, nil
}

// Parse reads a YAML room list.
func Parse(data []byte) (*Directory, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse room directory: %w", err)
	}
	return New(f.Rooms)
}

// Load reads a YAML room list from disk.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read room directory: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// FromGraph lists every room node of the campus graph. Used when no room
// file is configured.
func FromGraph(g *graph.Graph) *Directory {
	d := &Directory{
		byID:   make(map[string]int),
		byName: make(map[string]int),
	}
	for _, n := range g.Nodes() {
		if n.Kind != model.KindRoom {
			continue
		}
		id := fold(n.Category)
		if _, exists := d.byID[id]; exists {
			continue
		}
		d.byID[id] = len(d.rooms)
		d.byName[id] = len(d.rooms)
		d.rooms = append(d.rooms, Room{
			ID:    strings.TrimSpace(n.Category),
			Name:  strings.TrimSpace(n.Category),
			Type:  n.Kind.String(),
			Floor: n.Floor,
			X:     n.Center.X,
			Y:     n.Center.Y,
		})
	}
	return d
}

// Lookup finds a room by id, then by name, ignoring case and surrounding
// whitespace.
func (d *Directory) Lookup(query string) (Room, bool) {
	if d == nil {
		return Room{}, false
	}
	q := fold(query)
	if i, ok := d.byID[q]; ok {
		return d.rooms[i], true
	}
	if i, ok := d.byName[q]; ok {
		return d.rooms[i], true
	}
	return Room{}, false
}

// Rooms returns every room in file order.
func (d *Directory) Rooms() []Room {
	if d == nil {
		return nil
	}
	return append([]Room(nil), d.rooms...)
}

// Len returns the number of rooms.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rooms)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
