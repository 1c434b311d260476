package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Floor is a floor label such as "A". Floors are ordered by the configured
// floor list, not lexically.
type Floor string

// NodeKind is the closed set of roles a floor-plan area can play during
// navigation.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindWalkable
	KindObstacle
	KindRoom
	KindStairs
	KindElevator
)

var kindNames = [...]string{
	KindOther:    "other",
	KindWalkable: "walkable",
	KindObstacle: "obstacle",
	KindRoom:     "room",
	KindStairs:   "stairs",
	KindElevator: "elevator",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
	return kindNames[k]
}

// IsVertical reports whether the kind connects floors.
func (k NodeKind) IsVertical() bool {
	return k == KindStairs || k == KindElevator
}

// MarshalText encodes the kind by name so JSON output stays readable.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *NodeKind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = NodeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", text)
}

// Classifier maps a floor-plan identifier to a NodeKind. Prefix matching is
// case-insensitive.
type Classifier struct {
	StairsPrefixes   []string
	ElevatorPrefixes []string
	WalkablePrefixes []string
	// ObstacleMarker matches anywhere in the identifier.
	ObstacleMarker string
	// RoomPattern matches identifiers of specific rooms, e.g. "B204".
	RoomPattern *regexp.Regexp
}

// DefaultRoomPattern is a floor letter followed by a digit.
const DefaultRoomPattern = `^[A-Za-z][0-9]`

// DefaultClassifier returns the naming conventions used by the campus maps.
func DefaultClassifier() Classifier {
	return Classifier{
		StairsPrefixes:   []string{"stairs"},
		ElevatorPrefixes: []string{"elevator"},
		WalkablePrefixes: []string{"walkable", "corridor", "hallway"},
		ObstacleMarker:   "obstacle",
		RoomPattern:      regexp.MustCompile(DefaultRoomPattern),
	}
}

// Classify returns the kind of an identifier. Obstacles win over every other
// match, then vertical transport, walkable areas and rooms.
func (c Classifier) Classify(id string) NodeKind {
	lower := strings.ToLower(strings.TrimSpace(id))
	if lower == "" {
		return KindOther
	}

	if c.ObstacleMarker != "" && strings.Contains(lower, strings.ToLower(c.ObstacleMarker)) {
		return KindObstacle
	}
	if hasAnyPrefix(lower, c.StairsPrefixes) {
		return KindStairs
	}
	if hasAnyPrefix(lower, c.ElevatorPrefixes) {
		return KindElevator
	}
	if hasAnyPrefix(lower, c.WalkablePrefixes) {
		return KindWalkable
	}
	if c.RoomPattern != nil && c.RoomPattern.MatchString(strings.TrimSpace(id)) {
		return KindRoom
	}
	return KindOther
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
