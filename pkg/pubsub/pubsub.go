package pubsub

import (
	"context"
	"encoding/json"
	"errors"
)

// Topics published by the campus service.
const (
	TopicCampusStatus = "campus_status"
	TopicDirectory    = "room_directory"
)

// Campus states carried in CampusStatus.State and as event types.
const (
	StateBuilding = "building"
	StateReady    = "ready"
	StateDegraded = "degraded"
	StateError    = "error"
)

// ErrClosed is returned after the publisher has been shut down.
var ErrClosed = errors.New("publisher is closed")

// Event is one message on a topic.
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Version int             `json:"version"`
}

// Subscription is a client's view of one topic.
type Subscription interface {
	Topic() string
	Events() <-chan Event
	Close() error
}

// Publisher fans events out to subscribers.
type Publisher interface {
	// Subscribe creates a subscription that is closed when ctx is done.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends data to every subscriber of topic.
	Publish(topic string, eventType string, data any) error

	Close() error
}

// CampusStatus describes the campus graph being served.
type CampusStatus struct {
	State        string   `json:"state"`
	Message      string   `json:"message"`
	Reason       string   `json:"reason,omitempty"`
	Snapshot     string   `json:"snapshot,omitempty"`
	Floors       int      `json:"floors"`
	Nodes        int      `json:"nodes"`
	Edges        int      `json:"edges"`
	FailedFloors []string `json:"failed_floors,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// DirectoryStatus describes a room directory reload.
type DirectoryStatus struct {
	Rooms    int    `json:"rooms"`
	Source   string `json:"source"`
	Snapshot string `json:"snapshot,omitempty"`
	Error    string `json:"error,omitempty"`
}
