package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case event := <-sub.Events():
		return event
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func expectNothing(t *testing.T, sub Subscription) {
	t.Helper()
	select {
	case event := <-sub.Events():
		t.Errorf("unexpected event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReplay(t *testing.T) {
	tests := []struct {
		name     string
		config   TopicConfig
		publish  int
		versions []int
	}{
		{"replay all trims to buffer", TopicConfig{BufferSize: 3, ReplayAll: true}, 5, []int{3, 4, 5}},
		{"replay last only", TopicConfig{BufferSize: 5}, 3, []int{3}},
		{"no buffer", TopicConfig{}, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := NewSSEPublisher()
			defer pub.Close()
			pub.ConfigureTopic(TopicCampusStatus, tt.config)

			for i := 1; i <= tt.publish; i++ {
				if err := pub.Publish(TopicCampusStatus, StateBuilding, CampusStatus{State: StateBuilding, Nodes: i}); err != nil {
					t.Fatalf("Publish() error = %v", err)
				}
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sub, err := pub.Subscribe(ctx, TopicCampusStatus)
			if err != nil {
				t.Fatalf("Subscribe() error = %v", err)
			}
			defer sub.Close()

			for _, want := range tt.versions {
				if got := receive(t, sub).Version; got != want {
					t.Errorf("replayed version = %d, want %d", got, want)
				}
			}
			expectNothing(t, sub)
		})
	}
}

func TestLiveDelivery(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicCampusStatus)
	if err != nil {
		t.Fatal(err)
	}
	other, err := pub.Subscribe(ctx, TopicDirectory)
	if err != nil {
		t.Fatal(err)
	}

	status := CampusStatus{State: StateReady, Snapshot: "abc", Nodes: 12, FailedFloors: []string{"C"}}
	if err := pub.Publish(TopicCampusStatus, StateReady, status); err != nil {
		t.Fatal(err)
	}

	event := receive(t, sub)
	if event.Topic != TopicCampusStatus || event.Type != StateReady || event.Version != 1 {
		t.Errorf("event = %+v", event)
	}
	var got CampusStatus
	if err := json.Unmarshal(event.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Snapshot != "abc" || got.Nodes != 12 || len(got.FailedFloors) != 1 {
		t.Errorf("payload = %+v", got)
	}
	expectNothing(t, other)
}

func TestContextCancelUnsubscribes(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := pub.Subscribe(ctx, TopicCampusStatus); err != nil {
		t.Fatal(err)
	}
	if n := pub.Subscribers(TopicCampusStatus); n != 1 {
		t.Fatalf("Subscribers() = %d, want 1", n)
	}

	cancel()
	deadline := time.Now().Add(time.Second)
	for pub.Subscribers(TopicCampusStatus) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription not removed after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClose(t *testing.T) {
	pub := NewSSEPublisher()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicCampusStatus)
	if err != nil {
		t.Fatal(err)
	}

	if err := pub.Close(); err != nil {
		t.Fatal(err)
	}
	if _, open := <-sub.Events(); open {
		t.Error("events channel still open after Close()")
	}
	if err := pub.Publish(TopicCampusStatus, StateReady, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() after Close() error = %v, want ErrClosed", err)
	}
	if _, err := pub.Subscribe(ctx, TopicCampusStatus); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe() after Close() error = %v, want ErrClosed", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestPublishUnmarshalable(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()
	if err := pub.Publish(TopicCampusStatus, StateError, make(chan int)); err == nil {
		t.Error("Publish() should fail for a value that cannot be marshaled")
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	event := Event{Topic: TopicCampusStatus, Type: StateReady, Data: json.RawMessage(`{"state":"ready"}`), Version: 2}
	if err := WriteSSE(&buf, event); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "event: ready\ndata: {") || !strings.HasSuffix(out, "}\n\n") {
		t.Errorf("WriteSSE() = %q", out)
	}
	if !strings.Contains(out, `"data":{"state":"ready"}`) {
		t.Errorf("WriteSSE() payload missing: %q", out)
	}
}
