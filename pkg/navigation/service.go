package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ritzau/campus-nav/pkg/directory"
	"github.com/ritzau/campus-nav/pkg/graph"
	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/metrics"
	"github.com/ritzau/campus-nav/pkg/model"
	"github.com/ritzau/campus-nav/pkg/pathfind"
	"github.com/ritzau/campus-nav/pkg/route"
)

var (
	// ErrInputNotFound means an endpoint did not resolve to a place on the map.
	ErrInputNotFound = errors.New("location not found")
	// ErrGraphUnavailable means no campus graph is being served.
	ErrGraphUnavailable = errors.New("campus map is unavailable")
	// ErrNoPathFound means the endpoints are not connected.
	ErrNoPathFound = errors.New("no path found")
	// ErrSearchAborted means the search gave up. It wraps ErrNoPathFound.
	ErrSearchAborted = fmt.Errorf("%w: search limit reached", ErrNoPathFound)
)

// Endpoint is a resolved start or destination.
type Endpoint struct {
	Query string          `json:"query"`
	Room  *directory.Room `json:"room,omitempty"`
	Node  *model.Node     `json:"node"`
}

// Result is a successful navigation.
type Result struct {
	From       Endpoint     `json:"from"`
	To         Endpoint     `json:"to"`
	Route      *route.Route `json:"route"`
	Expansions int          `json:"expansions"`
	Snapshot   string       `json:"snapshot"`
}

// Service answers navigation requests against the current snapshot.
// Requests read the snapshot pointer once and never lock; Swap replaces it
// atomically.
type Service struct {
	current atomic.Pointer[Snapshot]
	swapMu  sync.Mutex
	metrics *metrics.Registry
	log     *slog.Logger
}

// NewService creates a service with no snapshot. Navigate fails with
// ErrGraphUnavailable until the first Swap.
func NewService(reg *metrics.Registry) *Service {
	return &Service{metrics: reg, log: logging.New("navigation")}
}

// Snapshot returns the snapshot being served, or nil.
func (s *Service) Snapshot() *Snapshot {
	return s.current.Load()
}

// Swap starts serving snap and returns the snapshot it replaced.
func (s *Service) Swap(snap *Snapshot) *Snapshot {
	s.swapMu.Lock()
	defer s.swapMu.Unlock()
	old := s.current.Swap(snap)
	if snap != nil {
		s.metrics.RecordDirectory(snap.Directory.Len(), nil)
	}
	return old
}

// SetDirectory serves a new room directory with the current graph. A nil
// directory falls back to the graph's rooms.
func (s *Service) SetDirectory(dir *directory.Directory) error {
	s.swapMu.Lock()
	defer s.swapMu.Unlock()
	cur := s.current.Load()
	if cur == nil {
		return ErrGraphUnavailable
	}
	next := cur.withDirectory(dir)
	s.current.Store(next)
	s.metrics.RecordDirectory(next.Directory.Len(), nil)
	s.log.Info("room directory replaced", "rooms", next.Directory.Len(), "snapshot", next.ID)
	return nil
}

// Rooms lists the rooms of the current directory.
func (s *Service) Rooms() ([]directory.Room, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrGraphUnavailable
	}
	return snap.Directory.Rooms(), nil
}

// Navigate resolves both endpoints and returns the cheapest route between
// them.
func (s *Service) Navigate(ctx context.Context, from, to string) (*Result, error) {
	start := time.Now()
	res, err := s.navigate(from, to)

	outcome := outcomeOf(err)
	expansions, hops := 0, 0
	if res != nil {
		expansions, hops = res.Expansions, res.Route.Hops
	}
	s.metrics.RecordNavigation(outcome, time.Since(start), expansions, hops)

	switch outcome {
	case metrics.OutcomeSuccess:
		logging.InfoContext(ctx, "route found", "from", from, "to", to, "hops", hops, "cost", res.Route.Cost)
	case metrics.OutcomeAborted:
		logging.WarnContext(ctx, "route search aborted", "from", from, "to", to, "error", err)
	default:
		logging.InfoContext(ctx, "route not found", "from", from, "to", to, "outcome", outcome, "error", err)
	}
	return res, err
}

func (s *Service) navigate(from, to string) (*Result, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrGraphUnavailable
	}

	src, err := snap.resolve(from)
	if err != nil {
		return nil, err
	}
	dst, err := snap.resolve(to)
	if err != nil {
		return nil, err
	}

	found, err := snap.finder.Between(src.Node, dst.Node)
	switch {
	case errors.Is(err, pathfind.ErrSearchAborted):
		return nil, fmt.Errorf("%w between %q and %q", ErrSearchAborted, from, to)
	case errors.Is(err, pathfind.ErrNoPath):
		return nil, fmt.Errorf("%w between %q and %q", ErrNoPathFound, from, to)
	case errors.Is(err, pathfind.ErrNodeNotFound):
		return nil, fmt.Errorf("%w: %v", ErrInputNotFound, err)
	case err != nil:
		return nil, err
	}

	return &Result{
		From:       src,
		To:         dst,
		Route:      route.New(found.Nodes, found.Cost),
		Expansions: found.Expansions,
		Snapshot:   snap.ID,
	}, nil
}

// resolve maps a query to a node: first through the room directory, then
// directly against the graph.
func (s *Snapshot) resolve(query string) (Endpoint, error) {
	ep := Endpoint{Query: strings.TrimSpace(query)}
	if ep.Query == "" {
		return ep, fmt.Errorf("%w: empty location", ErrInputNotFound)
	}

	if room, ok := s.Directory.Lookup(ep.Query); ok {
		if n, ok := graph.FindNode(room.Endpoint(), s.Graph); ok {
			ep.Room = &room
			ep.Node = n
			return ep, nil
		}
	}
	if n, ok := graph.FindNode(ep.Query, s.Graph); ok {
		ep.Node = n
		return ep, nil
	}
	return ep, fmt.Errorf("%w: %q", ErrInputNotFound, ep.Query)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrGraphUnavailable):
		return metrics.OutcomeUnavailable
	case errors.Is(err, ErrInputNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrSearchAborted):
		return metrics.OutcomeAborted
	default:
		return metrics.OutcomeNoPath
	}
}
