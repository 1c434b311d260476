package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/campus-nav/pkg/directory"
	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/model"
	"github.com/ritzau/campus-nav/pkg/navigation"
	"github.com/ritzau/campus-nav/pkg/pubsub"
	"github.com/ritzau/campus-nav/pkg/route"
	"github.com/ritzau/campus-nav/pkg/validation"
)

// NavigateRequest is the body of POST /api/navigate.
type NavigateRequest struct {
	From string `json:"from" validate:"required,max=200"`
	To   string `json:"to" validate:"required,max=200,nefield=From"`
}

// NavigateResponse is a found route.
type NavigateResponse struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Segments   []route.Segment `json:"path_segments"`
	Cost       float64         `json:"cost"`
	Floors     []model.Floor   `json:"floors"`
	Hops       int             `json:"hops"`
	Expansions int             `json:"expansions"`
	Snapshot   string          `json:"snapshot"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Campus   pubsub.CampusStatus `json:"campus"`
	Snapshot *navigation.Summary `json:"snapshot,omitempty"`
}

var topics = map[string]bool{
	pubsub.TopicCampusStatus: true,
	pubsub.TopicDirectory:    true,
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.service.Rooms()
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	if rooms == nil {
		rooms = []directory.Room{}
	}
	respondJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.service.Navigate(r.Context(), req.From, req.To)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			logging.ErrorContext(r.Context(), "navigation failed", "error", err)
		}
		respondError(w, code, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, NavigateResponse{
		Status:     statusSuccess,
		Message:    fmt.Sprintf("Path found from %s to %s", req.From, req.To),
		Segments:   res.Route.Segments,
		Cost:       res.Route.Cost,
		Floors:     res.Route.Floors,
		Hops:       res.Route.Hops,
		Expansions: res.Expansions,
		Snapshot:   res.Snapshot,
	})
}

func (s *Server) handleFloors(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()
	if snap == nil {
		respondError(w, http.StatusServiceUnavailable, navigation.ErrGraphUnavailable.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap.Graph.Stats())
}

func (s *Server) handleFloorGraph(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()
	if snap == nil {
		respondError(w, http.StatusServiceUnavailable, navigation.ErrGraphUnavailable.Error())
		return
	}
	floor := model.Floor(mux.Vars(r)["floor"])
	if snap.Graph.FloorIndex(floor) < 0 {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown floor %q", floor))
		return
	}
	respondJSON(w, http.StatusOK, snap.Graph.View(floor))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var resp StatusResponse
	if s.status != nil {
		resp.Campus = s.status.Status()
	}
	if snap := s.service.Snapshot(); snap != nil {
		sum := snap.Summary()
		resp.Snapshot = &sum
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if !topics[topic] || s.publisher == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown topic %q", topic))
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	// Initial comment so that clients see the stream open.
	fmt.Fprint(w, ": connected\n\n")
	if flusher != nil {
		flusher.Flush()
	}

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.DebugContext(r.Context(), "event stream closed", "topic", topic, "error", err)
				return
			}
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.service.Snapshot() == nil {
		respondError(w, http.StatusServiceUnavailable, navigation.ErrGraphUnavailable.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
