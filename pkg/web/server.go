package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/metrics"
	"github.com/ritzau/campus-nav/pkg/navigation"
	"github.com/ritzau/campus-nav/pkg/pubsub"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// StatusSource reports the state of the campus build.
type StatusSource interface {
	Status() pubsub.CampusStatus
}

// Options configures a Server.
type Options struct {
	Service   *navigation.Service
	Status    StatusSource
	Publisher pubsub.Publisher
	Metrics   *metrics.Registry
	// RateLimit is the sustained number of navigation requests per second
	// allowed per client. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Server is the HTTP API.
type Server struct {
	router    *mux.Router
	service   *navigation.Service
	status    StatusSource
	publisher pubsub.Publisher
	metrics   *metrics.Registry
	limiter   *clientLimiter
}

// NewServer creates a server and registers its routes.
func NewServer(opts Options) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		service:   opts.Service,
		status:    opts.Status,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
	}
	if opts.RateLimit > 0 {
		s.limiter = newClientLimiter(opts.RateLimit, opts.RateBurst)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware, s.metricsMiddleware, corsMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", s.handleRooms).Methods(http.MethodGet)
	api.Handle("/navigate", s.rateLimitMiddleware(http.HandlerFunc(s.handleNavigate))).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/floors", s.handleFloors).Methods(http.MethodGet)
	api.HandleFunc("/floors/{floor}/graph", s.handleFloorGraph).Methods(http.MethodGet)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/subscribe/{topic}", s.handleSubscribe).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.limiter != nil {
		go s.limiter.evictLoop(ctx, time.Minute, 10*time.Minute)
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("shutting down server")
	// Open event streams end when the publisher closes; Shutdown waits
	// for them.
	if s.publisher != nil {
		s.publisher.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return <-errCh
}
