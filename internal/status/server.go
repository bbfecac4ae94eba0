// Package status exposes liveness/readiness probes and a worker-pool
// occupancy snapshot over HTTP, grounded on the teacher's HTTPHealthServer
// (mux-of-endpoints-over-http.Server, context-driven shutdown) but
// generalized from camera health signals to dispatch loop counters, with
// an optional JWT-gated detailed view per spec.md §4.9.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/netsweep/dispatchd/internal/auth"
	"github.com/netsweep/dispatchd/internal/logging"
	"github.com/netsweep/dispatchd/internal/resources"
)

// Config controls whether and where the status server listens.
type Config struct {
	Enabled bool
	Host    string
	Port    int
}

// Snapshot is the dispatch loop's reportable state at a point in time.
type Snapshot struct {
	Running        bool  `json:"running"`
	Ready          bool  `json:"ready"`
	PoolCapacity   int   `json:"pool_capacity"`
	LiveWorkers    int   `json:"live_workers"`
	FreeSlots      int   `json:"free_slots"`
	CompletionSize int   `json:"completion_queue_depth"`
	AckCount       int64 `json:"ack_count"`
	BuryCount      int64 `json:"bury_count"`

	// Resources is only populated on the detailed endpoint.
	Resources *resources.Snapshot `json:"resources,omitempty"`
}

// Reporter is implemented by whatever owns the live dispatch state (the
// dispatch.Loop in production, a fake in tests) so this package never
// depends on the dispatch package directly.
type Reporter interface {
	StatusSnapshot() Snapshot
}

// Server is an HTTP status surface implementing common.Stoppable.
type Server struct {
	cfg      Config
	reporter Reporter
	auth     *auth.Handler      // nil disables the detailed endpoint's auth gate
	sampler  *resources.Sampler // nil omits process resource usage from the detailed view
	logger   *logging.Logger
	server   *http.Server
}

// New builds a Server. authHandler may be nil, in which case /status/detailed
// is served without a bearer-token check (operator opt-out, e.g. local dev).
func New(cfg Config, reporter Reporter, authHandler *auth.Handler, logger *logging.Logger) *Server {
	s := &Server{cfg: cfg, reporter: reporter, auth: authHandler, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/status/detailed", s.handleDetailedStatus)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// WithSampler attaches a process resource sampler, populating the
// Resources field on the detailed status endpoint.
func (s *Server) WithSampler(sampler *resources.Sampler) *Server {
	s.sampler = sampler
	return s
}

// Start runs the server until ctx is cancelled, then shuts it down. It
// returns nil immediately if the server is disabled in config.
func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info("status: server disabled")
		return nil
	}

	s.logger.WithField("address", s.server.Addr).Info("status: starting server")
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return s.Stop(context.Background())
	case err := <-errCh:
		return err
	}
}

// Stop implements common.Stoppable.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.WithError(err).Warn("status: shutdown error")
		return err
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	snap := s.reporter.StatusSnapshot()
	if !snap.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.reporter.StatusSnapshot())
}

func (s *Server) handleDetailedStatus(w http.ResponseWriter, r *http.Request) {
	if s.auth != nil {
		if _, err := s.auth.ValidateBearer(r.Header.Get("Authorization")); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("unauthorized"))
			return
		}
	}
	snap := s.reporter.StatusSnapshot()
	if s.sampler != nil {
		sample := s.sampler.Sample(10 * time.Millisecond)
		snap.Resources = &sample
	}
	writeJSON(w, snap)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
