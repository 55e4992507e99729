// If you are AI: This file implements the health, readiness and metrics endpoints for monitoring and integration tests.

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trinity/internal/core/bus"
)

// Pinger is a dependency checked by /readyz, such as the user database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyResponse represents the /readyz response.
type ReadyResponse struct {
	Status  string `json:"status"`
	Streams int    `json:"streams"`
	Error   string `json:"error,omitempty"`
}

// Service provides health check functionality.
type Service struct {
	registry *bus.Registry
	gatherer prometheus.Gatherer
	db       Pinger
}

// New creates a new health service instance.
// gatherer and db may be nil; /metrics and the database check are then skipped.
func New(registry *bus.Registry, gatherer prometheus.Gatherer, db Pinger) *Service {
	return &Service{registry: registry, gatherer: gatherer, db: db}
}

// RegisterRoutes adds health check routes to the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// handleHealth responds to health check requests.
// Returns 200 OK to indicate the server is running.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleReady reports the stream count and whether dependencies answer.
func (s *Service) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	resp := ReadyResponse{Status: "ready", Streams: s.registry.Count()}
	status := http.StatusOK

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
