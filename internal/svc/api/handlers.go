// If you are AI: This file implements HTTP API handlers.
// All handlers are fast, allocation-light, and never block media paths.

package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"trinity/internal/core/bus"
	"trinity/internal/svc/reaper"
)

// ServerResponse represents the /api/server response.
type ServerResponse struct {
	Version         string   `json:"version"`
	Uptime          int64    `json:"uptime"` // seconds
	GoVersion       string   `json:"go_version"`
	EnabledServices []string `json:"enabled_services"`
	StreamCount     int      `json:"stream_count"`
}

// StreamInfo represents information about a stream.
type StreamInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ProducerID  uint64    `json:"producer_id"`
	HasProducer bool      `json:"has_producer"`
	HasSession  bool      `json:"has_session"`
	Bytes       int       `json:"bytes"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdate  time.Time `json:"last_update"`
}

// StreamsResponse represents the /api/streams response.
type StreamsResponse struct {
	Streams []StreamInfo `json:"streams"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleServer handles GET /api/server.
// Returns server version, uptime, and enabled services.
// Allocation: JSON encoding only, no per-request heap churn.
func (s *Service) handleServer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	response := ServerResponse{
		Version:         Version,
		Uptime:          getCurrentTime() - s.startTime,
		GoVersion:       runtime.Version(),
		EnabledServices: s.services,
		StreamCount:     s.registry.Count(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleStreams handles GET /api/streams.
// Returns active streams sorted by id.
func (s *Service) handleStreams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	streams := make([]StreamInfo, 0, s.registry.Count())
	s.registry.Range(func(stream *bus.Stream) bool {
		producer, hasProducer := stream.Producer()
		streams = append(streams, StreamInfo{
			ID:          stream.ID().String(),
			Name:        stream.Name(),
			ProducerID:  producer,
			HasProducer: hasProducer,
			HasSession:  stream.Session() != nil,
			Bytes:       stream.ChunkSize(),
			CreatedAt:   stream.CreatedAt(),
			LastUpdate:  stream.LastWrite(),
		})
		return true
	})
	sort.Slice(streams, func(i, j int) bool { return streams[i].ID < streams[j].ID })

	s.writeJSON(w, http.StatusOK, StreamsResponse{Streams: streams})
}

// handleStreamDelete handles DELETE /api/streams/{id}.
// Administrative removal; any attached producer session is closed.
func (s *Service) handleStreamDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/streams/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusBadRequest, "stream id is required")
		return
	}

	stream := s.registry.Remove(bus.StreamID(id))
	if stream == nil {
		s.writeError(w, http.StatusNotFound, "stream not found")
		return
	}
	s.metrics.RecordStreamRemoved("admin")
	if sess := stream.Session(); sess != nil {
		sess.Close()
	}

	s.logger.Info("stream removed by admin", zap.String("stream", id))
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "id": id})
}

// handleReaper handles GET /api/reaper.
// Returns idle reaper configuration and counters.
func (s *Service) handleReaper(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var stats reaper.Stats
	if s.reaper != nil {
		stats = s.reaper.Stats()
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// writeJSON writes a JSON response.
func (s *Service) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
