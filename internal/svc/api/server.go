// If you are AI: This file provides HTTP API service integration.
// The API exposes server state and stream administration without blocking media paths.

package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"trinity/internal/auth"
	"trinity/internal/core/bus"
	"trinity/internal/metrics"
	"trinity/internal/svc/reaper"
)

// Version is reported by /api/server; overridden at build time with -ldflags.
var Version = "0.1.0"

// Service provides HTTP API functionality.
type Service struct {
	registry  *bus.Registry
	reaper    ReaperStatus
	auth      *auth.Authenticator
	metrics   *metrics.Metrics
	logger    *zap.Logger
	services  []string
	startTime int64
}

// ReaperStatus defines the read-only view of the idle reaper.
// This allows the API to work with the reaper without tight coupling.
type ReaperStatus interface {
	Stats() reaper.Stats
}

// NewService creates a new API service.
// services lists the enabled transports reported by /api/server.
func NewService(registry *bus.Registry, rp ReaperStatus, authn *auth.Authenticator, m *metrics.Metrics, logger *zap.Logger, services []string) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  registry,
		reaper:    rp,
		auth:      authn,
		metrics:   m,
		logger:    logger.With(zap.String("component", "api")),
		services:  services,
		startTime: getCurrentTime(),
	}
}

// RegisterRoutes registers API routes on the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/server", s.handleServer)
	mux.HandleFunc("/api/streams", s.handleStreams)
	mux.Handle("/api/streams/", s.auth.RequireAdmin(http.HandlerFunc(s.handleStreamDelete)))
	mux.HandleFunc("/api/reaper", s.handleReaper)
}

// getCurrentTime returns current Unix timestamp.
// Extracted for testability.
func getCurrentTime() int64 {
	return time.Now().Unix()
}
