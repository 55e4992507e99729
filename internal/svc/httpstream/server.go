// If you are AI: This file provides HTTP streaming egress service integration.
// The service is integrated into the main HTTP server.

package httpstream

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"trinity/internal/core/bus"
	"trinity/internal/metrics"
)

// Options configures egress behaviour.
type Options struct {
	Interval     time.Duration // Subscriber polling period
	ContentType  string        // Content-Type sent when the stream does not name one
	WriteTimeout time.Duration // Bound on one chunk write, defaults to writeWait
}

// Service provides chunked HTTP audio streaming.
type Service struct {
	handler *Handler
}

// NewService creates a new HTTP streaming service.
func NewService(registry *bus.Registry, opts Options, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		handler: NewHandler(registry, opts, m, logger),
	}
}

// RegisterRoutes registers streaming routes on the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
}
