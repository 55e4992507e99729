// If you are AI: This file provides WebSocket egress service integration.
// The service is integrated into the main HTTP server.

package wsstream

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"trinity/internal/core/bus"
	"trinity/internal/metrics"
)

// Service provides WebSocket audio streaming.
type Service struct {
	handler *Handler
}

// NewService creates a new WebSocket streaming service.
func NewService(registry *bus.Registry, interval time.Duration, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		handler: NewHandler(registry, interval, m, logger),
	}
}

// RegisterRoutes registers WebSocket routes on the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
}
