// If you are AI: This file provides the producer-facing ingest service.
// Producers create streams, push chunks over HTTP or a WebSocket session, and end their streams.

package ingest

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trinity/internal/auth"
	"trinity/internal/codec"
	"trinity/internal/core/bus"
	"trinity/internal/metrics"
)

// Options configures ingest limits and the optional encode path.
type Options struct {
	MaxChunkBytes int64        // Body and frame size cap
	Encoder       codec.Encoder // Used for ?encode= requests; nil disables encoding
	Format        codec.Format  // PCM layout of ?encode= bodies
}

// Service handles producer requests.
type Service struct {
	registry *bus.Registry
	auth     *auth.Authenticator
	opts     Options
	metrics  *metrics.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewService creates a new ingest service.
func NewService(registry *bus.Registry, authn *auth.Authenticator, opts Options, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxChunkBytes <= 0 {
		opts.MaxChunkBytes = 4 << 20
	}
	return &Service{
		registry: registry,
		auth:     authn,
		opts:     opts,
		metrics:  m,
		logger:   logger.With(zap.String("component", "ingest")),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers producer routes on the provided mux.
// Every route requires an identity; with auth disabled that is the anonymous producer.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/create_stream/", s.auth.Require(http.HandlerFunc(s.handleCreate)))
	mux.Handle("/load_chunk/", s.auth.Require(http.HandlerFunc(s.handleLoadChunk)))
	mux.Handle("/streams/", s.auth.Require(http.HandlerFunc(s.handleDelete)))
	mux.Handle("/ws/publish/", s.auth.Require(http.HandlerFunc(s.handlePublish)))
}
