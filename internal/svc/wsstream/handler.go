// If you are AI: This file implements the WebSocket handler for listener requests.
// Handles GET /ws/{id}; each changed chunk is sent as one binary frame.

package wsstream

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trinity/internal/core/bus"
	"trinity/internal/metrics"
)

const (
	// transportName labels metrics and logs for this egress.
	transportName = "ws"
	// writeWait bounds a single frame write so a stalled client cannot pin the loop.
	writeWait = 10 * time.Second
	// readLimit caps inbound frames; listeners only send control frames.
	readLimit = 512
)

// Handler handles WebSocket streaming requests.
type Handler struct {
	registry *bus.Registry
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket streaming handler.
func NewHandler(registry *bus.Registry, interval time.Duration, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		registry: registry,
		interval: interval,
		metrics:  m,
		logger:   logger.With(zap.String("component", "wsstream")),
		upgrader: websocket.Upgrader{
			// Browser players are served from arbitrary origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and streams chunks as binary frames.
// Endpoint: GET /ws/{id}
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Parse path: /ws/{id}
	urlPath := strings.TrimPrefix(r.URL.Path, "/ws/")
	if urlPath == r.URL.Path || urlPath == "" || strings.Contains(urlPath, "/") {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	id := bus.StreamID(urlPath)

	sub := bus.NewSubscriber(h.registry, id, h.interval)
	if err := sub.Subscribe(); err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade failed, response already sent
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Listeners send nothing; a read error means the client went away
	conn.SetReadLimit(readLimit)
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.metrics.SubscriberStarted(transportName)
	reason := sub.Poll(ctx, func(_ context.Context, payload []byte) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.BinaryMessage, payload)
	})
	h.metrics.SubscriberFinished(transportName, reason.String(), sub.Emitted(), sub.Skipped())

	if reason == bus.TerminationStreamRemoved {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream removed")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}

	h.logger.Debug("listener finished",
		zap.String("stream", id.String()),
		zap.String("reason", reason.String()),
		zap.Uint64("emitted", sub.Emitted()),
	)
}

// RegisterRoutes registers WebSocket routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/ws/", h)
}
