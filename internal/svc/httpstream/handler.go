// If you are AI: This file implements the HTTP handler for listener requests.
// Handles GET /stream/{id} and runs one distribution loop per request.

package httpstream

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"trinity/internal/core/bus"
	"trinity/internal/metrics"
)

const (
	// transportName labels metrics and logs for this egress.
	transportName = "http"
	// writeWait bounds a single chunk write so a stalled client cannot pin the loop.
	writeWait = 10 * time.Second
)

// Handler handles HTTP streaming requests.
type Handler struct {
	registry *bus.Registry
	opts     Options
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewHandler creates a new HTTP streaming handler.
func NewHandler(registry *bus.Registry, opts Options, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if opts.ContentType == "" {
		opts.ContentType = "application/octet-stream"
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = writeWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		registry: registry,
		opts:     opts,
		metrics:  m,
		logger:   logger.With(zap.String("component", "httpstream")),
	}
}

// ServeHTTP streams chunks for one stream until the client leaves or the stream is removed.
// Endpoint: GET /stream/{id}
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := bus.StreamID(strings.TrimPrefix(r.URL.Path, "/stream/"))
	if !id.Valid() || strings.Contains(string(id), "/") {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Resolve before committing headers so a missing stream is a plain 404
	sub := bus.NewSubscriber(h.registry, id, h.opts.Interval)
	if err := sub.Subscribe(); err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	rc := http.NewResponseController(w)

	contentType := h.opts.ContentType
	if stream, ok := h.registry.Get(id); ok && stream.ContentType() != "" {
		contentType = stream.ContentType()
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warn("response does not support flushing", zap.Error(err))
	}

	// Cancellation expires the write deadline so a blocked write returns at once.
	ctx := r.Context()
	stop := context.AfterFunc(ctx, func() {
		rc.SetWriteDeadline(time.Now())
	})
	defer stop()

	h.metrics.SubscriberStarted(transportName)
	reason := sub.Poll(ctx, func(ctx context.Context, payload []byte) error {
		deadline := rc.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout)) == nil
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
		if err := rc.Flush(); err != nil {
			return err
		}
		if deadline && ctx.Err() == nil {
			rc.SetWriteDeadline(time.Time{})
		}
		return nil
	})
	if ctx.Err() != nil {
		rc.SetWriteDeadline(time.Now())
	}
	h.metrics.SubscriberFinished(transportName, reason.String(), sub.Emitted(), sub.Skipped())

	h.logger.Debug("listener finished",
		zap.String("stream", id.String()),
		zap.String("reason", reason.String()),
		zap.Uint64("emitted", sub.Emitted()),
		zap.Uint64("skipped", sub.Skipped()),
	)
}

// RegisterRoutes registers streaming routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/stream/", h)
}
