// If you are AI: This file implements the producer WebSocket session.
// Each binary frame is one chunk; the connection is the stream's session handle.

package ingest

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trinity/internal/auth"
	"trinity/internal/core/bus"
)

// wsSession is the bus.Session of a publishing WebSocket.
// Close is safe to call from any goroutine and more than once.
type wsSession struct {
	id        string
	conn      *websocket.Conn
	closeOnce sync.Once
}

// newWSSession wraps conn with a fresh session id.
func newWSSession(conn *websocket.Conn) *wsSession {
	return &wsSession{id: uuid.NewString(), conn: conn}
}

// ID returns the session id.
func (s *wsSession) ID() string {
	return s.id
}

// Close sends a going-away close frame and closes the connection.
func (s *wsSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed")
		s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}

// handlePublish handles GET /ws/publish/{id}.
// The stream is created if absent. When the session ends the stream is removed,
// unless it was already removed or replaced.
func (s *Service) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	id, ok := pathID(r.URL.Path, "/ws/publish/")
	if !ok {
		s.writeError(w, http.StatusBadRequest, bus.ErrInvalidID)
		return
	}
	caller, _ := auth.FromContext(r.Context())

	stream, created, err := s.resolveForPublish(id, r.URL.Query().Get("name"), caller)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if !stream.OwnedBy(caller.UserID) {
		s.writeError(w, http.StatusForbidden, errNotOwner)
		return
	}
	if stream.Session() != nil {
		s.writeError(w, http.StatusConflict, errors.New("stream already has a publishing session"))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if created && s.registry.RemoveIf(id, stream) {
			s.metrics.RecordStreamRemoved("session")
		}
		return
	}

	session := newWSSession(conn)
	defer session.Close()

	if !stream.AttachSession(session) {
		// Lost a race with another publisher
		if created && s.registry.RemoveIf(id, stream) {
			s.metrics.RecordStreamRemoved("session")
		}
		return
	}

	logger := s.logger.With(zap.String("stream", id.String()), zap.String("session", session.ID()))
	logger.Info("publish session started", zap.Bool("created", created))

	conn.SetReadLimit(s.opts.MaxChunkBytes)
	frames := 0
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		if err := s.registry.PushChunk(id, data); err != nil {
			// Removed administratively or by the reaper
			break
		}
		s.metrics.RecordChunk(len(data))
		frames++
	}

	owned := stream.Session() == session
	stream.DetachSession(session)
	if owned && s.registry.RemoveIf(id, stream) {
		s.metrics.RecordStreamRemoved("session")
	}
	logger.Info("publish session ended", zap.Int("frames", frames))
}

// resolveForPublish returns the stream to publish into, creating it when absent.
func (s *Service) resolveForPublish(id bus.StreamID, name string, caller auth.Identity) (*bus.Stream, bool, error) {
	if stream, ok := s.registry.Get(id); ok {
		return stream, false, nil
	}
	stream, err := s.registry.Create(id, name, bus.Metadata{ProducerID: caller.UserID, HasProducer: true})
	if errors.Is(err, bus.ErrAlreadyExists) {
		// Created concurrently; publish into the winner if we own it
		if existing, ok := s.registry.Get(id); ok {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, err
	}
	s.metrics.RecordStreamCreated()
	return stream, true, nil
}
