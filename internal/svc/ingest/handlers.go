// If you are AI: This file implements the HTTP ingest handlers and maps core errors to status codes.

package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"trinity/internal/auth"
	"trinity/internal/codec"
	"trinity/internal/core/bus"
)

// ErrorResponse represents an ingest error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StreamResponse acknowledges a stream operation.
type StreamResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status"`
}

// createRequest is the optional body of POST /create_stream/{id}.
type createRequest struct {
	Name string `json:"name"`
}

// errNotOwner is returned when a producer touches another producer's stream.
var errNotOwner = fmt.Errorf("%w: stream belongs to another producer", auth.ErrForbidden)

// handleCreate handles POST /create_stream/{id}.
// A duplicate id is a 400, which existing producers expect.
func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	id, ok := pathID(r.URL.Path, "/create_stream/")
	if !ok {
		s.writeError(w, http.StatusBadRequest, bus.ErrInvalidID)
		return
	}

	var req createRequest
	if r.ContentLength != 0 {
		body := http.MaxBytesReader(w, r.Body, 4096)
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}

	caller, _ := auth.FromContext(r.Context())
	stream, err := s.registry.Create(id, req.Name, bus.Metadata{ProducerID: caller.UserID, HasProducer: true})
	if err != nil {
		s.logger.Warn("create stream rejected", zap.String("stream", id.String()), zap.Error(err))
		s.writeError(w, statusFor(err), err)
		return
	}
	s.metrics.RecordStreamCreated()

	s.logger.Info("stream created",
		zap.String("stream", id.String()),
		zap.String("producer", caller.Name),
	)
	s.writeJSON(w, http.StatusOK, StreamResponse{ID: id.String(), Name: stream.Name(), Status: "created"})
}

// handleLoadChunk handles POST /load_chunk/{id}.
func (s *Service) handleLoadChunk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	id, ok := pathID(r.URL.Path, "/load_chunk/")
	if !ok {
		s.writeError(w, http.StatusBadRequest, bus.ErrInvalidID)
		return
	}

	stream, found := s.registry.Get(id)
	if !found {
		s.metrics.RecordIngestReject("not_found")
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", bus.ErrNotFound, id))
		return
	}
	caller, _ := auth.FromContext(r.Context())
	if !stream.OwnedBy(caller.UserID) {
		s.metrics.RecordIngestReject("forbidden")
		s.writeError(w, http.StatusForbidden, errNotOwner)
		return
	}

	payload, err := s.readChunk(w, r)
	if err != nil {
		s.metrics.RecordIngestReject("bad_body")
		s.writeError(w, statusFor(err), err)
		return
	}

	// Encoded chunks are served with the encoder's media type
	if r.URL.Query().Get("encode") != "" {
		stream.SetContentType(s.opts.Encoder.ContentType())
	}

	if err := s.registry.PushChunk(id, payload); err != nil {
		// Removed between lookup and write
		s.writeError(w, statusFor(err), err)
		return
	}
	s.metrics.RecordChunk(len(payload))

	s.writeJSON(w, http.StatusOK, StreamResponse{ID: id.String(), Status: "loaded"})
}

// handleDelete handles DELETE /streams/{id}: the owning producer ends its stream.
func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	id, ok := pathID(r.URL.Path, "/streams/")
	if !ok {
		s.writeError(w, http.StatusBadRequest, bus.ErrInvalidID)
		return
	}

	stream, found := s.registry.Get(id)
	if !found {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", bus.ErrNotFound, id))
		return
	}
	caller, _ := auth.FromContext(r.Context())
	if !stream.OwnedBy(caller.UserID) {
		s.writeError(w, http.StatusForbidden, errNotOwner)
		return
	}

	if s.registry.RemoveIf(id, stream) {
		s.metrics.RecordStreamRemoved("producer")
		if sess := stream.Session(); sess != nil {
			sess.Close()
		}
		s.logger.Info("stream ended by producer", zap.String("stream", id.String()))
	}
	s.writeJSON(w, http.StatusOK, StreamResponse{ID: id.String(), Status: "removed"})
}

// readChunk reads the request body as a chunk payload.
// application/json bodies are a JSON array of byte values; anything else is raw bytes.
// With ?encode=wav the bytes are 16-bit little-endian PCM and are wrapped by the encoder.
func (s *Service) readChunk(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxChunkBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		raw, err = decodeByteArray(raw)
		if err != nil {
			return nil, err
		}
	}

	switch enc := r.URL.Query().Get("encode"); enc {
	case "":
		return raw, nil
	case "wav":
		if s.opts.Encoder == nil {
			return nil, fmt.Errorf("%w: encoding disabled", codec.ErrInvalidFormat)
		}
		samples, err := codec.DecodePCM16LE(raw)
		if err != nil {
			return nil, err
		}
		return s.opts.Encoder.Encode(samples, s.opts.Format)
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %q", codec.ErrInvalidFormat, enc)
	}
}

// decodeByteArray parses a JSON array of integers in 0..255.
func decodeByteArray(data []byte) ([]byte, error) {
	var values []int
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("invalid chunk body: %w", err)
	}
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("invalid chunk body: element %d out of byte range: %d", i, v)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// pathID extracts a single-segment stream id after prefix.
func pathID(urlPath, prefix string) (bus.StreamID, bool) {
	rest := strings.TrimPrefix(urlPath, prefix)
	if rest == urlPath || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return bus.StreamID(rest), true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, bus.ErrAlreadyExists), errors.Is(err, bus.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, bus.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

// writeJSON writes a JSON response.
func (s *Service) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Service) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
