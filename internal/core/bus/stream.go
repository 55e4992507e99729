// If you are AI: This file implements the Stream entry: identity, producer metadata and the owned chunk buffer.
// A stream has exactly one producer and any number of readers of its buffer.

package bus

import (
	"sync"
	"time"
)

// Session is a transport-level handle bound to a stream's producer,
// for example the WebSocket connection a streamer publishes over.
type Session interface {
	// ID returns a stable identifier for logging.
	ID() string
	// Close terminates the underlying connection.
	Close() error
}

// Metadata carries the optional fields supplied when a stream is created.
type Metadata struct {
	ProducerID  uint64  // Numeric producer identifier (already authorized)
	HasProducer bool    // False when the producer is attached later
	Session     Session // Optional transport session
}

// Stream represents one live audio stream.
// Lock expectations: mu guards producer, session and content type fields only; the buffer has its own lock.
type Stream struct {
	id        StreamID
	name      string
	createdAt time.Time
	buffer    *ChunkBuffer

	mu          sync.RWMutex
	producerID  uint64
	hasProducer bool
	session     Session
	contentType string
}

// NewStream creates a stream with an empty chunk buffer.
func NewStream(id StreamID, name string, meta Metadata) *Stream {
	if name == "" {
		name = id.String()
	}
	return &Stream{
		id:          id,
		name:        name,
		createdAt:   time.Now(),
		buffer:      NewChunkBuffer(),
		producerID:  meta.ProducerID,
		hasProducer: meta.HasProducer,
		session:     meta.Session,
	}
}

// ID returns the stream's id.
func (s *Stream) ID() StreamID {
	return s.id
}

// Name returns the human-readable stream name.
func (s *Stream) Name() string {
	return s.name
}

// CreatedAt returns when the stream was registered.
func (s *Stream) CreatedAt() time.Time {
	return s.createdAt
}

// Producer returns the producer id and whether one is attached.
func (s *Stream) Producer() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.producerID, s.hasProducer
}

// AttachProducer attaches a producer id.
// Returns false if a different producer is already attached.
func (s *Stream) AttachProducer(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasProducer {
		return s.producerID == id
	}
	s.producerID = id
	s.hasProducer = true
	return true
}

// OwnedBy reports whether the given producer may write to this stream.
// A stream without a producer accepts anyone.
func (s *Stream) OwnedBy(id uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.hasProducer || s.producerID == id
}

// Session returns the attached transport session, or nil.
func (s *Stream) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// AttachSession binds a transport session.
// Returns false if another session is already attached.
func (s *Stream) AttachSession(session Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && s.session != session {
		return false
	}
	s.session = session
	return true
}

// DetachSession unbinds the session if it is the one currently attached.
func (s *Stream) DetachSession(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == session {
		s.session = nil
	}
}

// ContentType returns the media type producers declared for this stream, or "".
func (s *Stream) ContentType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contentType
}

// SetContentType records the media type of the stream's chunks.
func (s *Stream) SetContentType(contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contentType = contentType
}

// LoadChunk replaces the stream's latest chunk.
// Visible to every read that starts after it returns.
func (s *Stream) LoadChunk(payload []byte) {
	s.buffer.Write(payload)
}

// CurrentChunk returns a copy of the latest payload.
func (s *Stream) CurrentChunk() []byte {
	payload, _ := s.buffer.Read()
	return payload
}

// Snapshot returns the latest chunk with its fingerprint, sharing the payload.
func (s *Stream) Snapshot() Chunk {
	return s.buffer.Snapshot()
}

// LastWrite returns the time of the latest chunk, or the creation time if none was written.
func (s *Stream) LastWrite() time.Time {
	if t := s.buffer.UpdatedAt(); !t.IsZero() {
		return t
	}
	return s.createdAt
}

// ChunkSize returns the size of the latest payload in bytes.
func (s *Stream) ChunkSize() int {
	return s.buffer.Len()
}
