// If you are AI: This file contains unit tests for stream entries and producer/session exclusivity.

package bus

import (
	"bytes"
	"testing"
	"time"
)

// fakeSession is a Session that records Close calls.
type fakeSession struct {
	id     string
	closed bool
}

// ID returns the session id.
func (f *fakeSession) ID() string { return f.id }

// Close marks the session closed.
func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func TestStreamIDString(t *testing.T) {
	id := StreamID("mystream")
	if id.String() != "mystream" {
		t.Errorf("Expected 'mystream', got '%s'", id.String())
	}
	if StreamID("").Valid() {
		t.Error("Empty id should not be valid")
	}
}

func TestStreamLifecycle(t *testing.T) {
	stream := NewStream("test", "", Metadata{})

	if stream.ID() != "test" {
		t.Error("Stream id mismatch")
	}
	if stream.Name() != "test" {
		t.Errorf("Name should default to id, got '%s'", stream.Name())
	}
	if _, ok := stream.Producer(); ok {
		t.Error("New stream should not have a producer")
	}
	if stream.Session() != nil {
		t.Error("New stream should not have a session")
	}
	if !stream.Snapshot().Empty() {
		t.Error("New stream should have an empty buffer")
	}
	if len(stream.CurrentChunk()) != 0 {
		t.Error("New stream should have no payload")
	}
}

func TestStreamProducerExclusivity(t *testing.T) {
	stream := NewStream("test", "", Metadata{})

	if !stream.OwnedBy(7) {
		t.Error("Stream without producer should accept any producer")
	}
	if !stream.AttachProducer(1) {
		t.Error("First producer should attach successfully")
	}
	if !stream.AttachProducer(1) {
		t.Error("Re-attaching the same producer should succeed")
	}
	if stream.AttachProducer(2) {
		t.Error("Second producer should not attach")
	}
	if !stream.OwnedBy(1) || stream.OwnedBy(2) {
		t.Error("Ownership should follow the attached producer")
	}
}

func TestStreamCreatedWithMetadata(t *testing.T) {
	sess := &fakeSession{id: "s1"}
	stream := NewStream("test", "Test", Metadata{ProducerID: 42, HasProducer: true, Session: sess})

	if id, ok := stream.Producer(); !ok || id != 42 {
		t.Errorf("Expected producer 42, got %d (%v)", id, ok)
	}
	if stream.Session() != sess {
		t.Error("Session should be attached at creation")
	}
}

func TestStreamSessionAttachDetach(t *testing.T) {
	stream := NewStream("test", "", Metadata{})
	first := &fakeSession{id: "a"}
	second := &fakeSession{id: "b"}

	if !stream.AttachSession(first) {
		t.Error("First session should attach")
	}
	if stream.AttachSession(second) {
		t.Error("Second session should not attach while the first is bound")
	}

	// Detaching a session that is not attached is ignored
	stream.DetachSession(second)
	if stream.Session() != first {
		t.Error("Detach of a foreign session must not unbind the current one")
	}

	stream.DetachSession(first)
	if stream.Session() != nil {
		t.Error("Session should be nil after detach")
	}
	if !stream.AttachSession(second) {
		t.Error("Session should attach after previous detach")
	}
}

func TestStreamLoadChunk(t *testing.T) {
	stream := NewStream("test", "", Metadata{})
	before := stream.LastWrite()

	payload := []byte{1, 2, 3}
	stream.LoadChunk(payload)

	// Mutating the caller's slice must not affect the stored chunk
	payload[0] = 9
	if got := stream.CurrentChunk(); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Expected [1 2 3], got %v", got)
	}

	// CurrentChunk returns a private copy
	got := stream.CurrentChunk()
	got[1] = 9
	if snap := stream.Snapshot(); !bytes.Equal(snap.Payload, []byte{1, 2, 3}) {
		t.Errorf("CurrentChunk copy leaked into buffer: %v", snap.Payload)
	}

	if stream.ChunkSize() != 3 {
		t.Errorf("Expected chunk size 3, got %d", stream.ChunkSize())
	}
	if stream.LastWrite().Before(before) {
		t.Error("LastWrite should advance on LoadChunk")
	}
}

func TestStreamLastWriteDefaultsToCreation(t *testing.T) {
	stream := NewStream("test", "", Metadata{})
	if !stream.LastWrite().Equal(stream.CreatedAt()) {
		t.Error("LastWrite should equal CreatedAt before any chunk")
	}
	time.Sleep(time.Millisecond)
	stream.LoadChunk([]byte{1})
	if !stream.LastWrite().After(stream.CreatedAt()) {
		t.Error("LastWrite should be after CreatedAt once a chunk is loaded")
	}
}

func TestStreamContentType(t *testing.T) {
	stream := NewStream("test", "", Metadata{})
	if ct := stream.ContentType(); ct != "" {
		t.Errorf("Expected no content type on a new stream, got %q", ct)
	}
	stream.SetContentType("audio/wav")
	if ct := stream.ContentType(); ct != "audio/wav" {
		t.Errorf("Expected audio/wav, got %q", ct)
	}
}
