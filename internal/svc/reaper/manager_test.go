// If you are AI: This file contains unit tests for the idle stream reaper.
// Tests verify idle detection, session closing and lifecycle management.

package reaper

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"trinity/internal/core/bus"
)

// closeRecorder is a bus.Session that records Close.
type closeRecorder struct{ closed bool }

// ID returns a fixed id.
func (c *closeRecorder) ID() string { return "rec" }

// Close records the call.
func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestSweepRemovesIdleStreams(t *testing.T) {
	registry := bus.MustNewRegistry(4)
	manager := NewManager(registry, time.Minute, time.Second, nil, zap.NewNop())

	sess := &closeRecorder{}
	registry.Create("idle", "", bus.Metadata{Session: sess})
	active, _ := registry.Create("active", "", bus.Metadata{})
	active.LoadChunk([]byte{1})

	if n := manager.Sweep(time.Now().Add(30 * time.Second)); n != 0 {
		t.Fatalf("Expected no removals before timeout, got %d", n)
	}

	n := manager.Sweep(time.Now().Add(2 * time.Minute))
	if n != 2 {
		t.Errorf("Expected both streams idle by then, got %d", n)
	}
	if registry.Count() != 0 {
		t.Errorf("Expected empty registry, got %d", registry.Count())
	}
	if !sess.closed {
		t.Error("Session of a reaped stream should be closed")
	}
	if manager.Stats().Reaped != 2 {
		t.Errorf("Expected 2 reaped, got %d", manager.Stats().Reaped)
	}
}

func TestSweepKeepsFreshStreams(t *testing.T) {
	registry := bus.MustNewRegistry(4)
	manager := NewManager(registry, time.Minute, time.Second, nil, zap.NewNop())

	stream, _ := registry.Create("fresh", "", bus.Metadata{})
	stream.LoadChunk([]byte{1})

	if n := manager.Sweep(time.Now().Add(30 * time.Second)); n != 0 {
		t.Errorf("Expected 0 removals, got %d", n)
	}
	if _, ok := registry.Get("fresh"); !ok {
		t.Error("Fresh stream should remain")
	}
}

func TestDisabledReaper(t *testing.T) {
	registry := bus.MustNewRegistry(4)
	manager := NewManager(registry, 0, time.Second, nil, zap.NewNop())
	registry.Create("old", "", bus.Metadata{})

	if manager.Enabled() {
		t.Error("Reaper with zero timeout should be disabled")
	}
	manager.Start()
	if n := manager.Sweep(time.Now().Add(time.Hour)); n != 0 {
		t.Errorf("Disabled reaper removed %d streams", n)
	}
	manager.Stop()
}

func TestManagerLoop(t *testing.T) {
	registry := bus.MustNewRegistry(4)
	manager := NewManager(registry, 20*time.Millisecond, 10*time.Millisecond, nil, zap.NewNop())
	registry.Create("stale", "", bus.Metadata{})

	manager.Start()
	manager.Start() // second Start is a no-op
	defer manager.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if registry.Count() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("Reaper loop did not remove the stale stream")
}

func TestSweepSkipsStreamWrittenDuringSweep(t *testing.T) {
	registry := bus.MustNewRegistry(4)
	manager := NewManager(registry, time.Minute, time.Second, nil, zap.NewNop())

	registry.Create("revived", "", bus.Metadata{})
	registry.Create("stale", "", bus.Metadata{})

	// A producer pushes to "revived" after the scan picked it as idle
	manager.beforeRemove = func(s *bus.Stream) {
		if s.ID() == "revived" {
			time.Sleep(time.Millisecond)
			s.LoadChunk([]byte{1})
		}
	}

	if n := manager.Sweep(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Errorf("Expected only the stale stream to be removed, got %d", n)
	}
	if _, ok := registry.Get("revived"); !ok {
		t.Error("Stream written during the sweep should remain")
	}
	if _, ok := registry.Get("stale"); ok {
		t.Error("Stale stream should be removed")
	}
}
