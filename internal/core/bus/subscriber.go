// If you are AI: This file implements the per-consumer distribution loop.
// A Subscriber polls one stream at a fixed interval and emits the chunk only when its fingerprint changed.

package bus

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultInterval is the polling interval used when none is configured.
const DefaultInterval = time.Second

// State is the lifecycle state of a Subscriber.
type State uint32

const (
	// StateAwaitingStream is the initial state, before the stream is resolved.
	StateAwaitingStream State = iota
	// StatePolling waits for the next tick.
	StatePolling
	// StateEmitting hands a changed chunk to the transport.
	StateEmitting
	// StateTerminated is final.
	StateTerminated
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateAwaitingStream:
		return "awaiting_stream"
	case StatePolling:
		return "polling"
	case StateEmitting:
		return "emitting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Termination tells the transport why a Subscriber stopped.
type Termination uint8

const (
	// TerminationNotFound means the stream did not exist at subscribe time.
	TerminationNotFound Termination = iota + 1
	// TerminationStreamRemoved means the stream disappeared between ticks.
	TerminationStreamRemoved
	// TerminationConsumerGone means the transport failed to deliver a chunk.
	TerminationConsumerGone
	// TerminationCancelled means the owning request context ended.
	TerminationCancelled
)

// String returns a human-readable termination reason.
func (t Termination) String() string {
	switch t {
	case TerminationNotFound:
		return "not_found"
	case TerminationStreamRemoved:
		return "stream_removed"
	case TerminationConsumerGone:
		return "consumer_gone"
	case TerminationCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// EmitFunc delivers one changed payload to the consumer.
// The payload is shared and must not be modified. A non-nil error terminates the loop.
type EmitFunc func(ctx context.Context, payload []byte) error

// Subscriber is one consumer's distribution loop.
// It never mutates the stream and never keeps a stream reference across ticks:
// every tick re-resolves the id, so removal is observed within one interval.
// Not safe for concurrent use; one goroutine runs the loop.
type Subscriber struct {
	registry *Registry
	streamID StreamID
	interval time.Duration

	state       atomic.Uint32
	termination atomic.Uint32

	cursor    Fingerprint
	hasCursor bool

	emitted atomic.Uint64
	skipped atomic.Uint64
}

// NewSubscriber creates a distribution loop for the given stream.
// A non-positive interval falls back to DefaultInterval.
func NewSubscriber(registry *Registry, id StreamID, interval time.Duration) *Subscriber {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Subscriber{
		registry: registry,
		streamID: id,
		interval: interval,
	}
}

// StreamID returns the id this subscriber follows.
func (s *Subscriber) StreamID() StreamID {
	return s.streamID
}

// State returns the current lifecycle state. Safe to call from any goroutine.
func (s *Subscriber) State() State {
	return State(s.state.Load())
}

// Termination returns why the loop stopped, valid once State is StateTerminated.
func (s *Subscriber) Termination() Termination {
	return Termination(s.termination.Load())
}

// Emitted returns the number of chunks handed to the transport.
func (s *Subscriber) Emitted() uint64 {
	return s.emitted.Load()
}

// Skipped returns the number of ticks suppressed because the chunk was unchanged.
func (s *Subscriber) Skipped() uint64 {
	return s.skipped.Load()
}

// Subscribe resolves the stream.
// Returns ErrNotFound and moves to StateTerminated if the stream does not exist.
func (s *Subscriber) Subscribe() error {
	s.setState(StateAwaitingStream)
	if _, ok := s.registry.Get(s.streamID); !ok {
		s.terminate(TerminationNotFound)
		return fmt.Errorf("%w: %s", ErrNotFound, s.streamID)
	}
	s.setState(StatePolling)
	return nil
}

// Run subscribes and then polls until termination.
func (s *Subscriber) Run(ctx context.Context, emit EmitFunc) Termination {
	if err := s.Subscribe(); err != nil {
		return s.Termination()
	}
	return s.Poll(ctx, emit)
}

// Poll runs the polling loop after a successful Subscribe.
// The ticker wait is the only suspension point besides emit; no lock is held while waiting.
func (s *Subscriber) Poll(ctx context.Context, emit EmitFunc) Termination {
	if s.State() == StateTerminated {
		return s.Termination()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.setState(StatePolling)
		select {
		case <-ctx.Done():
			return s.terminate(TerminationCancelled)
		case <-ticker.C:
		}

		if done, reason := s.tick(ctx, emit); done {
			return reason
		}
	}
}

// tick performs one poll: resolve, compare, and emit on change.
// Returns true with a reason when the loop must stop.
func (s *Subscriber) tick(ctx context.Context, emit EmitFunc) (bool, Termination) {
	if ctx.Err() != nil {
		return true, s.terminate(TerminationCancelled)
	}

	stream, ok := s.registry.Get(s.streamID)
	if !ok {
		return true, s.terminate(TerminationStreamRemoved)
	}

	chunk := stream.Snapshot()
	if chunk.Empty() {
		// Nothing published yet; the cursor stays unset.
		return false, 0
	}
	if s.hasCursor && chunk.Fingerprint == s.cursor {
		s.skipped.Add(1)
		return false, 0
	}

	s.cursor = chunk.Fingerprint
	s.hasCursor = true

	s.setState(StateEmitting)
	if err := emit(ctx, chunk.Payload); err != nil {
		if ctx.Err() != nil {
			return true, s.terminate(TerminationCancelled)
		}
		return true, s.terminate(TerminationConsumerGone)
	}
	s.emitted.Add(1)
	return false, 0
}

// setState records a state transition.
func (s *Subscriber) setState(state State) {
	s.state.Store(uint32(state))
}

// terminate moves to StateTerminated with the given reason and returns it.
func (s *Subscriber) terminate(reason Termination) Termination {
	s.termination.Store(uint32(reason))
	s.setState(StateTerminated)
	return reason
}
