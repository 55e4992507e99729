// If you are AI: This file implements the sharded Registry that owns stream creation, lookup and removal.
// The registry maps StreamID to Stream instances and enforces id uniqueness.

package bus

import (
	"fmt"
)

// Registry manages the lifecycle of streams.
// Lock expectations: one RWMutex per shard; no lock spans two shards or is held
// while a caller works with a returned stream.
// Allocation: shards pre-allocated at construction; creation allocates once per stream.
type Registry struct {
	shards []*shard
	mask   uint64
}

// NewRegistry creates a registry with the given number of shards.
// Returns ErrInvalidShardCount unless shardCount is a power of two.
func NewRegistry(shardCount int) (*Registry, error) {
	if !IsPowerOfTwo(shardCount) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShardCount, shardCount)
	}

	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = newShard()
	}

	return &Registry{
		shards: shards,
		mask:   uint64(shardCount - 1),
	}, nil
}

// MustNewRegistry is like NewRegistry but panics on an invalid shard count.
// Intended for startup code and tests.
func MustNewRegistry(shardCount int) *Registry {
	r, err := NewRegistry(shardCount)
	if err != nil {
		panic(err)
	}
	return r
}

// ShardCount returns the fixed number of shards.
func (r *Registry) ShardCount() int {
	return len(r.shards)
}

// shardFor returns the shard owning id.
func (r *Registry) shardFor(id StreamID) *shard {
	return r.shards[shardIndex(id, r.mask)]
}

// Create registers a new stream with an empty chunk buffer.
// Exactly one of several concurrent calls for the same id succeeds; the rest get ErrAlreadyExists.
func (r *Registry) Create(id StreamID, name string, meta Metadata) (*Stream, error) {
	if !id.Valid() {
		return nil, ErrInvalidID
	}

	sh := r.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, exists := sh.streams[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, id)
	}

	stream := NewStream(id, name, meta)
	sh.streams[id] = stream
	return stream, nil
}

// Get retrieves a stream by id.
// The returned stream must only be used for the current logical operation;
// long-running readers re-resolve the id instead of keeping it.
func (r *Registry) Get(id StreamID) (*Stream, bool) {
	sh := r.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	stream, ok := sh.streams[id]
	return stream, ok
}

// Remove removes a stream. Removing an absent id is a no-op.
// Returns the removed stream so callers can release its session, or nil.
func (r *Registry) Remove(id StreamID) *Stream {
	sh := r.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	stream, ok := sh.streams[id]
	if !ok {
		return nil
	}
	delete(sh.streams, id)
	return stream
}

// RemoveIf removes the stream only if it is still the given instance.
// Used by producers so that ending an old session never removes a newer stream with the same id.
func (r *Registry) RemoveIf(id StreamID, expected *Stream) bool {
	sh := r.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if current, ok := sh.streams[id]; ok && current == expected {
		delete(sh.streams, id)
		return true
	}
	return false
}

// Count returns the number of registered streams.
// Shards are visited one at a time, so the total is not an atomic snapshot.
func (r *Registry) Count() int {
	total := 0
	for _, sh := range r.shards {
		sh.mu.RLock()
		total += len(sh.streams)
		sh.mu.RUnlock()
	}
	return total
}

// Range calls fn for every stream until fn returns false.
// Each shard's streams are copied out before fn runs, so fn may call back into the registry.
func (r *Registry) Range(fn func(*Stream) bool) {
	for _, sh := range r.shards {
		sh.mu.RLock()
		streams := make([]*Stream, 0, len(sh.streams))
		for _, s := range sh.streams {
			streams = append(streams, s)
		}
		sh.mu.RUnlock()

		for _, s := range streams {
			if !fn(s) {
				return
			}
		}
	}
}
