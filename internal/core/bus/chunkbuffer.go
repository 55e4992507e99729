// If you are AI: This file implements ChunkBuffer, the single-slot last-writer-wins payload holder.
// Payload and fingerprint are swapped together under a write lock so readers never see a mismatch.

package bus

import (
	"sync"
	"time"
)

// ChunkBuffer holds the most recent chunk of one stream.
// Lock expectations: one RWMutex per buffer, so traffic on one stream never blocks another.
// sync.RWMutex stops admitting new readers once a writer is waiting, so writers are not starved.
// Allocation: each Write allocates one payload copy; reads of a snapshot allocate nothing.
type ChunkBuffer struct {
	mu        sync.RWMutex
	current   Chunk
	updatedAt time.Time
}

// NewChunkBuffer creates an empty buffer.
func NewChunkBuffer() *ChunkBuffer {
	return &ChunkBuffer{}
}

// Write replaces the stored payload and its fingerprint.
// The input is copied, so the caller may reuse its slice afterwards.
// Writes are totally ordered by the buffer lock.
func (b *ChunkBuffer) Write(payload []byte) {
	owned := make([]byte, len(payload))
	copy(owned, payload)
	fp := Fingerprinted(owned)
	now := time.Now()

	b.mu.Lock()
	b.current = Chunk{
		Payload:     owned,
		Fingerprint: fp,
		Seq:         b.current.Seq + 1,
	}
	b.updatedAt = now
	b.mu.Unlock()
}

// Read returns a private copy of the payload together with its fingerprint.
func (b *ChunkBuffer) Read() ([]byte, Fingerprint) {
	c := b.Snapshot().Clone()
	return c.Payload, c.Fingerprint
}

// Snapshot returns the current chunk without copying the payload.
// The payload is never mutated after a write, so sharing it is safe for readers
// that treat it as read-only.
func (b *ChunkBuffer) Snapshot() Chunk {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// UpdatedAt returns the time of the last write, or the zero time if never written.
func (b *ChunkBuffer) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updatedAt
}

// Len returns the size of the stored payload in bytes.
func (b *ChunkBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.current.Payload)
}
