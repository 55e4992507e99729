// If you are AI: This file defines Chunk, the immutable snapshot of a stream's latest payload.
// A Chunk pairs the payload with the fingerprint computed from exactly those bytes.

package bus

import (
	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a 64-bit hash of a chunk payload.
// Two different payloads may collide; a collision only suppresses one emission.
type Fingerprint uint64

// Fingerprinted computes the fingerprint of a payload.
func Fingerprinted(payload []byte) Fingerprint {
	return Fingerprint(xxhash.Sum64(payload))
}

// Chunk is a point-in-time view of a chunk buffer.
// Ownership: Payload is shared between every reader of the same write and must not be modified.
type Chunk struct {
	Payload     []byte      // Latest payload (read-only)
	Fingerprint Fingerprint // Hash of Payload
	Seq         uint64      // Number of writes that produced this chunk; 0 means never written
}

// Empty reports whether no chunk has been written yet.
func (c Chunk) Empty() bool {
	return c.Seq == 0
}

// Clone returns a copy whose payload can be modified by the caller.
func (c Chunk) Clone() Chunk {
	clone := c
	if c.Payload != nil {
		clone.Payload = append([]byte(nil), c.Payload...)
	}
	return clone
}
