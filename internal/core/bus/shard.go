// If you are AI: This file implements a single registry shard and the id-to-shard routing.
// Shard count is a power of two so routing is a hash masked with count-1.

package bus

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultShardCount is the shard count used when none is configured.
const DefaultShardCount = 256

// shard is one independently locked partition of the registry.
// Lock expectations: mu guards the map structure only, never buffer contents.
type shard struct {
	mu      sync.RWMutex
	streams map[StreamID]*Stream
}

// newShard creates an empty shard.
func newShard() *shard {
	return &shard{streams: make(map[StreamID]*Stream)}
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// shardIndex routes an id to a shard index using a uniform hash.
// mask must be shardCount-1.
func shardIndex(id StreamID, mask uint64) uint64 {
	return xxhash.Sum64String(string(id)) & mask
}
