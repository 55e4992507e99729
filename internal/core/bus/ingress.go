// If you are AI: This file implements the producer-facing ingress path.
// PushChunk is the only way stream content changes.

package bus

import (
	"fmt"
)

// PushChunk replaces the latest chunk of the stream with the given id.
// Returns ErrNotFound if the stream does not exist. The payload is not inspected.
func (r *Registry) PushChunk(id StreamID, payload []byte) error {
	stream, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	stream.LoadChunk(payload)
	return nil
}
