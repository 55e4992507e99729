// If you are AI: This file declares the sentinel errors returned by the stream bus.
// Callers match them with errors.Is; transports map them to status codes.

package bus

import "errors"

var (
	// ErrAlreadyExists is returned by Create when the id is already registered.
	ErrAlreadyExists = errors.New("stream already exists")

	// ErrNotFound is returned when an operation targets an unknown or removed stream.
	ErrNotFound = errors.New("stream not found")

	// ErrInvalidShardCount is returned when the registry shard count is not a power of two.
	ErrInvalidShardCount = errors.New("shard count must be a power of two")

	// ErrInvalidID is returned when creating a stream with an empty id.
	ErrInvalidID = errors.New("stream id must not be empty")
)
