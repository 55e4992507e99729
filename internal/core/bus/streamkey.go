// If you are AI: This file defines StreamID for uniquely identifying streams.
// StreamID is used as a map key in the registry shards.

package bus

// StreamID uniquely identifies a stream.
// It is case-sensitive and never normalized; two ids are equal only if their bytes are.
type StreamID string

// String returns the raw id.
func (id StreamID) String() string {
	return string(id)
}

// Valid reports whether the id can be registered.
// The empty id is reserved so that transports can treat it as "missing".
func (id StreamID) Valid() bool {
	return id != ""
}
