// If you are AI: This file converts raw request bodies into samples for the encoder.

package codec

import (
	"encoding/binary"
	"fmt"
)

// DecodePCM16LE reads interleaved signed 16-bit little-endian samples.
// An odd trailing byte is an error.
func DecodePCM16LE(data []byte) ([]int32, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte count %d for 16-bit pcm", ErrInvalidSamples, len(data))
	}
	samples := make([]int32, len(data)/2)
	for i := range samples {
		samples[i] = int32(int16(binary.LittleEndian.Uint16(data[2*i:])))
	}
	return samples, nil
}
