// If you are AI: This file defines the PCM format description and the Encoder interface.

package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned when a Format fails verification.
	ErrInvalidFormat = errors.New("codec: invalid format")
	// ErrInvalidSamples is returned when samples do not fit the format.
	ErrInvalidSamples = errors.New("codec: invalid samples")
)

// Format describes interleaved integer PCM.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// DefaultFormat is CD-quality stereo.
var DefaultFormat = Format{SampleRate: 44100, Channels: 2, BitsPerSample: 16}

// Verify checks that the format can be encoded.
func (f Format) Verify() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	}
	if f.Channels <= 0 || f.Channels > 8 {
		return fmt.Errorf("%w: %d channels", ErrInvalidFormat, f.Channels)
	}
	switch f.BitsPerSample {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d bits per sample", ErrInvalidFormat, f.BitsPerSample)
	}
	return nil
}

// BlockAlign returns the byte size of one frame (one sample per channel).
func (f Format) BlockAlign() int {
	return f.Channels * f.BitsPerSample / 8
}

// sampleRange returns the inclusive bounds of a sample at this bit depth.
func (f Format) sampleRange() (int64, int64) {
	hi := int64(1)<<(f.BitsPerSample-1) - 1
	return -hi - 1, hi
}

// Encoder turns interleaved samples into a self-contained chunk payload.
type Encoder interface {
	// Encode verifies the format and returns the encoded bytes.
	Encode(samples []int32, format Format) ([]byte, error)
	// ContentType is the MIME type of the produced payload.
	ContentType() string
}
