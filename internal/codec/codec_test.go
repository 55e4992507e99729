// If you are AI: This file contains tests for format verification, WAV encoding and PCM decoding.

package codec

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFormatVerify(t *testing.T) {
	assert.NoError(t, DefaultFormat.Verify())

	bad := []Format{
		{SampleRate: 0, Channels: 2, BitsPerSample: 16},
		{SampleRate: 44100, Channels: 0, BitsPerSample: 16},
		{SampleRate: 44100, Channels: 9, BitsPerSample: 16},
		{SampleRate: 44100, Channels: 2, BitsPerSample: 8},
		{SampleRate: 44100, Channels: 2, BitsPerSample: 20},
	}
	for _, f := range bad {
		assert.True(t, errors.Is(f.Verify(), ErrInvalidFormat), "%+v", f)
	}
}

func TestWAVEncodeStereo16(t *testing.T) {
	enc := NewWAVEncoder()
	samples := []int32{100, -100, 32767, -32768}

	data, err := enc.Encode(samples, DefaultFormat)
	require.NoError(t, err)
	require.Len(t, data, wavHeaderSize+len(samples)*2)

	info, err := ParseWAVHeader(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultFormat, info.Format)
	assert.Equal(t, 2, info.Frames)

	assert.Equal(t, int16(100), int16(binary.LittleEndian.Uint16(data[44:])))
	assert.Equal(t, int16(-32768), int16(binary.LittleEndian.Uint16(data[50:])))
	assert.Equal(t, "audio/wav", enc.ContentType())
}

func TestWAVEncode24Bit(t *testing.T) {
	f := Format{SampleRate: 48000, Channels: 1, BitsPerSample: 24}
	data, err := NewWAVEncoder().Encode([]int32{-1, 8388607}, f)
	require.NoError(t, err)
	require.Len(t, data, wavHeaderSize+6)

	assert.Equal(t, []byte{0xff, 0xff, 0xff}, data[44:47])
	assert.Equal(t, []byte{0xff, 0xff, 0x7f}, data[47:50])
}

func TestWAVEncodeRejects(t *testing.T) {
	enc := NewWAVEncoder()

	_, err := enc.Encode([]int32{1, 2, 3}, DefaultFormat)
	assert.True(t, errors.Is(err, ErrInvalidSamples), "partial frame")

	_, err = enc.Encode([]int32{40000, 0}, DefaultFormat)
	assert.True(t, errors.Is(err, ErrInvalidSamples), "out of range")

	_, err = enc.Encode([]int32{0, 0}, Format{SampleRate: 44100, Channels: 2, BitsPerSample: 12})
	assert.True(t, errors.Is(err, ErrInvalidFormat), "bad format")
}

func TestParseWAVHeaderRejectsGarbage(t *testing.T) {
	_, err := ParseWAVHeader([]byte("short"))
	assert.True(t, errors.Is(err, ErrInvalidFormat))

	junk := make([]byte, wavHeaderSize)
	_, err = ParseWAVHeader(junk)
	assert.True(t, errors.Is(err, ErrInvalidFormat))
}

func TestDecodePCM16LE(t *testing.T) {
	samples, err := DecodePCM16LE([]byte{0x01, 0x00, 0xff, 0xff})
	require.NoError(t, err)
	assert.Equal(t, []int32{1, -1}, samples)

	_, err = DecodePCM16LE([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, ErrInvalidSamples))
}

func TestPCM16RoundTripThroughWAV(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		frames := rapid.IntRange(0, 256).Draw(t, "frames")
		raw := make([]byte, frames*4)
		for i := range raw {
			raw[i] = rapid.Byte().Draw(t, "b")
		}

		samples, err := DecodePCM16LE(raw)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		wav, err := NewWAVEncoder().Encode(samples, DefaultFormat)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		// 16-bit stereo payload is the raw PCM unchanged
		if string(wav[wavHeaderSize:]) != string(raw) {
			t.Fatalf("payload differs from input pcm")
		}
	})
}
