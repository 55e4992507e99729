// If you are AI: This file implements WAVEncoder, a RIFF/WAVE PCM encoder for 16, 24 and 32 bit samples.

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// wavHeaderSize is the canonical 44-byte PCM header.
const wavHeaderSize = 44

// wavHeader is the on-wire RIFF header for uncompressed PCM.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

// WAVEncoder encodes each chunk as a standalone WAV file so consumers can start
// decoding from any chunk.
type WAVEncoder struct{}

// NewWAVEncoder returns a WAV encoder.
func NewWAVEncoder() *WAVEncoder {
	return &WAVEncoder{}
}

// ContentType returns audio/wav.
func (e *WAVEncoder) ContentType() string {
	return "audio/wav"
}

// Encode writes the header followed by little-endian samples.
// The sample count must be a whole number of frames and every sample must fit the bit depth.
func (e *WAVEncoder) Encode(samples []int32, format Format) ([]byte, error) {
	if err := format.Verify(); err != nil {
		return nil, err
	}
	if len(samples)%format.Channels != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a multiple of %d channels",
			ErrInvalidSamples, len(samples), format.Channels)
	}

	bytesPerSample := format.BitsPerSample / 8
	dataSize := uint32(len(samples) * bytesPerSample)

	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(format.Channels),
		SampleRate:    uint32(format.SampleRate),
		ByteRate:      uint32(format.SampleRate * format.BlockAlign()),
		BlockAlign:    uint16(format.BlockAlign()),
		BitsPerSample: uint16(format.BitsPerSample),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+int(dataSize)))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("write wav header: %w", err)
	}

	lo, hi := format.sampleRange()
	var scratch [4]byte
	for i, s := range samples {
		if int64(s) < lo || int64(s) > hi {
			return nil, fmt.Errorf("%w: sample %d value %d exceeds %d bits",
				ErrInvalidSamples, i, s, format.BitsPerSample)
		}
		binary.LittleEndian.PutUint32(scratch[:], uint32(s))
		buf.Write(scratch[:bytesPerSample])
	}

	return buf.Bytes(), nil
}

// WAVInfo is the format read back from a WAV header.
type WAVInfo struct {
	Format    Format
	DataBytes int
	Frames    int
}

// ParseWAVHeader reads the canonical 44-byte header.
func ParseWAVHeader(data []byte) (WAVInfo, error) {
	if len(data) < wavHeaderSize {
		return WAVInfo{}, fmt.Errorf("%w: wav data too short (%d bytes)", ErrInvalidFormat, len(data))
	}

	var h wavHeader
	if err := binary.Read(bytes.NewReader(data[:wavHeaderSize]), binary.LittleEndian, &h); err != nil {
		return WAVInfo{}, fmt.Errorf("read wav header: %w", err)
	}
	if string(h.ChunkID[:]) != "RIFF" || string(h.Format[:]) != "WAVE" || string(h.Subchunk2ID[:]) != "data" {
		return WAVInfo{}, fmt.Errorf("%w: not a canonical PCM wav", ErrInvalidFormat)
	}

	f := Format{
		SampleRate:    int(h.SampleRate),
		Channels:      int(h.NumChannels),
		BitsPerSample: int(h.BitsPerSample),
	}
	if err := f.Verify(); err != nil {
		return WAVInfo{}, err
	}
	return WAVInfo{
		Format:    f,
		DataBytes: int(h.Subchunk2Size),
		Frames:    int(h.Subchunk2Size) / f.BlockAlign(),
	}, nil
}
