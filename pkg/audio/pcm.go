package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// SampleRate of the speech service output.
	SampleRate = 24000
	// Channels of the speech service output.
	Channels = 1
)

var (
	ErrOddLength     = errors.New("audio: pcm16 payload has an odd number of bytes")
	ErrFrameMismatch = errors.New("audio: sample count is not a multiple of the channel count")
)

// Buffer is decoded audio, one float32 slice per channel, amplitudes in [-1, 1].
type Buffer struct {
	SampleRate int
	Channels   int
	Data       [][]float32
}

func (b *Buffer) Frames() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Decode turns a base64 speech payload into a 24 kHz mono buffer.
func Decode(payload string) (*Buffer, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return DecodePCM16(raw, SampleRate, Channels)
}

// DecodePCM16 reads little-endian signed 16-bit samples, interleaved per frame,
// and scales each one by 1/32768.
func DecodePCM16(data []byte, sampleRate, channels int) (*Buffer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("audio: invalid channel count %d", channels)
	}
	if len(data)%2 != 0 {
		return nil, ErrOddLength
	}

	samples := len(data) / 2
	if samples%channels != 0 {
		return nil, ErrFrameMismatch
	}
	frames := samples / channels

	buf := &Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Data:       make([][]float32, channels),
	}
	for ch := range buf.Data {
		buf.Data[ch] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			offset := (i*channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(data[offset:]))
			buf.Data[ch][i] = float32(sample) / 32768.0
		}
	}

	return buf, nil
}

// EncodeWAV writes the buffer back out as a 16-bit PCM RIFF/WAVE file.
func EncodeWAV(b *Buffer) []byte {
	frames := b.Frames()
	channels := b.Channels
	if channels < 1 {
		channels = 1
	}
	dataSize := frames * channels * 2

	var out bytes.Buffer
	out.Grow(44 + dataSize)

	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(36+dataSize))
	out.WriteString("WAVE")

	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&out, binary.LittleEndian, uint16(channels))
	binary.Write(&out, binary.LittleEndian, uint32(b.SampleRate))
	binary.Write(&out, binary.LittleEndian, uint32(b.SampleRate*channels*2))
	binary.Write(&out, binary.LittleEndian, uint16(channels*2))
	binary.Write(&out, binary.LittleEndian, uint16(16))

	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(dataSize))

	sample := make([]byte, 2)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			binary.LittleEndian.PutUint16(sample, uint16(toInt16(b.Data[ch][i])))
			out.Write(sample)
		}
	}

	return out.Bytes()
}

func toInt16(v float32) int16 {
	s := math.Round(float64(v) * 32768.0)
	if s > math.MaxInt16 {
		return math.MaxInt16
	}
	if s < math.MinInt16 {
		return math.MinInt16
	}
	return int16(s)
}
