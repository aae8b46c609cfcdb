package audio

import "fmt"

// BytesPerSample is the width of one s16le sample.
const BytesPerSample = 2

// Buffer is decoded audio held in memory as interleaved s16le PCM.
type Buffer struct {
	SampleRate int
	Channels   int
	Data       []byte
}

// NewBuffer returns an empty buffer with the given layout.
func NewBuffer(sampleRate, channels int) *Buffer {
	return &Buffer{SampleRate: sampleRate, Channels: channels}
}

func (b *Buffer) frameSize() int {
	return b.Channels * BytesPerSample
}

// Frames returns the number of sample frames held.
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Data) / b.frameSize()
}

// DurationMillis returns the buffer length in milliseconds, rounded down.
func (b *Buffer) DurationMillis() int64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return int64(b.Frames()) * 1000 / int64(b.SampleRate)
}

func (b *Buffer) frameAt(ms int64) int {
	if ms <= 0 {
		return 0
	}
	frame := ms * int64(b.SampleRate) / 1000
	if total := int64(b.Frames()); frame > total {
		return int(total)
	}
	return int(frame)
}

// Slice returns a view of [startMs, startMs+durMs) clamped to the buffer end.
// The returned buffer shares memory with b and must not be mutated.
func (b *Buffer) Slice(startMs, durMs int64) *Buffer {
	from := b.frameAt(startMs)
	to := b.frameAt(startMs + max(durMs, 0))
	fs := b.frameSize()
	return &Buffer{
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
		Data:       b.Data[from*fs : to*fs : to*fs],
	}
}

// Append copies other's samples onto the end of b. Layouts must match.
func (b *Buffer) Append(other *Buffer) error {
	if other == nil || len(other.Data) == 0 {
		return nil
	}
	if other.SampleRate != b.SampleRate || other.Channels != b.Channels {
		return fmt.Errorf("append %d Hz/%d ch onto %d Hz/%d ch buffer",
			other.SampleRate, other.Channels, b.SampleRate, b.Channels)
	}
	b.Data = append(b.Data, other.Data...)
	return nil
}
