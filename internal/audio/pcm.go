package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/faiface/beep"
)

// resampleQuality is the beep resampler quality (1-64).
const resampleQuality = 4

// Format describes signed 16-bit little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// DefaultFormat is the playback format used for speech.
func DefaultFormat() Format {
	return Format{SampleRate: 44100, Channels: 1}
}

// BytesPerFrame returns the size of one frame across all channels.
func (f Format) BytesPerFrame() int {
	return 2 * f.Channels
}

// Duration returns the playing time of n bytes of PCM.
func (f Format) Duration(n int) time.Duration {
	if f.SampleRate == 0 || f.Channels == 0 {
		return 0
	}
	frames := n / f.BytesPerFrame()
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// Silence returns PCM silence of the given duration.
func (f Format) Silence(d time.Duration) []byte {
	frames := int(int64(d) * int64(f.SampleRate) / int64(time.Second))
	return make([]byte, frames*f.BytesPerFrame())
}

// Validate checks the format can be played.
func (f Format) Validate() error {
	if f.SampleRate < 8000 || f.SampleRate > 96000 {
		return fmt.Errorf("sample rate must be between 8000 and 96000 Hz, got %d", f.SampleRate)
	}
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", f.Channels)
	}
	return nil
}

// monoStreamer exposes mono s16le PCM as a beep.Streamer.
type monoStreamer struct {
	data []byte
	pos  int
}

func (s *monoStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) && s.pos+1 < len(s.data) {
		v := float64(int16(binary.LittleEndian.Uint16(s.data[s.pos:]))) / 32768
		samples[n][0], samples[n][1] = v, v
		s.pos += 2
		n++
	}
	return n, n > 0
}

func (s *monoStreamer) Err() error { return nil }

// Resample converts mono PCM from one sample rate to another.
func Resample(pcm []byte, from, to int) ([]byte, error) {
	if from == to || len(pcm) < 2 {
		return pcm, nil
	}
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid sample rates %d -> %d", from, to)
	}
	src := &monoStreamer{data: pcm}
	return FromStreamer(beep.Resample(resampleQuality, beep.SampleRate(from), beep.SampleRate(to), src))
}

// FromStreamer drains a beep streamer into mono s16le PCM, mixing stereo down.
func FromStreamer(s beep.Streamer) ([]byte, error) {
	var out []byte
	buf := make([][2]float64, 1024)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			out = binary.LittleEndian.AppendUint16(out, uint16(toInt16((frame[0]+frame[1])/2)))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}
	return out, nil
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * 32767))
}
