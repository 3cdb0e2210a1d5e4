package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func sine(rate int, d time.Duration) []byte {
	n := int(d.Seconds() * float64(rate))
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		v := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		out = binary.LittleEndian.AppendUint16(out, uint16(v))
	}
	return out
}

func TestFormat_Duration(t *testing.T) {
	f := Format{SampleRate: 44100, Channels: 1}

	silence := f.Silence(time.Second)
	if len(silence) != 88200 {
		t.Fatalf("Silence(1s) length = %d, want 88200", len(silence))
	}
	if got := f.Duration(len(silence)); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}
	if got := (Format{}).Duration(100); got != 0 {
		t.Errorf("zero format Duration() = %v, want 0", got)
	}
}

func TestFormat_Validate(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{"default", DefaultFormat(), false},
		{"piper rate", Format{SampleRate: 22050, Channels: 1}, false},
		{"stereo", Format{SampleRate: 48000, Channels: 2}, false},
		{"too low", Format{SampleRate: 4000, Channels: 1}, true},
		{"bad channels", Format{SampleRate: 44100, Channels: 6}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResample(t *testing.T) {
	in := sine(22050, time.Second)

	same, err := Resample(in, 22050, 22050)
	if err != nil {
		t.Fatalf("Resample() error: %v", err)
	}
	if !bytes.Equal(same, in) {
		t.Error("Resample() with equal rates should return input unchanged")
	}

	out, err := Resample(in, 22050, 44100)
	if err != nil {
		t.Fatalf("Resample() error: %v", err)
	}

	want := 2 * len(in)
	if diff := math.Abs(float64(len(out) - want)); diff > float64(want)*0.05 {
		t.Errorf("Resample() length = %d, want about %d", len(out), want)
	}
	if len(out)%2 != 0 {
		t.Errorf("Resample() produced odd byte count %d", len(out))
	}

	if _, err := Resample(in, 0, 44100); err == nil {
		t.Error("expected error for zero source rate")
	}
}

func TestFromStreamer_RoundTrip(t *testing.T) {
	in := sine(44100, 100*time.Millisecond)
	out, err := FromStreamer(&monoStreamer{data: in})
	if err != nil {
		t.Fatalf("FromStreamer() error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("FromStreamer() length = %d, want %d", len(out), len(in))
	}

	// Scaling through float may be off by one step.
	for i := 0; i+1 < len(in); i += 2 {
		a := int16(binary.LittleEndian.Uint16(in[i:]))
		b := int16(binary.LittleEndian.Uint16(out[i:]))
		if d := int(a) - int(b); d > 1 || d < -1 {
			t.Fatalf("sample %d = %d, want %d", i/2, b, a)
		}
	}
}

func TestPlayerState_String(t *testing.T) {
	for state, want := range map[PlayerState]string{
		StateStopped:    "stopped",
		StatePlaying:    "playing",
		StateClosed:     "closed",
		PlayerState(42): "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
