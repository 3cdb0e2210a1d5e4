package session

import (
	"errors"
	"testing"
	"time"
)

func TestSettingsNormalize(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		check  func(*testing.T, Settings)
	}{
		{
			name:   "defaults unchanged",
			modify: func(*Settings) {},
			check: func(t *testing.T, s Settings) {
				if s != DefaultSettings() {
					t.Errorf("Normalize changed defaults: %+v", s)
				}
			},
		},
		{
			name:   "short auto next raised",
			modify: func(s *Settings) { s.AutoNextDelay = 3 * time.Second },
			check: func(t *testing.T, s Settings) {
				if s.AutoNextDelay != 8*time.Second {
					t.Errorf("AutoNextDelay = %v, want 8s", s.AutoNextDelay)
				}
			},
		},
		{
			name:   "zero auto next kept",
			modify: func(s *Settings) { s.AutoNextDelay = 0 },
			check: func(t *testing.T, s Settings) {
				if s.AutoNextDelay != 0 {
					t.Errorf("AutoNextDelay = %v, want 0", s.AutoNextDelay)
				}
			},
		},
		{
			name:   "recurring disables auto next",
			modify: func(s *Settings) { s.RecurringReadout = true },
			check: func(t *testing.T, s Settings) {
				if s.AutoNextDelay != 0 {
					t.Errorf("AutoNextDelay = %v, want 0", s.AutoNextDelay)
				}
			},
		},
		{
			name: "gaps clamped",
			modify: func(s *Settings) {
				s.RereadGap = time.Minute
				s.NextItemGap = -time.Second
			},
			check: func(t *testing.T, s Settings) {
				if s.RereadGap != 30*time.Second {
					t.Errorf("RereadGap = %v, want 30s", s.RereadGap)
				}
				if s.NextItemGap != 0 {
					t.Errorf("NextItemGap = %v, want 0", s.NextItemGap)
				}
			},
		},
		{
			name:   "long item gap clamped",
			modify: func(s *Settings) { s.NextItemGap = 20 * time.Second },
			check: func(t *testing.T, s Settings) {
				if s.NextItemGap != 10*time.Second {
					t.Errorf("NextItemGap = %v, want 10s", s.NextItemGap)
				}
			},
		},
		{
			name: "speed",
			modify: func(s *Settings) {
				s.ReadingSpeed = 5
			},
			check: func(t *testing.T, s Settings) {
				if s.ReadingSpeed != 2 {
					t.Errorf("ReadingSpeed = %v, want 2", s.ReadingSpeed)
				}
			},
		},
		{
			name:   "zero speed",
			modify: func(s *Settings) { s.ReadingSpeed = 0 },
			check: func(t *testing.T, s Settings) {
				if s.ReadingSpeed != 1 {
					t.Errorf("ReadingSpeed = %v, want 1", s.ReadingSpeed)
				}
			},
		},
		{
			name: "timer defaults",
			modify: func(s *Settings) {
				s.TimerMode = ""
				s.CountdownMinutes = 0
			},
			check: func(t *testing.T, s Settings) {
				if s.TimerMode != ModeCountdown || s.CountdownMinutes != 1 {
					t.Errorf("timer = %q %d", s.TimerMode, s.CountdownMinutes)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			tt.check(t, s.Normalize())
		})
	}
}

func TestParseTimerMode(t *testing.T) {
	tests := []struct {
		in      string
		want    TimerMode
		wantErr bool
	}{
		{"countdown", ModeCountdown, false},
		{"Stopwatch", ModeStopwatch, false},
		{" stopwatch ", ModeStopwatch, false},
		{"", ModeCountdown, false},
		{"hourglass", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTimerMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimerMode(%q) error = %v", tt.in, err)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidTimerMode) {
			t.Errorf("ParseTimerMode(%q) error = %v, want ErrInvalidTimerMode", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseTimerMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	s.TimerMode = "hourglass"
	if err := s.Validate(); !errors.Is(err, ErrInvalidTimerMode) {
		t.Errorf("Validate() = %v, want ErrInvalidTimerMode", err)
	}
}
