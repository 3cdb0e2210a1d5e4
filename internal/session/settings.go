package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/dictate/internal/speech"
)

// TimerMode selects what the main clock shows.
type TimerMode string

const (
	// ModeCountdown counts down from CountdownMinutes and ends the test at zero.
	ModeCountdown TimerMode = "countdown"
	// ModeStopwatch counts up from zero.
	ModeStopwatch TimerMode = "stopwatch"
)

// ErrInvalidTimerMode is returned for timer modes other than countdown and stopwatch.
var ErrInvalidTimerMode = errors.New("timer mode must be countdown or stopwatch")

// ParseTimerMode parses a timer mode name.
func ParseTimerMode(s string) (TimerMode, error) {
	switch mode := TimerMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case ModeCountdown, ModeStopwatch:
		return mode, nil
	case "":
		return ModeCountdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTimerMode, s)
	}
}

const (
	maxRereadGap     = 30 * time.Second
	maxNextItemGap   = 10 * time.Second
	minAutoNextDelay = 8 * time.Second
	watchdogSlack    = 3 * time.Second

	// ReplayRate is the speaking rate used when replaying tested parts.
	ReplayRate = 1.25
)

// Settings is the configuration of one run. It does not change while the
// run is in progress.
type Settings struct {
	RereadGap        time.Duration
	NextItemGap      time.Duration
	AutoNextDelay    time.Duration // 0 waits for a manual next
	TimerMode        TimerMode
	CountdownMinutes int
	ShowContext      bool
	Randomize        bool
	ReadingSpeed     float64
	RecurringReadout bool
	ReadPunctuation  bool
	Voice            speech.Voice

	// MaxUtteranceWait bounds how long a reading may go without completing.
	// Zero derives the bound from the text length and SynthesisTimeout.
	MaxUtteranceWait time.Duration

	// SynthesisTimeout is the longest the engine may take to produce one
	// utterance. A derived bound allows it once per queued utterance.
	SynthesisTimeout time.Duration
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		RereadGap:        5 * time.Second,
		NextItemGap:      2 * time.Second,
		AutoNextDelay:    10 * time.Second,
		TimerMode:        ModeCountdown,
		CountdownMinutes: 10,
		ShowContext:      true,
		ReadingSpeed:     1.0,
	}
}

// Normalize clamps the settings into their usable ranges. Short auto-next
// delays are raised to 8s, and recurring readout turns auto-next off.
func (s Settings) Normalize() Settings {
	s.RereadGap = min(max(s.RereadGap, 0), maxRereadGap)
	s.NextItemGap = min(max(s.NextItemGap, 0), maxNextItemGap)
	s.AutoNextDelay = max(s.AutoNextDelay, 0)
	s.MaxUtteranceWait = max(s.MaxUtteranceWait, 0)
	s.SynthesisTimeout = max(s.SynthesisTimeout, 0)

	switch {
	case s.RecurringReadout:
		s.AutoNextDelay = 0
	case s.AutoNextDelay > 0 && s.AutoNextDelay < minAutoNextDelay:
		s.AutoNextDelay = minAutoNextDelay
	}

	if s.TimerMode == "" {
		s.TimerMode = ModeCountdown
	}
	s.CountdownMinutes = max(s.CountdownMinutes, 1)

	if s.ReadingSpeed == 0 {
		s.ReadingSpeed = 1
	}
	s.ReadingSpeed = speech.ClampRate(s.ReadingSpeed)
	return s
}

// Validate checks settings that cannot be clamped.
func (s Settings) Validate() error {
	if _, err := ParseTimerMode(string(s.TimerMode)); err != nil {
		return err
	}
	return nil
}
