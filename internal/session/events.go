package session

import (
	"time"

	"github.com/dgnsrekt/dictate/internal/speech"
)

// TimerKind names a scheduled action. At most one of each kind is live.
type TimerKind int

const (
	// TimerItemGap waits between announcing progress and reading an item.
	TimerItemGap TimerKind = iota
	// TimerReread waits before the next sentence or the second reading.
	TimerReread
	// TimerRecurring waits before reading the item again in recurring readout.
	TimerRecurring
	// TimerCountdown ticks the auto-advance countdown every second.
	TimerCountdown
	// TimerClock ticks the main clock every second.
	TimerClock
	// TimerWatchdog fires when a reading takes too long to complete.
	TimerWatchdog

	numTimerKinds
)

// String returns the string representation of the timer kind.
func (k TimerKind) String() string {
	switch k {
	case TimerItemGap:
		return "item-gap"
	case TimerReread:
		return "reread"
	case TimerRecurring:
		return "recurring"
	case TimerCountdown:
		return "countdown"
	case TimerClock:
		return "clock"
	case TimerWatchdog:
		return "watchdog"
	default:
		return "unknown"
	}
}

// Event is an input to Transition.
type Event interface{ event() }

// Start begins the run.
type Start struct{}

// SpeechDone reports that an utterance finished.
type SpeechDone struct {
	ID  uint64
	Err error
}

// TimerFired reports that a timer started with StartTimer elapsed.
type TimerFired struct {
	Kind TimerKind
	Gen  uint64
}

// ReadAgain rereads the current item from the start as a manual retry.
type ReadAgain struct{}

// RepeatSentence replays the current sentence once, with no follow-up.
type RepeatSentence struct{}

// NextSentence moves to the next sentence of a paragraph and reads it once.
type NextSentence struct{}

// NextItem skips to the next item.
type NextItem struct{}

// End stops the run early.
type End struct{}

// ReplayTested speaks every tested part after the run has ended.
type ReplayTested struct{}

// Reset returns the session to idle.
type Reset struct{}

func (Start) event()          {}
func (SpeechDone) event()     {}
func (TimerFired) event()     {}
func (ReadAgain) event()      {}
func (RepeatSentence) event() {}
func (NextSentence) event()   {}
func (NextItem) event()       {}
func (End) event()            {}
func (ReplayTested) event()   {}
func (Reset) event()          {}

// Effect is an action Transition asks the caller to carry out, in order.
type Effect interface{ effect() }

// Speak queues an utterance.
type Speak struct {
	Utterance speech.Utterance
}

// CancelSpeech drops every queued and playing utterance.
type CancelSpeech struct{}

// StartTimer schedules TimerFired{Kind, Gen} after Delay.
type StartTimer struct {
	Kind  TimerKind
	Gen   uint64
	Delay time.Duration
}

// StopTimer cancels the live timer of Kind.
type StopTimer struct {
	Kind TimerKind
}

func (Speak) effect()        {}
func (CancelSpeech) effect() {}
func (StartTimer) effect()   {}
func (StopTimer) effect()    {}
