package speech

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/dgnsrekt/dictate/internal/audio"
)

const (
	// MinRate and MaxRate bound the reading speed.
	MinRate = 0.5
	MaxRate = 2.0

	wordsPerMinute = 150
	minEstimate    = 500 * time.Millisecond
)

// Utterance is one request to speak text.
type Utterance struct {
	ID    uint64
	Text  string
	Voice Voice
	Rate  float64
}

// Completion reports that an utterance finished, successfully or not.
type Completion struct {
	ID  uint64
	Err error
}

// Speaker speaks utterances in the order they were queued.
type Speaker interface {
	// Speak queues an utterance.
	Speak(u Utterance) error
	// Cancel drops queued utterances and stops the current one. Canceled
	// utterances never complete.
	Cancel()
	// Completions delivers one Completion per finished utterance.
	Completions() <-chan Completion
	Close() error
}

// Engine synthesizes text to 16-bit mono PCM at Format().SampleRate.
type Engine interface {
	Name() string
	Synthesize(ctx context.Context, text string, voice Voice, speed float64) ([]byte, error)
	Format() audio.Format
	Voices(ctx context.Context) ([]Voice, error)
	Validate() error
	Close() error
}

// ValidateRate checks a reading speed.
func ValidateRate(rate float64) error {
	if rate < MinRate || rate > MaxRate {
		return ErrInvalidSpeed
	}
	return nil
}

// ClampRate forces rate into the supported range.
func ClampRate(rate float64) float64 {
	return min(max(rate, MinRate), MaxRate)
}

// EstimateDuration guesses how long text takes to say at rate. Each Han
// character counts as half a word.
func EstimateDuration(text string, rate float64) time.Duration {
	if rate <= 0 {
		rate = 1
	}

	han := 0
	rest := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Han, r) {
			han++
			return ' '
		}
		return r
	}, text)

	words := float64(len(strings.Fields(rest))) + float64(han)/2
	d := time.Duration(words * float64(time.Minute) / (wordsPerMinute * rate))
	return max(d, minEstimate)
}
