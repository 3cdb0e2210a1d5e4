package engines

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/dictate/internal/audio"
	"github.com/dgnsrekt/dictate/internal/speech"
)

// FallbackEngine wraps a primary engine with automatic fallback to a
// secondary engine when the primary fails repeatedly. Output from the
// fallback is resampled to the primary's format.
type FallbackEngine struct {
	primary     speech.Engine
	fallback    speech.Engine
	maxFailures int

	mu            sync.Mutex
	failures      int
	usingFallback bool
}

// NewFallbackEngine creates a new engine with automatic fallback capability.
func NewFallbackEngine(primary, fallback speech.Engine, maxFailures int) *FallbackEngine {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &FallbackEngine{
		primary:     primary,
		fallback:    fallback,
		maxFailures: maxFailures,
	}
}

// Name returns the name of the engine currently in use.
func (f *FallbackEngine) Name() string {
	if f.UsingFallback() {
		return f.fallback.Name()
	}
	return f.primary.Name()
}

// Format returns the primary engine's format.
func (f *FallbackEngine) Format() audio.Format { return f.primary.Format() }

// UsingFallback reports whether the primary engine has been abandoned.
func (f *FallbackEngine) UsingFallback() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usingFallback
}

// Voices lists the voices of both engines.
func (f *FallbackEngine) Voices(ctx context.Context) ([]speech.Voice, error) {
	var voices []speech.Voice
	var errs []error
	for _, e := range []speech.Engine{f.primary, f.fallback} {
		v, err := e.Voices(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s voices: %w", e.Name(), err))
			continue
		}
		voices = append(voices, v...)
	}
	if len(voices) == 0 {
		return nil, errors.Join(errs...)
	}
	return voices, nil
}

// Synthesize uses the primary engine until it has failed maxFailures times
// in a row, then the fallback. A timed-out attempt still counts as a failure
// but the fallback serves that text at once. Voices belonging to the
// fallback go straight to it.
func (f *FallbackEngine) Synthesize(ctx context.Context, text string, voice speech.Voice, speed float64) ([]byte, error) {
	if voice.Engine == f.fallback.Name() || f.UsingFallback() {
		return f.synthesizeFallback(ctx, text, voice, speed)
	}

	pcm, err := f.primary.Synthesize(ctx, text, voice, speed)
	if err == nil {
		f.mu.Lock()
		if f.failures > 0 {
			log.Info("Primary speech engine recovered", "engine", f.primary.Name(), "failures", f.failures)
			f.failures = 0
		}
		f.mu.Unlock()
		return pcm, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	f.mu.Lock()
	f.failures++
	failures := f.failures
	switched := failures >= f.maxFailures
	if switched {
		f.usingFallback = true
	}
	f.mu.Unlock()

	log.Warn("Primary speech engine failed", "engine", f.primary.Name(),
		"attempt", failures, "max", f.maxFailures, "err", err)
	if !switched {
		if speech.IsRetryable(err) {
			log.Debug("Retrying on fallback speech engine", "engine", f.fallback.Name())
			return f.synthesizeFallback(ctx, text, voice, speed)
		}
		return nil, err
	}

	log.Warn("Switching to fallback speech engine", "engine", f.fallback.Name())
	return f.synthesizeFallback(ctx, text, voice, speed)
}

func (f *FallbackEngine) synthesizeFallback(ctx context.Context, text string, voice speech.Voice, speed float64) ([]byte, error) {
	if voice.Engine != f.fallback.Name() {
		voice = f.fallbackVoice(ctx, voice)
	}
	pcm, err := f.fallback.Synthesize(ctx, text, voice, speed)
	if err != nil {
		return nil, err
	}
	return audio.Resample(pcm, f.fallback.Format().SampleRate, f.primary.Format().SampleRate)
}

// fallbackVoice picks the fallback's best voice in the same language group.
func (f *FallbackEngine) fallbackVoice(ctx context.Context, voice speech.Voice) speech.Voice {
	voices, err := f.fallback.Voices(ctx)
	if err != nil {
		return voice
	}
	ranked := speech.Rank(voices)
	for _, v := range ranked {
		if speech.Group(v.Lang) == speech.Group(voice.Lang) {
			return v
		}
	}
	if len(ranked) > 0 {
		return ranked[0]
	}
	return voice
}

// Validate succeeds if either engine is usable. An unusable primary
// switches to the fallback at once.
func (f *FallbackEngine) Validate() error {
	primaryErr := f.primary.Validate()
	if primaryErr == nil {
		return nil
	}
	if err := f.fallback.Validate(); err != nil {
		return fmt.Errorf("both engines failed: %w", errors.Join(primaryErr, err))
	}

	log.Warn("Using fallback speech engine", "primary", f.primary.Name(), "err", primaryErr)
	f.mu.Lock()
	f.usingFallback = true
	f.mu.Unlock()
	return nil
}

// Close closes both engines.
func (f *FallbackEngine) Close() error {
	return errors.Join(f.primary.Close(), f.fallback.Close())
}

var _ speech.Engine = (*FallbackEngine)(nil)
