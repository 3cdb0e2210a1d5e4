package engines

import (
	"context"
	"sync"
	"time"

	"github.com/dgnsrekt/dictate/internal/audio"
	"github.com/dgnsrekt/dictate/internal/speech"
)

const mockName = "mock"

// MockEngine produces silence as long as the text would take to say.
// It needs no external programs.
type MockEngine struct {
	format audio.Format

	mu        sync.Mutex
	delay     time.Duration
	failure   error
	callCount int
	texts     []string
}

// NewMockEngine creates a mock engine with no synthesis delay.
func NewMockEngine() *MockEngine {
	return &MockEngine{format: audio.DefaultFormat()}
}

// Name returns the engine name.
func (e *MockEngine) Name() string { return mockName }

// Format returns the format of synthesized audio.
func (e *MockEngine) Format() audio.Format { return e.format }

// Voices returns one English and one Chinese voice.
func (e *MockEngine) Voices(context.Context) ([]speech.Voice, error) {
	return []speech.Voice{
		{ID: "mock-en", Name: "Mock English", Lang: "en-US", Engine: mockName, LocalService: true, Default: true},
		{ID: "mock-zh", Name: "Mock Chinese", Lang: "zh-CN", Engine: mockName, LocalService: true},
	}, nil
}

// Synthesize returns silence after the configured delay.
func (e *MockEngine) Synthesize(ctx context.Context, text string, _ speech.Voice, speed float64) ([]byte, error) {
	e.mu.Lock()
	e.callCount++
	e.texts = append(e.texts, text)
	delay, failure := e.delay, e.failure
	e.mu.Unlock()

	if failure != nil {
		return nil, failure
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return e.format.Silence(speech.EstimateDuration(text, speed)), nil
}

// Validate always succeeds.
func (e *MockEngine) Validate() error { return nil }

// Close releases resources held by the engine.
func (e *MockEngine) Close() error { return nil }

// SetDelay sets the simulated processing delay.
func (e *MockEngine) SetDelay(delay time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = delay
}

// SetFailure makes every synthesis fail with err. A nil err clears it.
func (e *MockEngine) SetFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failure = err
}

// CallCount returns the number of Synthesize calls.
func (e *MockEngine) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

// Texts returns every text passed to Synthesize, in order.
func (e *MockEngine) Texts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.texts...)
}

var _ speech.Engine = (*MockEngine)(nil)
