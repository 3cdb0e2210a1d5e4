package speech

import (
	"context"
	"errors"
	"fmt"
)

// Common speech errors
var (
	// ErrNoVoices indicates no English or Chinese voice is installed
	ErrNoVoices = errors.New("No English/Chinese voices found") //nolint:staticcheck

	// ErrEngineNotAvailable indicates the selected engine is not available
	ErrEngineNotAvailable = errors.New("selected speech engine is not available")

	// ErrSynthesisFailed indicates synthesis operation failed
	ErrSynthesisFailed = errors.New("text synthesis failed")

	// ErrAudioDeviceUnavailable indicates audio device cannot be accessed
	ErrAudioDeviceUnavailable = errors.New("audio device unavailable")

	// ErrEmptyText indicates there is nothing to synthesize
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidSpeed indicates speed value is out of range
	ErrInvalidSpeed = errors.New("speed must be between 0.5 and 2.0")

	// ErrSpeakerClosed is returned by Speak after Close
	ErrSpeakerClosed = errors.New("speaker is closed")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")
)

// ErrorCode identifies specific error types
type ErrorCode string

const (
	// Engine errors
	ErrorCodeEngineFailure     ErrorCode = "ENGINE_FAILURE"
	ErrorCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrorCodeEngineTimeout     ErrorCode = "ENGINE_TIMEOUT"

	// Audio errors
	ErrorCodeAudioFailure ErrorCode = "AUDIO_FAILURE"
	ErrorCodeAudioDevice  ErrorCode = "AUDIO_DEVICE"
	ErrorCodeAudioFormat  ErrorCode = "AUDIO_FORMAT"

	// Input errors
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorCodeTextTooLong  ErrorCode = "TEXT_TOO_LONG"

	// System errors
	ErrorCodeTimeout  ErrorCode = "TIMEOUT"
	ErrorCodeCanceled ErrorCode = "CANCELED"
)

// SpeechError represents a speech failure with additional context.
type SpeechError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// NewSpeechError creates a new speech error.
func NewSpeechError(code ErrorCode, message string, cause error) *SpeechError {
	return &SpeechError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// Error implements the error interface
func (e *SpeechError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SpeechError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *SpeechError) WithContext(key string, value any) *SpeechError {
	e.Context[key] = value
	return e
}

// IsFatal reports whether the error should stop the session rather than
// just the current utterance.
func (e *SpeechError) IsFatal() bool {
	switch e.Code {
	case ErrorCodeEngineUnavailable, ErrorCodeAudioDevice:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether the failure was transient, so the same text
// may succeed on another attempt.
func (e *SpeechError) IsRetryable() bool {
	switch e.Code {
	case ErrorCodeTimeout, ErrorCodeEngineTimeout:
		return true
	default:
		return false
	}
}

// IsFatal reports whether err wraps a fatal SpeechError.
func IsFatal(err error) bool {
	var se *SpeechError
	return errors.As(err, &se) && se.IsFatal()
}

// IsRetryable reports whether err is a transient failure: a retryable
// SpeechError or a timeout.
func IsRetryable(err error) bool {
	var se *SpeechError
	if errors.As(err, &se) {
		return se.IsRetryable()
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout)
}
