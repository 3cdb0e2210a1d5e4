package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/faiface/beep/mp3"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/dictate/internal/audio"
	"github.com/dgnsrekt/dictate/internal/speech"
)

const (
	gttsName      = "gtts"
	gttsMaxText   = 5000
	gttsMaxMP3    = 50 * 1024 * 1024
	gttsTimeout   = 30 * time.Second
	gttsPerMinute = 50
	// gttsSlowBelow is the speed at or below which --slow is used.
	gttsSlowBelow = 0.75
)

// gttsVoice pairs a listed voice with the gtts-cli language and domain.
type gttsVoice struct {
	voice speech.Voice
	lang  string
	tld   string
}

var gttsVoices = []gttsVoice{
	{speech.Voice{ID: "en-US", Name: "Google US English", Lang: "en-US", Default: true}, "en", "com"},
	{speech.Voice{ID: "en-GB", Name: "Google UK English", Lang: "en-GB"}, "en", "co.uk"},
	{speech.Voice{ID: "zh-CN", Name: "Google Mandarin (Mainland)", Lang: "zh-CN"}, "zh-CN", "com"},
	{speech.Voice{ID: "zh-TW", Name: "Google Mandarin (Taiwan)", Lang: "zh-TW"}, "zh-TW", "com"},
}

// GTTSEngine synthesizes with Google Translate's voices through gtts-cli.
// The MP3 it returns is decoded in process.
type GTTSEngine struct {
	binary        string
	timeout       time.Duration
	slowThreshold float64
	format        audio.Format

	// Rate limiting to avoid being blocked by Google
	limiter *rate.Limiter
}

// GTTSConfig holds configuration for the gTTS engine.
type GTTSConfig struct {
	// Binary defaults to gtts-cli.
	Binary string

	// RequestsPerMinute caps synthesis requests (defaults to 50).
	RequestsPerMinute int

	// SlowThreshold is the speed at or below which slow speech is requested.
	SlowThreshold float64

	Timeout    time.Duration
	SampleRate int
}

// NewGTTSEngine creates a new gTTS engine.
func NewGTTSEngine(config GTTSConfig) (*GTTSEngine, error) {
	if config.Binary == "" {
		config.Binary = "gtts-cli"
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = gttsPerMinute
	}
	if config.SlowThreshold <= 0 {
		config.SlowThreshold = gttsSlowBelow
	}
	if config.Timeout <= 0 {
		config.Timeout = gttsTimeout
	}
	if config.SampleRate == 0 {
		config.SampleRate = audio.DefaultFormat().SampleRate
	}

	format := audio.Format{SampleRate: config.SampleRate, Channels: 1}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &GTTSEngine{
		binary:        config.Binary,
		timeout:       config.Timeout,
		slowThreshold: config.SlowThreshold,
		format:        format,
		limiter:       rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
	}, nil
}

// Name returns the engine name.
func (e *GTTSEngine) Name() string { return gttsName }

// Format returns the format of synthesized audio.
func (e *GTTSEngine) Format() audio.Format { return e.format }

// Voices returns the fixed set of English and Chinese voices.
func (e *GTTSEngine) Voices(context.Context) ([]speech.Voice, error) {
	voices := make([]speech.Voice, len(gttsVoices))
	for i, v := range gttsVoices {
		voices[i] = v.voice
		voices[i].Engine = gttsName
	}
	return voices, nil
}

// Synthesize converts text to audio: text -> gtts-cli -> MP3 -> PCM.
func (e *GTTSEngine) Synthesize(ctx context.Context, text string, voice speech.Voice, speed float64) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, speech.ErrEmptyText
	}
	if len(text) > gttsMaxText {
		return nil, speech.NewSpeechError(speech.ErrorCodeTextTooLong,
			fmt.Sprintf("text too long: %d characters (max %d)", len(text), gttsMaxText), nil)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	mp3Data, err := runCommand(ctx, e.timeout, text, e.binary, e.args(voice, speed)...)
	if err != nil {
		return nil, fmt.Errorf("MP3 generation failed: %w", err)
	}
	if len(mp3Data) == 0 {
		return nil, errors.New("gtts-cli produced no MP3 output")
	}
	if len(mp3Data) > gttsMaxMP3 {
		return nil, fmt.Errorf("gtts-cli MP3 output too large: %d bytes (max %d)", len(mp3Data), gttsMaxMP3)
	}

	return e.decode(mp3Data)
}

// args reads the text from stdin ("-") so leading dashes are never taken
// for flags.
func (e *GTTSEngine) args(voice speech.Voice, speed float64) []string {
	v := lookupGTTSVoice(voice.ID)
	args := []string{"-", "--lang", v.lang, "--tld", v.tld}
	if speed > 0 && speed <= e.slowThreshold {
		args = append(args, "--slow")
	}
	return append(args, "--output", "-")
}

func (e *GTTSEngine) decode(mp3Data []byte) ([]byte, error) {
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(mp3Data)))
	if err != nil {
		return nil, speech.NewSpeechError(speech.ErrorCodeAudioFormat, "invalid MP3 from gtts-cli", err)
	}
	defer streamer.Close() //nolint:errcheck

	pcm, err := audio.FromStreamer(streamer)
	if err != nil {
		return nil, err
	}
	return audio.Resample(pcm, int(format.SampleRate), e.format.SampleRate)
}

// Validate checks that gtts-cli is installed.
func (e *GTTSEngine) Validate() error {
	path, err := exec.LookPath(e.binary)
	if err != nil {
		return speech.NewSpeechError(speech.ErrorCodeEngineUnavailable,
			"gtts-cli not found in PATH, install with: pip install gtts", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := runCommand(ctx, 5*time.Second, "", path, "--help"); err != nil {
		return speech.NewSpeechError(speech.ErrorCodeEngineUnavailable, "cannot execute gtts-cli", err)
	}
	return nil
}

// Close releases resources held by the engine.
func (e *GTTSEngine) Close() error { return nil }

func lookupGTTSVoice(id string) gttsVoice {
	for _, v := range gttsVoices {
		if v.voice.ID == id {
			return v
		}
	}
	if strings.HasPrefix(id, "zh") {
		return gttsVoices[2]
	}
	return gttsVoices[0]
}

var _ speech.Engine = (*GTTSEngine)(nil)
