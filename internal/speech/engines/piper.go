package engines

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgnsrekt/dictate/internal/audio"
	"github.com/dgnsrekt/dictate/internal/speech"
)

const (
	piperName         = "piper"
	piperMaxText      = 5000
	piperMaxAudio     = 10 * 1024 * 1024
	piperDefaultRate  = 22050
	piperModelExt     = ".onnx"
	piperModelCfgExt  = ".onnx.json"
	piperDefaultLimit = 10 * time.Second
)

// PiperEngine synthesizes offline with the Piper binary. Each call starts a
// fresh process.
type PiperEngine struct {
	binary    string
	modelsDir string
	timeout   time.Duration
	format    audio.Format

	mu     sync.RWMutex
	voices []speech.Voice
	models map[string]piperModel
}

// PiperConfig holds configuration for the Piper engine.
type PiperConfig struct {
	// Binary is the piper executable. Defaults to the first one found.
	Binary string

	// ModelsDir holds *.onnx voices with their .onnx.json configs (required).
	ModelsDir string

	// Timeout bounds a single synthesis. Defaults to 10s.
	Timeout time.Duration

	// SampleRate of the returned audio. Models at other rates are resampled.
	SampleRate int
}

type piperModel struct {
	path       string
	config     string
	sampleRate int
}

// piperModelConfig is the subset of a Piper voice config we read.
type piperModelConfig struct {
	Dataset string `json:"dataset"`
	Audio   struct {
		SampleRate int    `json:"sample_rate"`
		Quality    string `json:"quality"`
	} `json:"audio"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
	Espeak struct {
		Voice string `json:"voice"`
	} `json:"espeak"`
}

// NewPiperEngine creates a Piper engine and discovers its voices.
func NewPiperEngine(config PiperConfig) (*PiperEngine, error) {
	if config.ModelsDir == "" {
		return nil, errors.New("piper models directory is required")
	}
	info, err := os.Stat(config.ModelsDir)
	if err != nil {
		return nil, fmt.Errorf("piper models directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("piper models path %s is not a directory", config.ModelsDir)
	}

	if config.Binary == "" {
		config.Binary = findPiperBinary()
	}
	if config.Timeout <= 0 {
		config.Timeout = piperDefaultLimit
	}
	if config.SampleRate == 0 {
		config.SampleRate = piperDefaultRate
	}

	e := &PiperEngine{
		binary:    config.Binary,
		modelsDir: config.ModelsDir,
		timeout:   config.Timeout,
		format:    audio.Format{SampleRate: config.SampleRate, Channels: 1},
	}
	if err := e.format.Validate(); err != nil {
		return nil, err
	}
	if err := e.loadVoices(); err != nil {
		return nil, err
	}
	return e, nil
}

// Name returns the engine name.
func (e *PiperEngine) Name() string { return piperName }

// Format returns the format of synthesized audio.
func (e *PiperEngine) Format() audio.Format { return e.format }

// Voices returns the discovered voices.
func (e *PiperEngine) Voices(context.Context) ([]speech.Voice, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return append([]speech.Voice(nil), e.voices...), nil
}

// Synthesize converts text to audio using the model behind voice.
func (e *PiperEngine) Synthesize(ctx context.Context, text string, voice speech.Voice, speed float64) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, speech.ErrEmptyText
	}
	if len(text) > piperMaxText {
		return nil, speech.NewSpeechError(speech.ErrorCodeTextTooLong,
			fmt.Sprintf("text too long: %d characters (max %d)", len(text), piperMaxText), nil)
	}

	model, err := e.model(voice.ID)
	if err != nil {
		return nil, err
	}

	pcm, err := runCommand(ctx, e.timeout, text, e.binary, piperArgs(model, speed)...)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, errors.New("piper produced no audio output")
	}
	if len(pcm) > piperMaxAudio {
		return nil, fmt.Errorf("piper output too large: %d bytes (max %d)", len(pcm), piperMaxAudio)
	}

	return audio.Resample(pcm, model.sampleRate, e.format.SampleRate)
}

// Validate checks the binary is available and at least one voice exists.
func (e *PiperEngine) Validate() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return speech.NewSpeechError(speech.ErrorCodeEngineUnavailable, "piper not found in PATH", err)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.voices) == 0 {
		return speech.NewSpeechError(speech.ErrorCodeEngineUnavailable,
			"no piper voices in "+e.modelsDir, nil)
	}
	return nil
}

// Close releases resources held by the engine.
func (e *PiperEngine) Close() error { return nil }

func (e *PiperEngine) model(id string) (piperModel, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if m, ok := e.models[id]; ok {
		return m, nil
	}
	if id == "" && len(e.voices) > 0 {
		return e.models[e.voices[0].ID], nil
	}
	return piperModel{}, fmt.Errorf("piper voice %q not found", id)
}

func (e *PiperEngine) loadVoices() error {
	paths, err := filepath.Glob(filepath.Join(e.modelsDir, "*"+piperModelExt))
	if err != nil {
		return fmt.Errorf("failed to list piper models: %w", err)
	}
	sort.Strings(paths)

	title := cases.Title(language.English)
	models := make(map[string]piperModel, len(paths))
	voices := make([]speech.Voice, 0, len(paths))

	for _, path := range paths {
		id := strings.TrimSuffix(filepath.Base(path), piperModelExt)
		model := piperModel{
			path:       path,
			config:     strings.TrimSuffix(path, piperModelExt) + piperModelCfgExt,
			sampleRate: piperDefaultRate,
		}
		voice := speech.Voice{
			ID:           id,
			Name:         id,
			Lang:         langFromModelID(id),
			Engine:       piperName,
			LocalService: true,
		}

		if cfg, err := readPiperConfig(model.config); err == nil {
			if cfg.Audio.SampleRate > 0 {
				model.sampleRate = cfg.Audio.SampleRate
			}
			if code := cmp.Or(cfg.Language.Code, cfg.Espeak.Voice); code != "" {
				voice.Lang = strings.ReplaceAll(code, "_", "-")
			}
			if cfg.Dataset != "" {
				voice.Name = strings.TrimSpace(title.String(cfg.Dataset) + " " + title.String(cfg.Audio.Quality))
			}
		} else {
			model.config = ""
		}

		models[id] = model
		voices = append(voices, voice)
	}

	e.mu.Lock()
	e.models = models
	e.voices = voices
	e.mu.Unlock()
	return nil
}

func readPiperConfig(path string) (piperModelConfig, error) {
	var cfg piperModelConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid piper config %s: %w", path, err)
	}
	return cfg, nil
}

// piperArgs builds the command line. Piper's length scale is the inverse of
// speed: 2.0 plays twice as fast.
func piperArgs(model piperModel, speed float64) []string {
	if speed <= 0 {
		speed = 1
	}
	args := []string{"--model", model.path}
	if model.config != "" {
		args = append(args, "--config", model.config)
	}
	return append(args,
		"--output-raw",
		"--length-scale", fmt.Sprintf("%.2f", 1/speed),
	)
}

// langFromModelID reads the language from names like en_US-lessac-medium.
func langFromModelID(id string) string {
	code, _, _ := strings.Cut(id, "-")
	return strings.ReplaceAll(code, "_", "-")
}

func findPiperBinary() string {
	locations := []string{"piper", "/usr/local/bin/piper", "/usr/bin/piper"}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".local", "bin", "piper"),
			filepath.Join(home, "bin", "piper"),
		)
	}
	for _, loc := range locations {
		if path, err := exec.LookPath(loc); err == nil {
			return path
		}
	}
	return "piper"
}

var _ speech.Engine = (*PiperEngine)(nil)
