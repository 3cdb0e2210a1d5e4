package engines

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/dgnsrekt/dictate/internal/speech"
)

const lessacConfig = `{
  "dataset": "lessac",
  "audio": {"sample_rate": 22050, "quality": "medium"},
  "language": {"code": "en_US"},
  "espeak": {"voice": "en-us"}
}`

func writeModels(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"en_US-lessac-medium.onnx":      "fake model",
		"en_US-lessac-medium.onnx.json": lessacConfig,
		"zh_CN-huayan-x_low.onnx":       "fake model",
		"notes.txt":                     "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// TestNewPiperEngine tests engine creation.
func TestNewPiperEngine(t *testing.T) {
	dir := writeModels(t)
	file := filepath.Join(dir, "notes.txt")

	tests := []struct {
		name    string
		config  PiperConfig
		wantErr bool
	}{
		{"valid config", PiperConfig{ModelsDir: dir}, false},
		{"missing models dir", PiperConfig{}, true},
		{"non-existent dir", PiperConfig{ModelsDir: "/non/existent/models"}, true},
		{"file instead of dir", PiperConfig{ModelsDir: file}, true},
		{"bad sample rate", PiperConfig{ModelsDir: dir, SampleRate: 100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewPiperEngine(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPiperEngine() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if engine != nil {
				defer engine.Close() //nolint:errcheck
			}
		})
	}
}

func TestPiperEngine_Voices(t *testing.T) {
	engine, err := NewPiperEngine(PiperConfig{ModelsDir: writeModels(t)})
	if err != nil {
		t.Fatal(err)
	}

	voices, err := engine.Voices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []speech.Voice{
		{ID: "en_US-lessac-medium", Name: "Lessac Medium", Lang: "en-US", Engine: "piper", LocalService: true},
		{ID: "zh_CN-huayan-x_low", Name: "zh_CN-huayan-x_low", Lang: "zh-CN", Engine: "piper", LocalService: true},
	}
	if !slices.Equal(voices, want) {
		t.Errorf("Voices() = %+v\nwant %+v", voices, want)
	}
	if engine.Name() != "piper" || engine.Format().SampleRate != 22050 {
		t.Errorf("unexpected name/format: %s %+v", engine.Name(), engine.Format())
	}
}

func TestPiperArgs(t *testing.T) {
	tests := []struct {
		name  string
		model piperModel
		speed float64
		want  []string
	}{
		{
			name:  "normal speed",
			model: piperModel{path: "m.onnx", config: "m.onnx.json"},
			speed: 1,
			want:  []string{"--model", "m.onnx", "--config", "m.onnx.json", "--output-raw", "--length-scale", "1.00"},
		},
		{
			name:  "double speed halves length",
			model: piperModel{path: "m.onnx"},
			speed: 2,
			want:  []string{"--model", "m.onnx", "--output-raw", "--length-scale", "0.50"},
		},
		{
			name:  "half speed",
			model: piperModel{path: "m.onnx"},
			speed: 0.5,
			want:  []string{"--model", "m.onnx", "--output-raw", "--length-scale", "2.00"},
		},
		{
			name:  "zero speed treated as normal",
			model: piperModel{path: "m.onnx"},
			speed: 0,
			want:  []string{"--model", "m.onnx", "--output-raw", "--length-scale", "1.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := piperArgs(tt.model, tt.speed); !slices.Equal(got, tt.want) {
				t.Errorf("piperArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPiperEngine_SynthesizeRejectsInput(t *testing.T) {
	engine, err := NewPiperEngine(PiperConfig{ModelsDir: writeModels(t)})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	voice := speech.Voice{ID: "en_US-lessac-medium"}

	if _, err := engine.Synthesize(ctx, "  ", voice, 1); !errors.Is(err, speech.ErrEmptyText) {
		t.Errorf("blank text error = %v", err)
	}

	var se *speech.SpeechError
	_, err = engine.Synthesize(ctx, strings.Repeat("a", piperMaxText+1), voice, 1)
	if !errors.As(err, &se) || se.Code != speech.ErrorCodeTextTooLong {
		t.Errorf("long text error = %v", err)
	}

	if _, err := engine.Synthesize(ctx, "cat", speech.Voice{ID: "missing"}, 1); err == nil {
		t.Error("expected error for unknown voice")
	}
}

// TestPiperEngine_StdinPreset runs a stand-in piper that echoes stdin, which
// only works if the text is on stdin before the process starts reading.
func TestPiperEngine_StdinPreset(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := writeModels(t)
	argsFile := filepath.Join(t.TempDir(), "args")
	script := filepath.Join(t.TempDir(), "piper")
	body := "#!/bin/sh\necho \"$@\" > \"$PIPER_ARGS_FILE\"\ncat\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PIPER_ARGS_FILE", argsFile)

	engine, err := NewPiperEngine(PiperConfig{ModelsDir: dir, Binary: script})
	if err != nil {
		t.Fatal(err)
	}

	text := "The cat sat."
	pcm, err := engine.Synthesize(context.Background(), text, speech.Voice{ID: "en_US-lessac-medium"}, 2)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(pcm) != text {
		t.Errorf("Synthesize() = %q, want %q", pcm, text)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(args), "--output-raw --length-scale 0.50") {
		t.Errorf("unexpected piper args: %s", args)
	}
	if err := engine.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestPiperEngine_ValidateMissingBinary(t *testing.T) {
	engine, err := NewPiperEngine(PiperConfig{ModelsDir: writeModels(t), Binary: "/no/such/piper"})
	if err != nil {
		t.Fatal(err)
	}
	err = engine.Validate()
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !speech.IsFatal(err) {
		t.Errorf("missing binary should be fatal: %v", err)
	}
}

func TestLangFromModelID(t *testing.T) {
	tests := map[string]string{
		"en_US-lessac-medium": "en-US",
		"zh_CN-huayan-x_low":  "zh-CN",
		"plain":               "plain",
	}
	for id, want := range tests {
		if got := langFromModelID(id); got != want {
			t.Errorf("langFromModelID(%q) = %q, want %q", id, got, want)
		}
	}
}
