package engines

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/dictate/internal/speech"
)

func TestMockEngine_Synthesize(t *testing.T) {
	engine := NewMockEngine()

	pcm, err := engine.Synthesize(context.Background(), "one two three", speech.Voice{}, 1)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	want := engine.Format().Silence(1200 * time.Millisecond)
	if len(pcm) != len(want) {
		t.Errorf("got %d bytes, want %d", len(pcm), len(want))
	}
	if got := engine.Format().Duration(len(pcm)); got != 1200*time.Millisecond {
		t.Errorf("duration = %v", got)
	}

	if engine.CallCount() != 1 || engine.Texts()[0] != "one two three" {
		t.Errorf("calls not recorded: %d %v", engine.CallCount(), engine.Texts())
	}
}

func TestMockEngine_Failure(t *testing.T) {
	engine := NewMockEngine()
	boom := errors.New("boom")

	engine.SetFailure(boom)
	if _, err := engine.Synthesize(context.Background(), "cat", speech.Voice{}, 1); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}

	engine.SetFailure(nil)
	if _, err := engine.Synthesize(context.Background(), "cat", speech.Voice{}, 1); err != nil {
		t.Errorf("cleared failure still fails: %v", err)
	}
}

func TestMockEngine_DelayHonorsContext(t *testing.T) {
	engine := NewMockEngine()
	engine.SetDelay(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := engine.Synthesize(ctx, "cat", speech.Voice{}, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestMockEngine_Voices(t *testing.T) {
	voices, _ := NewMockEngine().Voices(context.Background())
	groups := speech.Grouped(voices)
	if len(groups["English"]) != 1 || len(groups["Chinese"]) != 1 {
		t.Errorf("unexpected voices: %v", voices)
	}
}
