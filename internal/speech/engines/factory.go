package engines

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/dictate/internal/speech"
)

// ErrUnknownEngine is returned by New for unrecognized engine names.
var ErrUnknownEngine = errors.New("unknown speech engine")

// Config carries the settings of every engine New can build.
type Config struct {
	Piper PiperConfig
	GTTS  GTTSConfig

	// MaxFailures before auto switches from piper to gtts.
	MaxFailures int
}

// Names lists the engine names accepted by New.
func Names() []string {
	return []string{"auto", piperName, gttsName, mockName}
}

// New builds the named engine. "auto" prefers piper and falls back to gtts.
func New(name string, config Config) (speech.Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case piperName:
		return NewPiperEngine(config.Piper)
	case gttsName:
		return NewGTTSEngine(config.GTTS)
	case mockName:
		return NewMockEngine(), nil
	case "", "auto":
		gtts, err := NewGTTSEngine(config.GTTS)
		if err != nil {
			return nil, err
		}
		piper, err := NewPiperEngine(config.Piper)
		if err != nil {
			log.Debug("Piper unavailable, using gtts", "err", err)
			return gtts, nil
		}
		return NewFallbackEngine(piper, gtts, config.MaxFailures), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownEngine, name, strings.Join(Names(), ", "))
	}
}
