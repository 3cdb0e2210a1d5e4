package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// PlayerState represents the current state of the player.
type PlayerState int32

const (
	StateStopped PlayerState = iota
	StatePlaying
	StateClosed
)

// String returns the string representation of the state.
func (s PlayerState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// pollInterval is how often a playback is checked for completion.
const pollInterval = 20 * time.Millisecond

// oto allows a single context per process.
var (
	contextOnce   sync.Once
	sharedContext *oto.Context
	sharedFormat  Format
	contextErr    error
)

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	Format     Format
	BufferSize time.Duration
	Volume     float64
}

// DefaultPlayerConfig returns the default player configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		Format:     DefaultFormat(),
		BufferSize: 100 * time.Millisecond,
		Volume:     1.0,
	}
}

// Player plays one PCM buffer at a time.
type Player struct {
	context *oto.Context
	format  Format

	mu      sync.Mutex
	current *playback
	volume  float64

	state atomic.Int32
}

// playback is an in-flight buffer. data is held so it outlives the oto player.
type playback struct {
	player *oto.Player
	data   []byte
	done   chan struct{}
	stop   chan struct{}
	once   sync.Once
}

func (pb *playback) finish() {
	pb.once.Do(func() {
		close(pb.stop)
		close(pb.done)
	})
}

// NewPlayer opens the audio device. Every player in a process shares the
// device format of the first one.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := config.Format.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.Volume < 0 || config.Volume > 1 {
		return nil, fmt.Errorf("volume must be between 0.0 and 1.0, got %f", config.Volume)
	}

	contextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   config.Format.SampleRate,
			ChannelCount: config.Format.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   config.BufferSize,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			contextErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		sharedContext = ctx
		sharedFormat = config.Format
	})
	if contextErr != nil {
		return nil, contextErr
	}
	if sharedFormat != config.Format {
		return nil, fmt.Errorf("audio device already opened at %d Hz/%d ch", sharedFormat.SampleRate, sharedFormat.Channels)
	}

	p := &Player{
		context: sharedContext,
		format:  config.Format,
		volume:  config.Volume,
	}
	p.state.Store(int32(StateStopped))
	return p, nil
}

// Format returns the PCM format the player expects.
func (p *Player) Format() Format {
	return p.format
}

// Play starts playback of pcm, stopping anything already playing. The
// returned channel is closed when playback drains or is stopped.
func (p *Player) Play(pcm []byte) (<-chan struct{}, error) {
	if len(pcm) == 0 {
		return nil, errors.New("audio data is empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if PlayerState(p.state.Load()) == StateClosed {
		return nil, errors.New("player is closed")
	}
	p.stopLocked()

	data := make([]byte, len(pcm))
	copy(data, pcm)

	pb := &playback{
		data: data,
		done: make(chan struct{}),
		stop: make(chan struct{}),
	}
	pb.player = p.context.NewPlayer(bytes.NewReader(pb.data))
	pb.player.SetVolume(p.volume)
	pb.player.Play()

	p.current = pb
	p.state.Store(int32(StatePlaying))

	go p.watch(pb)
	return pb.done, nil
}

// watch waits for the oto player to drain its reader.
func (p *Player) watch(pb *playback) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pb.stop:
			return
		case <-ticker.C:
			if pb.player.IsPlaying() {
				continue
			}
			p.mu.Lock()
			if p.current == pb {
				p.current = nil
				p.state.Store(int32(StateStopped))
			}
			p.mu.Unlock()
			_ = pb.player.Close()
			pb.finish()
			return
		}
	}
}

// Stop stops playback.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	return nil
}

func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}
	pb := p.current
	p.current = nil

	pb.player.Pause()
	_ = pb.player.Close()
	pb.finish()

	if PlayerState(p.state.Load()) != StateClosed {
		p.state.Store(int32(StateStopped))
	}
}

// IsPlaying returns whether audio is currently playing.
func (p *Player) IsPlaying() bool {
	return PlayerState(p.state.Load()) == StatePlaying
}

// State returns the current player state.
func (p *Player) State() PlayerState {
	return PlayerState(p.state.Load())
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (p *Player) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = volume
	if p.current != nil {
		p.current.player.SetVolume(volume)
	}
	return nil
}

// Close stops playback. The shared oto context stays open for the process.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.state.Store(int32(StateClosed))
	return nil
}
