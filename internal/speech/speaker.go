package speech

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/dictate/internal/audio"
	"github.com/dgnsrekt/dictate/internal/cache"
)

// Player plays PCM audio. *audio.Player implements it.
type Player interface {
	Play(pcm []byte) (<-chan struct{}, error)
	Stop() error
	Format() audio.Format
}

// AudioCache stores synthesized audio. *cache.Manager implements it.
type AudioCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}

const completionBuffer = 64

// EngineSpeaker is a Speaker that synthesizes with an Engine and plays the
// result on a Player, one utterance at a time.
type EngineSpeaker struct {
	engine Engine
	player Player
	cache  AudioCache

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Utterance
	epoch   uint64
	cancel  context.CancelFunc
	closed  bool
	baseCtx context.Context
	stop    context.CancelFunc

	completions chan Completion
	done        chan struct{}
}

var _ Speaker = (*EngineSpeaker)(nil)

// NewEngineSpeaker starts the speaker worker. cache may be nil.
func NewEngineSpeaker(engine Engine, player Player, cache AudioCache) *EngineSpeaker {
	ctx, stop := context.WithCancel(context.Background())
	s := &EngineSpeaker{
		engine:      engine,
		player:      player,
		cache:       cache,
		baseCtx:     ctx,
		stop:        stop,
		completions: make(chan Completion, completionBuffer),
		done:        make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Speak queues an utterance.
func (s *EngineSpeaker) Speak(u Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSpeakerClosed
	}
	s.queue = append(s.queue, u)
	s.cond.Signal()
	return nil
}

// Cancel drops the queue and stops whatever is being synthesized or played.
func (s *EngineSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
}

func (s *EngineSpeaker) cancelLocked() {
	s.epoch++
	s.queue = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if err := s.player.Stop(); err != nil {
		log.Debug("Stopping playback failed", "err", err)
	}
}

// Completions delivers finished utterances. The channel is closed by Close.
func (s *EngineSpeaker) Completions() <-chan Completion {
	return s.completions
}

// Close stops the worker. Queued utterances are dropped.
func (s *EngineSpeaker) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.cancelLocked()
	s.stop()
	s.cond.Broadcast()
	s.mu.Unlock()

	<-s.done
	close(s.completions)
	return nil
}

func (s *EngineSpeaker) run() {
	defer close(s.done)

	for {
		u, epoch, ctx, ok := s.next()
		if !ok {
			return
		}
		err := s.say(ctx, u)
		s.finish(u, epoch, err)
	}
}

func (s *EngineSpeaker) next() (Utterance, uint64, context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.queue) == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return Utterance{}, 0, nil, false
	}

	u := s.queue[0]
	s.queue = s.queue[1:]

	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancel = cancel
	return u, s.epoch, ctx, true
}

func (s *EngineSpeaker) finish(u Utterance, epoch uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil && epoch == s.epoch {
		s.cancel()
		s.cancel = nil
	}
	if epoch != s.epoch || s.closed {
		return
	}

	if err != nil {
		log.Warn("Utterance failed", "id", u.ID, "text", u.Text, "err", err)
	}
	select {
	case s.completions <- Completion{ID: u.ID, Err: err}:
	default:
		log.Warn("Completion dropped, receiver is not keeping up", "id", u.ID)
	}
}

func (s *EngineSpeaker) say(ctx context.Context, u Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}

	pcm, err := s.synthesize(ctx, u)
	if err != nil {
		return err
	}

	done, err := s.player.Play(pcm)
	if err != nil {
		return NewSpeechError(ErrorCodeAudioFailure, "playback failed", err)
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		_ = s.player.Stop()
		return ctx.Err()
	}
}

func (s *EngineSpeaker) synthesize(ctx context.Context, u Utterance) ([]byte, error) {
	key := cache.GenerateCacheKey(u.Text, s.engine.Name()+":"+u.Voice.ID, u.Rate)
	if s.cache != nil {
		if pcm, ok := s.cache.Get(key); ok {
			return pcm, nil
		}
	}

	pcm, err := s.engine.Synthesize(ctx, u.Text, u.Voice, ClampRate(u.Rate))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		code := ErrorCodeEngineFailure
		if IsRetryable(err) {
			code = ErrorCodeEngineTimeout
		}
		return nil, NewSpeechError(code, "synthesis failed", err).
			WithContext("engine", s.engine.Name()).
			WithContext("voice", u.Voice.ID)
	}

	from, to := s.engine.Format().SampleRate, s.player.Format().SampleRate
	if from != to {
		pcm, err = audio.Resample(pcm, from, to)
		if err != nil {
			return nil, NewSpeechError(ErrorCodeAudioFormat, "resampling failed", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Put(key, pcm); err != nil {
			log.Debug("Could not cache audio", "err", err)
		}
	}
	return pcm, nil
}
