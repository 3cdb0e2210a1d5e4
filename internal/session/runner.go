package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/dictate/internal/speech"
)

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The system clock uses time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock { return systemClock{} }

// Display receives a View after every event.
type Display interface {
	Update(View)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(View)

// Update calls f(v).
func (f DisplayFunc) Update(v View) { f(v) }

const eventBuffer = 32

// Runner owns a Session and carries out its effects. All events, from the
// user, the speaker and the timers, are handled on one goroutine.
type Runner struct {
	session Session
	speaker speech.Speaker
	clock   Clock
	display Display

	events chan Event
	timers [numTimerKinds]Timer

	quit      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// NewRunner creates a runner for s. Call Start to begin handling events.
func NewRunner(s Session, speaker speech.Speaker, clock Clock, display Display) *Runner {
	if clock == nil {
		clock = SystemClock()
	}
	if display == nil {
		display = DisplayFunc(func(View) {})
	}
	return &Runner{
		session: s,
		speaker: speaker,
		clock:   clock,
		display: display,
		events:  make(chan Event, eventBuffer),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the event loop. It stops when ctx is done or on Close.
func (r *Runner) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		r.display.Update(r.session.View())
		go r.loop(ctx)
	})
}

// Send queues an event. It returns false once the runner has stopped.
func (r *Runner) Send(ev Event) bool {
	select {
	case <-r.quit:
		return false
	case <-r.done:
		return false
	default:
	}
	select {
	case r.events <- ev:
		return true
	case <-r.quit:
		return false
	case <-r.done:
		return false
	}
}

// Done is closed when the event loop exits.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Close stops the event loop, every timer and any speech in progress.
// The speaker itself is left open.
func (r *Runner) Close() error {
	r.closeOnce.Do(func() {
		close(r.quit)
		// A runner that never started has no loop to close done.
		r.startOnce.Do(func() { close(r.done) })
		<-r.done
	})
	return nil
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	defer r.shutdown()

	completions := r.speaker.Completions()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.quit:
			return
		case ev := <-r.events:
			r.handle(ev)
		case c, ok := <-completions:
			if !ok {
				completions = nil
				continue
			}
			r.handle(SpeechDone{ID: c.ID, Err: c.Err})
		}
	}
}

func (r *Runner) handle(ev Event) {
	queue := []Event{ev}
	for len(queue) > 0 {
		ev, queue = queue[0], queue[1:]

		prev := r.session.State()
		next, effects := Transition(r.session, ev)
		r.session = next

		log.Debug("Session event", "event", fmt.Sprintf("%T", ev), "effects", len(effects),
			"item", next.Index(), "sentence", next.SentenceIndex())
		if prev != next.State() {
			log.Info("Session state changed", "from", prev, "to", next.State(), "finished", next.Finished())
		}

		for _, e := range effects {
			if failed := r.apply(e); failed != nil {
				queue = append(queue, failed)
			}
		}
	}
	r.display.Update(r.session.View())
}

// apply carries out one effect. A Speak the speaker refuses comes back as a
// failed completion so the cadence does not wait for it.
func (r *Runner) apply(e Effect) Event {
	switch e := e.(type) {
	case Speak:
		if err := r.speaker.Speak(e.Utterance); err != nil {
			log.Warn("Speaker refused utterance", "id", e.Utterance.ID, "err", err)
			return SpeechDone{ID: e.Utterance.ID, Err: err}
		}
	case CancelSpeech:
		r.speaker.Cancel()
	case StartTimer:
		r.stopTimer(e.Kind)
		kind, gen := e.Kind, e.Gen
		r.timers[kind] = r.clock.AfterFunc(e.Delay, func() {
			r.post(TimerFired{Kind: kind, Gen: gen})
		})
	case StopTimer:
		r.stopTimer(e.Kind)
	}
	return nil
}

func (r *Runner) stopTimer(kind TimerKind) {
	if t := r.timers[kind]; t != nil {
		t.Stop()
		r.timers[kind] = nil
	}
}

// post delivers a timer event unless the runner has stopped.
func (r *Runner) post(ev Event) {
	select {
	case r.events <- ev:
	case <-r.quit:
	case <-r.done:
	}
}

func (r *Runner) shutdown() {
	for kind := range numTimerKinds {
		r.stopTimer(kind)
	}
	r.speaker.Cancel()
}
