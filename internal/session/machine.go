package session

import (
	"time"

	"github.com/dgnsrekt/dictate/internal/items"
	"github.com/dgnsrekt/dictate/internal/speech"
)

// Transition applies ev to s. It returns the next session and the effects
// to carry out, in order. Events that do not apply in the current state
// are ignored.
func Transition(s Session, ev Event) (Session, []Effect) {
	m := &machine{s: s}

	switch ev := ev.(type) {
	case Start:
		m.start()
	case SpeechDone:
		m.speechDone(ev)
	case TimerFired:
		m.timerFired(ev)
	case ReadAgain:
		if m.running() {
			m.s.sentence = 0
			m.read(readMode{manual: true, announce: true})
		}
	case RepeatSentence:
		if m.running() {
			m.read(readMode{manual: true, keep: true})
		}
	case NextSentence:
		m.nextSentence()
	case NextItem:
		if m.running() {
			m.advance()
		}
	case End:
		if m.running() {
			m.end(false)
		}
	case ReplayTested:
		m.replayTested()
	case Reset:
		if m.s.state.CanTransition(StateIdle) {
			m.stopAll()
			m.cancelSpeech()
			m.s = m.s.Reset()
		}
	}

	return m.s, m.effects
}

type machine struct {
	s       Session
	effects []Effect
}

func (m *machine) emit(e Effect) {
	m.effects = append(m.effects, e)
}

// enter moves the run to state to if the transition table allows it.
func (m *machine) enter(to State) bool {
	if !m.s.state.CanTransition(to) {
		return false
	}
	m.s.state = to
	return true
}

func (m *machine) running() bool {
	_, ok := m.s.Current()
	return m.s.state == StateRunning && ok
}

func (m *machine) start() {
	if len(m.s.items) == 0 || !m.enter(StateRunning) {
		return
	}
	m.s.index = -1
	m.s.finished = false
	m.s.err = nil
	m.s.elapsed = 0
	m.s.clock = 0
	if m.s.settings.TimerMode == ModeCountdown {
		m.s.clock = m.s.settings.CountdownMinutes * 60
	}
	m.startTimer(TimerClock, time.Second)
	m.advance()
}

// advance moves to the next item, or ends the run after the last one.
func (m *machine) advance() {
	m.stopActions()
	m.cancelSpeech()
	m.s.index++
	m.s.sentence = 0

	item, ok := m.s.Current()
	if !ok {
		m.end(true)
		return
	}

	m.s.context = m.contextFor(item.Sentence(0))
	m.s.pending = readMode{announce: true}
	m.startTimer(TimerItemGap, m.s.settings.NextItemGap)
}

// read speaks the current sentence, announced unless it continues a
// paragraph or is a one-shot replay.
func (m *machine) read(mode readMode) {
	m.cancelSpeech()
	m.stopActions()

	item, ok := m.s.Current()
	if !ok {
		return
	}
	sentence := item.Sentence(m.s.sentence)
	m.s.context = m.contextFor(sentence)

	mode.second = false
	announce := mode.announce && !mode.keep && !(item.IsParagraph() && m.s.sentence > 0)
	spoken, queued := "", 1
	if announce {
		text := speech.Announcement(m.s.settings.Voice.Lang, m.s.index+1)
		m.speak(text, m.s.settings.ReadingSpeed)
		spoken, queued = text+" ", 2
	}

	text := m.verbalize(sentence.ToRead)
	m.s.mainID = m.speak(text, m.s.settings.ReadingSpeed)
	m.s.reading = mode
	m.armWatchdog(spoken+text, queued)
}

// readSecond speaks the current sentence once more. Its completion starts
// the auto-advance countdown.
func (m *machine) readSecond() {
	item, ok := m.s.Current()
	if !ok {
		return
	}
	text := m.verbalize(item.Sentence(m.s.sentence).ToRead)
	m.s.mainID = m.speak(text, m.s.settings.ReadingSpeed)
	m.s.reading = readMode{second: true}
	m.armWatchdog(text, 1)
}

func (m *machine) speechDone(ev SpeechDone) {
	switch {
	case ev.ID == 0:
		return
	case ev.ID == m.s.replayID:
		m.s.replayID = 0
		m.s.replay++
		m.replayNext()
		return
	case ev.ID != m.s.mainID || m.s.state != StateRunning:
		return
	}

	m.s.mainID = 0
	m.stopTimer(TimerWatchdog)

	if ev.Err != nil {
		m.s.err = ev.Err
		if speech.IsFatal(ev.Err) {
			m.end(false)
			return
		}
	}
	m.afterReading()
}

// afterReading picks what follows a completed main utterance.
func (m *machine) afterReading() {
	r := m.s.reading
	item, ok := m.s.Current()
	switch {
	case !ok || r.keep:
	case r.second:
		m.startCountdown()
	case item.IsParagraph() && m.s.sentence < item.SentenceCount()-1:
		m.s.sentence++
		m.s.pending = readMode{manual: r.manual}
		m.startTimer(TimerReread, m.s.settings.RereadGap)
	case m.s.settings.RecurringReadout:
		m.s.pending = readMode{manual: r.manual}
		m.startTimer(TimerRecurring, m.s.settings.RereadGap)
	case !r.manual:
		m.s.pending = readMode{second: true}
		m.startTimer(TimerReread, m.s.settings.RereadGap)
	default:
		m.startCountdown()
	}
}

func (m *machine) startCountdown() {
	m.stopTimer(TimerCountdown)
	m.s.countdown = 0

	delay := m.s.settings.AutoNextDelay
	if delay <= 0 || m.s.settings.RecurringReadout {
		return
	}
	m.s.countdown = int((delay + time.Second - 1) / time.Second)
	m.startTimer(TimerCountdown, time.Second)
}

func (m *machine) timerFired(ev TimerFired) {
	if ev.Kind < 0 || ev.Kind >= numTimerKinds {
		return
	}
	if !m.s.live[ev.Kind] || m.s.gens[ev.Kind] != ev.Gen || m.s.state != StateRunning {
		return
	}
	m.s.live[ev.Kind] = false

	switch ev.Kind {
	case TimerItemGap:
		m.read(m.s.pending)
	case TimerReread:
		if m.s.pending.second {
			m.readSecond()
		} else {
			m.read(m.s.pending)
		}
	case TimerRecurring:
		m.s.sentence = 0
		m.read(m.s.pending)
	case TimerCountdown:
		m.s.countdown--
		if m.s.countdown <= 0 {
			m.s.countdown = 0
			m.advance()
			return
		}
		m.startTimer(TimerCountdown, time.Second)
	case TimerClock:
		m.tick()
	case TimerWatchdog:
		// The reading never completed: carry on as if it had.
		m.cancelSpeech()
		m.s.mainID = 0
		m.afterReading()
	}
}

func (m *machine) tick() {
	m.s.elapsed++
	if m.s.settings.TimerMode == ModeCountdown {
		m.s.clock--
		if m.s.clock <= 0 {
			m.s.clock = 0
			m.end(true)
			return
		}
	} else {
		m.s.clock++
	}
	m.startTimer(TimerClock, time.Second)
}

func (m *machine) nextSentence() {
	if !m.running() {
		return
	}
	item, _ := m.s.Current()
	if !item.IsParagraph() {
		return
	}
	m.s.sentence = min(m.s.sentence+1, item.SentenceCount()-1)
	m.read(readMode{manual: true, keep: true})
}

func (m *machine) end(finished bool) {
	if !m.enter(StateEnded) {
		return
	}
	m.stopAll()
	m.cancelSpeech()
	m.s.finished = finished
	m.s.context = ""
	m.s.countdown = 0
	m.s.mainID = 0
}

func (m *machine) replayTested() {
	if m.s.state != StateEnded {
		return
	}
	m.cancelSpeech()
	m.s.replay = 0
	m.s.replayID = 0
	m.replayNext()
}

// replayNext speaks the next tested part in parse order.
func (m *machine) replayNext() {
	if m.s.replay < 0 || m.s.replay >= len(m.s.list) {
		m.s.replay = -1
		return
	}
	m.s.replayID = m.speak(m.s.list[m.s.replay].TestedPart, ReplayRate)
}

func (m *machine) speak(text string, rate float64) uint64 {
	m.s.lastID++
	m.emit(Speak{Utterance: speech.Utterance{
		ID:    m.s.lastID,
		Text:  text,
		Voice: m.s.settings.Voice,
		Rate:  rate,
	}})
	return m.s.lastID
}

func (m *machine) verbalize(text string) string {
	if !m.s.settings.ReadPunctuation {
		return text
	}
	return speech.Verbalize(m.s.settings.Voice.Lang, text)
}

func (m *machine) contextFor(sentence items.Single) string {
	if !m.s.settings.ShowContext {
		return ""
	}
	return sentence.Context
}

// armWatchdog bounds a reading of text spread over queued utterances, each
// of which the engine synthesizes before it plays.
func (m *machine) armWatchdog(text string, queued int) {
	wait := m.s.settings.MaxUtteranceWait
	if wait <= 0 {
		wait = 2*speech.EstimateDuration(text, m.s.settings.ReadingSpeed) + watchdogSlack +
			time.Duration(queued)*m.s.settings.SynthesisTimeout
	}
	m.startTimer(TimerWatchdog, wait)
}

// cancelSpeech drops in-flight speech. Completions of the dropped
// utterances no longer match and are ignored.
func (m *machine) cancelSpeech() {
	m.emit(CancelSpeech{})
	m.s.mainID = 0
	m.s.replayID = 0
	m.s.replay = -1
}

func (m *machine) startTimer(kind TimerKind, delay time.Duration) {
	m.stopTimer(kind)
	m.s.gens[kind]++
	m.s.live[kind] = true
	m.emit(StartTimer{Kind: kind, Gen: m.s.gens[kind], Delay: delay})
}

func (m *machine) stopTimer(kind TimerKind) {
	if !m.s.live[kind] {
		return
	}
	m.s.gens[kind]++
	m.s.live[kind] = false
	m.emit(StopTimer{Kind: kind})
}

// stopActions stops every timer but the main clock.
func (m *machine) stopActions() {
	for kind := range numTimerKinds {
		if kind != TimerClock {
			m.stopTimer(kind)
		}
	}
	m.s.countdown = 0
}

func (m *machine) stopAll() {
	for kind := range numTimerKinds {
		m.stopTimer(kind)
	}
	m.s.countdown = 0
}
