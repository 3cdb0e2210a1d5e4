package session

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/dgnsrekt/dictate/internal/items"
)

// readMode describes the reading in progress or scheduled next.
type readMode struct {
	manual   bool // a user retry: no automatic second reading
	keep     bool // a one-shot replay: no follow-up at all
	announce bool // say the item number first
	second   bool // the automatic second reading
}

// Session is the state of one run. It is a value: Transition returns a new
// Session and never modifies the one it is given.
type Session struct {
	settings Settings
	state    State

	items []items.Item // test order
	list  []items.Item // parse order

	index    int
	sentence int
	context  string
	finished bool
	err      error

	reading readMode // what the main utterance is
	pending readMode // what the next reread or recurring timer reads
	mainID  uint64
	lastID  uint64

	gens [numTimerKinds]uint64
	live [numTimerKinds]bool

	countdown int // auto-advance seconds left, 0 when not counting
	clock     int // seconds remaining or elapsed, by timer mode
	elapsed   int

	replay   int // next tested part to replay, -1 when not replaying
	replayID uint64
}

// New creates an idle session over list. When settings ask for it the test
// order is shuffled with rng, or the global source if rng is nil.
func New(list []items.Item, settings Settings, rng *rand.Rand) Session {
	s := Session{
		settings: settings.Normalize(),
		list:     slices.Clone(list),
		items:    slices.Clone(list),
		index:    -1,
		replay:   -1,
	}
	if s.settings.Randomize {
		Shuffle(s.items, rng)
	}
	return s
}

// Shuffle permutes list uniformly in place (Fisher-Yates).
func Shuffle(list []items.Item, rng *rand.Rand) {
	swap := func(i, j int) { list[i], list[j] = list[j], list[i] }
	if rng == nil {
		rand.Shuffle(len(list), swap)
		return
	}
	rng.Shuffle(len(list), swap)
}

// Reset returns s reinitialized to idle, keeping its items and settings.
func (s Session) Reset() Session {
	return Session{
		settings: s.settings,
		list:     s.list,
		items:    s.items,
		index:    -1,
		replay:   -1,
		lastID:   s.lastID,
		gens:     s.gens,
	}
}

// State returns the phase of the run.
func (s Session) State() State { return s.state }

// Settings returns the normalized settings of the run.
func (s Session) Settings() Settings { return s.settings }

// Items returns the items in test order.
func (s Session) Items() []items.Item { return slices.Clone(s.items) }

// List returns the items in the order they were parsed.
func (s Session) List() []items.Item { return slices.Clone(s.list) }

// Index returns the current item index, -1 before the first item.
func (s Session) Index() int { return s.index }

// SentenceIndex returns the current sentence of a paragraph.
func (s Session) SentenceIndex() int { return s.sentence }

// Finished reports whether the run ended by completing the items or by
// the countdown expiring, rather than by the user ending it.
func (s Session) Finished() bool { return s.finished }

// Current returns the item being tested.
func (s Session) Current() (items.Item, bool) {
	if s.index < 0 || s.index >= len(s.items) {
		return items.Item{}, false
	}
	return s.items[s.index], true
}

// View is what a display shows for a session.
type View struct {
	State     State
	Progress  string
	Index     int
	Total     int
	Kind      items.Kind
	Sentence  int
	Sentences int
	Context   string
	Clock     string
	Elapsed   string
	Countdown string
	Speaking  bool
	Replaying bool
	Finished  bool
	Err       error
}

// View renders s for display.
func (s Session) View() View {
	v := View{
		State:     s.state,
		Progress:  fmt.Sprintf("Item %d of %d", s.index+1, len(s.items)),
		Index:     s.index,
		Total:     len(s.items),
		Sentence:  s.sentence,
		Context:   s.context,
		Clock:     FormatTime(0),
		Elapsed:   FormatTime(s.elapsed),
		Speaking:  s.mainID != 0 || s.replayID != 0,
		Replaying: s.replay >= 0,
		Finished:  s.finished,
		Err:       s.err,
	}
	if item, ok := s.Current(); ok {
		v.Kind = item.Kind
		v.Sentences = item.SentenceCount()
	}
	if s.state == StateRunning {
		v.Clock = FormatTime(s.clock)
	}
	if s.countdown > 0 {
		v.Countdown = fmt.Sprintf("Next in %ds", s.countdown)
	}
	return v
}

// FormatTime renders seconds as MM:SS.
func FormatTime(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
