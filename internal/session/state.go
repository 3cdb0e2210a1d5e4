package session

// State is the phase of a test run.
type State int

const (
	// StateIdle is before the test starts.
	StateIdle State = iota
	// StateRunning is while items are being read.
	StateRunning
	// StateEnded is after the last item, a timer expiry or an explicit end.
	StateEnded
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

var transitions = map[State][]State{
	StateIdle:    {StateRunning, StateIdle},
	StateRunning: {StateEnded, StateIdle},
	StateEnded:   {StateIdle},
}

// CanTransition reports whether the run may move from s to to.
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
