package speech

// StateType represents the current state of a speech session.
type StateType int

const (
	// StateIdle indicates no session is running.
	StateIdle StateType = iota
	// StateSpeaking indicates a session is vocalizing lines.
	StateSpeaking
	// StateCancelling indicates a session is being torn down after a
	// cancel or supersession.
	StateCancelling
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	case StateCancelling:
		return "cancelling"
	default:
		return "unknown"
	}
}

// StateMachine manages session state transitions.
type StateMachine struct {
	current     StateType
	transitions map[StateType][]StateType
	onEnter     map[StateType]func()
}

// NewStateMachine creates a state machine with the valid session
// transitions. A new speak request while speaking passes through
// cancelling so the old session is always torn down first.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[StateType][]StateType{
			StateIdle:       {StateSpeaking},
			StateSpeaking:   {StateIdle, StateCancelling},
			StateCancelling: {StateIdle},
		},
		onEnter: make(map[StateType]func()),
	}
}

// Transition attempts to move to the specified state and reports
// whether the transition was valid.
func (sm *StateMachine) Transition(to StateType) bool {
	valid := false
	for _, state := range sm.transitions[sm.current] {
		if state == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	sm.current = to

	if enterFn, ok := sm.onEnter[to]; ok && enterFn != nil {
		enterFn()
	}
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state StateType, fn func()) {
	sm.onEnter[state] = fn
}
