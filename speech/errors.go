package speech

import "errors"

// Common errors for the speech session system.
var (
	// Synthesizer errors
	ErrSynthesizerNotAvailable = errors.New("synthesizer is not available")
	ErrNoVoices                = errors.New("synthesizer exposes no voices")
	ErrVoiceNotFound           = errors.New("requested voice not found")

	// Session errors
	ErrNoContent       = errors.New("no content to speak")
	ErrSuperseded      = errors.New("session superseded by a newer one")
	ErrNotSpeaking     = errors.New("no speech session is active")
	ErrStateTransition = errors.New("invalid session state transition")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// SessionError carries the component and action that failed so the UI
// can show a useful transient message.
type SessionError struct {
	Err       error
	Component string
	Action    string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown speech error"
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a session error with context.
func NewSessionError(err error, component, action string) *SessionError {
	return &SessionError{Err: err, Component: component, Action: action}
}
