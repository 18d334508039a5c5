package speech

import (
	"errors"
	"testing"
)

// TestSessionError tests wrapping and unwrapping.
func TestSessionError(t *testing.T) {
	err := NewSessionError(ErrVoiceNotFound, "synthesizer", "speak")

	if err.Error() != ErrVoiceNotFound.Error() {
		t.Errorf("Expected underlying message, got %q", err.Error())
	}
	if !errors.Is(err, ErrVoiceNotFound) {
		t.Error("Expected errors.Is to find the wrapped sentinel")
	}
	if err.Component != "synthesizer" || err.Action != "speak" {
		t.Errorf("Unexpected context %s/%s", err.Component, err.Action)
	}
}

// TestSessionErrorNil tests the empty case.
func TestSessionErrorNil(t *testing.T) {
	err := &SessionError{}
	if err.Error() != "unknown speech error" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}
