package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/notevox/notevox/speech"
)

// TestCommandMissingBinary tests construction with a binary that does
// not exist.
func TestCommandMissingBinary(t *testing.T) {
	cfg := speech.DefaultCommandSettings()
	cfg.Binary = "definitely-not-a-speech-command"

	_, err := NewCommandSynthesizer(cfg, nil)
	if !errors.Is(err, speech.ErrSynthesizerNotAvailable) {
		t.Errorf("Expected ErrSynthesizerNotAvailable, got %v", err)
	}
}

// TestCommandEmptyUtterance tests that empty text never spawns a
// subprocess.
func TestCommandEmptyUtterance(t *testing.T) {
	s := &CommandSynthesizer{binary: "definitely-not-a-speech-command"}

	if err := s.Speak(context.Background(), speech.Utterance{Text: "  \t "}); err != nil {
		t.Errorf("Expected no-op for blank text, got %v", err)
	}
}

// TestCommandVoicesFromConfig tests the configured registry.
func TestCommandVoicesFromConfig(t *testing.T) {
	voices := []speech.Voice{{Name: "Samantha", Language: "en-US"}}
	s := &CommandSynthesizer{voices: voices}

	if got := s.Voices(); len(got) != 1 || got[0].Name != "Samantha" {
		t.Errorf("Unexpected voices %+v", got)
	}
}
