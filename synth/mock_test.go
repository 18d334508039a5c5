package synth

import (
	"context"
	"testing"
	"time"

	"github.com/notevox/notevox/speech"
)

// TestMockSpeakRecords tests recording and pacing.
func TestMockSpeakRecords(t *testing.T) {
	s := NewMockSynthesizer(nil)
	s.PerWord = time.Millisecond

	if err := s.Speak(context.Background(), speech.Utterance{Text: "two words"}); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if err := s.Speak(context.Background(), speech.Utterance{Text: ""}); err != nil {
		t.Fatalf("Empty Speak failed: %v", err)
	}

	spoken := s.Spoken()
	if len(spoken) != 1 || spoken[0].Text != "two words" {
		t.Errorf("Expected only the non-empty utterance recorded, got %+v", spoken)
	}
}

// TestMockCancelUnblocks tests that Cancel releases Speak.
func TestMockCancelUnblocks(t *testing.T) {
	s := NewMockSynthesizer(nil)
	s.PerWord = 10 * time.Second

	done := make(chan error, 1)
	go func() {
		done <- s.Speak(context.Background(), speech.Utterance{Text: "slow"})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(s.Spoken()) == 0 {
		time.Sleep(time.Millisecond)
	}
	s.Cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected quiet return after Cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Speak did not unblock after Cancel")
	}
}

// TestMockDefaultVoices tests the built-in registry.
func TestMockDefaultVoices(t *testing.T) {
	s := NewMockSynthesizer(nil)
	voices := s.Voices()
	if len(voices) == 0 {
		t.Fatal("Expected default voices")
	}

	custom := NewMockSynthesizer([]speech.Voice{{Name: "Only", Language: "en-US"}})
	if v := custom.Voices(); len(v) != 1 || v[0].Name != "Only" {
		t.Errorf("Expected custom registry, got %+v", v)
	}
}
