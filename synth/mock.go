package synth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/notevox/notevox/speech"
)

// MockSynthesizer simulates speech by sleeping in proportion to the
// text length. It exists for development and demos on machines with
// no working speech command or server.
type MockSynthesizer struct {
	// PerWord is the simulated speaking time per word.
	PerWord time.Duration

	voices []speech.Voice

	mu     sync.Mutex
	spoken []speech.Utterance
	stop   chan struct{}
}

// NewMockSynthesizer creates a mock with a default speaking pace.
func NewMockSynthesizer(voices []speech.Voice) *MockSynthesizer {
	if len(voices) == 0 {
		voices = []speech.Voice{
			{Name: "Mock English", Language: "en-US"},
			{Name: "Mock Japanese", Language: "ja-JP"},
		}
	}
	return &MockSynthesizer{
		PerWord: 150 * time.Millisecond,
		voices:  voices,
	}
}

// Voices returns the mock registry.
func (s *MockSynthesizer) Voices() []speech.Voice {
	return s.voices
}

// Speak records the utterance and sleeps as if speaking it.
func (s *MockSynthesizer) Speak(ctx context.Context, u speech.Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}

	s.mu.Lock()
	s.spoken = append(s.spoken, u)
	stop := make(chan struct{})
	s.stop = stop
	words := len(strings.Fields(u.Text))
	s.mu.Unlock()

	timer := time.NewTimer(time.Duration(words) * s.PerWord)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-stop:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel unblocks an in-flight Speak.
func (s *MockSynthesizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// Spoken returns everything spoken so far.
func (s *MockSynthesizer) Spoken() []speech.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]speech.Utterance, len(s.spoken))
	copy(out, s.spoken)
	return out
}
