package synth

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/notevox/notevox/speech"
)

// FallbackSynthesizer wraps a primary synthesizer with a secondary
// one, switching over after the primary fails too many times in a
// row. A recovered primary resets the counter.
type FallbackSynthesizer struct {
	primary     speech.Synthesizer
	secondary   speech.Synthesizer
	maxFailures int
	logger      *log.Logger

	mu       sync.Mutex
	failures int
	switched bool
}

// NewFallbackSynthesizer chains two synthesizers. maxFailures of 0 or
// less means switch on the first failure.
func NewFallbackSynthesizer(primary, secondary speech.Synthesizer, maxFailures int, logger *log.Logger) *FallbackSynthesizer {
	if maxFailures < 1 {
		maxFailures = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FallbackSynthesizer{
		primary:     primary,
		secondary:   secondary,
		maxFailures: maxFailures,
		logger:      logger,
	}
}

// Voices returns the active synthesizer's registry.
func (s *FallbackSynthesizer) Voices() []speech.Voice {
	return s.active().Voices()
}

// Speak dispatches to the active synthesizer, falling over when the
// primary keeps failing. A cancelled context never counts as a
// failure.
func (s *FallbackSynthesizer) Speak(ctx context.Context, u speech.Utterance) error {
	s.mu.Lock()
	switched := s.switched
	s.mu.Unlock()

	if switched {
		return s.secondary.Speak(ctx, u)
	}

	err := s.primary.Speak(ctx, u)
	if err == nil {
		s.mu.Lock()
		if s.failures > 0 {
			s.logger.Info("primary synthesizer recovered", "failures", s.failures)
			s.failures = 0
		}
		s.mu.Unlock()
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	s.mu.Lock()
	s.failures++
	failures := s.failures
	if failures >= s.maxFailures {
		s.switched = true
	}
	switched = s.switched
	s.mu.Unlock()

	s.logger.Warn("primary synthesizer failed",
		"attempt", failures,
		"max", s.maxFailures,
		"err", err,
	)

	if switched {
		s.logger.Warn("switching to fallback synthesizer")
		return s.secondary.Speak(ctx, u)
	}
	return err
}

// Cancel silences both synthesizers; only one can be audible but the
// switch may have happened mid-session.
func (s *FallbackSynthesizer) Cancel() {
	s.primary.Cancel()
	s.secondary.Cancel()
}

func (s *FallbackSynthesizer) active() speech.Synthesizer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.switched {
		return s.secondary
	}
	return s.primary
}
