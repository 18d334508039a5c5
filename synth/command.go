// Package synth provides speech synthesizer implementations: a
// subprocess wrapper around system speech commands, an HTTP client
// for remote synthesis servers, a failover chain, and a mock for
// development.
package synth

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/notevox/notevox/speech"
)

// CommandSynthesizer speaks through a system speech command, one
// subprocess per utterance. The subprocess plays audio itself, so
// Speak blocks until it exits.
type CommandSynthesizer struct {
	binary    string
	args      []string
	voiceFlag string
	timeout   time.Duration
	voices    []speech.Voice
	logger    *log.Logger

	mu      sync.Mutex
	current *exec.Cmd
}

// NewCommandSynthesizer builds a subprocess synthesizer from
// settings, resolving the platform default binary when none is
// configured.
func NewCommandSynthesizer(cfg speech.CommandSettings, logger *log.Logger) (*CommandSynthesizer, error) {
	binary := cfg.Binary
	voiceFlag := cfg.VoiceFlag
	if binary == "" {
		binary, voiceFlag = platformDefaults()
	}
	if voiceFlag == "" {
		voiceFlag = "-v"
	}

	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("%w: %q not found in PATH", speech.ErrSynthesizerNotAvailable, binary)
	}

	if logger == nil {
		logger = log.Default()
	}

	return &CommandSynthesizer{
		binary:    binary,
		args:      cfg.Args,
		voiceFlag: voiceFlag,
		timeout:   cfg.Timeout,
		voices:    cfg.Voices,
		logger:    logger,
	}, nil
}

// platformDefaults picks the speech command shipped with (or commonly
// installed on) the current platform.
func platformDefaults() (binary, voiceFlag string) {
	switch runtime.GOOS {
	case "darwin":
		return "say", "-v"
	default:
		return "espeak", "-v"
	}
}

// Voices returns the configured voice registry. The system commands
// offer no portable way to enumerate voices, so the registry comes
// from configuration.
func (s *CommandSynthesizer) Voices() []speech.Voice {
	return s.voices
}

// Speak runs one subprocess and waits for it.
func (s *CommandSynthesizer) Speak(ctx context.Context, u speech.Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := append([]string{}, s.args...)
	if u.Voice.Name != "" {
		args = append(args, s.voiceFlag, u.Voice.Name)
	}
	args = append(args, u.Text)

	cmd := exec.CommandContext(ctx, s.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	s.mu.Lock()
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to start %s: %w", s.binary, err)
	}
	s.current = cmd
	s.mu.Unlock()

	err := cmd.Wait()

	s.mu.Lock()
	if s.current == cmd {
		s.current = nil
	}
	s.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s failed: %w: %s", s.binary, err, msg)
		}
		return fmt.Errorf("%s failed: %w", s.binary, err)
	}
	return nil
}

// Cancel kills the running subprocess, if any.
func (s *CommandSynthesizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Process != nil {
		if err := s.current.Process.Kill(); err != nil {
			s.logger.Debug("failed to kill speech subprocess", "err", err)
		}
		s.current = nil
	}
}
