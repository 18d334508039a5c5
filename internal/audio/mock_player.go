package audio

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MockPlayer implements Player without touching an audio device. It
// records every clip and simulates playback time, which keeps tests
// hermetic on machines with no sound hardware.
type MockPlayer struct {
	mu      sync.Mutex
	clips   [][]byte
	delay   time.Duration
	playErr error
	stop    chan struct{}
	closed  bool
}

// NewMockPlayer creates a mock player with no simulated delay.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// SetDelay makes each Play take d before completing.
func (m *MockPlayer) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetError makes subsequent Play calls fail with err.
func (m *MockPlayer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// Play records the clip and waits out the configured delay.
func (m *MockPlayer) Play(ctx context.Context, pcm []byte) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.New("player is closed")
	}
	clip := make([]byte, len(pcm))
	copy(clip, pcm)
	m.clips = append(m.clips, clip)
	delay := m.delay
	err := m.playErr
	stop := make(chan struct{})
	m.stop = stop
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-stop:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Stop unblocks an in-flight Play.
func (m *MockPlayer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
}

// Close marks the player unusable.
func (m *MockPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	m.closed = true
	return nil
}

// Clips returns a copy of every clip played so far.
func (m *MockPlayer) Clips() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.clips))
	copy(out, m.clips)
	return out
}
