// Package audio plays raw PCM clips through the system audio device.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player plays one PCM clip at a time. Play blocks until the clip has
// finished or the context ends; Stop silences the current clip and
// unblocks Play.
type Player interface {
	Play(ctx context.Context, pcm []byte) error
	Stop()
	Close() error
}

// Config describes the PCM format the player accepts.
type Config struct {
	SampleRate int // 44100 or 48000 Hz only
	Channels   int // 1 = mono, 2 = stereo
	BitDepth   int // 16 bits per sample
}

// DefaultConfig returns the format synthesized speech arrives in.
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		Channels:   1,
		BitDepth:   16,
	}
}

func (c Config) validate() error {
	if c.SampleRate != 44100 && c.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	}
	if c.BitDepth != 16 {
		return fmt.Errorf("bit depth must be 16, got %d", c.BitDepth)
	}
	return nil
}

// OtoPlayer implements Player over an oto context. The context is
// created once; oto does not support creating a second one in the
// same process.
type OtoPlayer struct {
	config  Config
	context *oto.Context

	mu sync.Mutex
	// current is the oto player for the clip in flight. The clip's
	// data must stay referenced until playback ends or the output
	// turns to static.
	current *oto.Player
	data    []byte
	stop    chan struct{}
	closed  bool
}

// NewOtoPlayer opens the system audio device.
func NewOtoPlayer(config Config) (*OtoPlayer, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid audio config: %w", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	return &OtoPlayer{config: config, context: ctx}, nil
}

// Play plays one clip to completion. A second Play while one is in
// flight stops the first.
func (p *OtoPlayer) Play(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New("player is closed")
	}
	p.stopLocked()

	data := make([]byte, len(pcm))
	copy(data, pcm)

	player := p.context.NewPlayer(bytes.NewReader(data))
	stop := make(chan struct{})
	p.current = player
	p.data = data
	p.stop = stop
	p.mu.Unlock()

	player.Play()

	// oto offers no completion callback; wait out the clip's computed
	// duration and poll for early drain.
	timer := time.NewTimer(p.duration(len(data)))
	defer timer.Stop()

	var err error
	select {
	case <-timer.C:
	case <-stop:
	case <-ctx.Done():
		err = ctx.Err()
	}

	p.mu.Lock()
	if p.current == player {
		player.Pause()
		_ = player.Close()
		p.current = nil
		p.data = nil
		p.stop = nil
	}
	p.mu.Unlock()

	return err
}

// Stop silences the current clip, if any.
func (p *OtoPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *OtoPlayer) stopLocked() {
	if p.current == nil {
		return
	}
	p.current.Pause()
	_ = p.current.Close()
	p.current = nil
	p.data = nil
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

// Close stops playback and marks the player unusable. The underlying
// oto context stays open for the life of the process.
func (p *OtoPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.closed = true
	return nil
}

// duration computes how long a clip of n PCM bytes plays for.
func (p *OtoPlayer) duration(n int) time.Duration {
	bytesPerSample := p.config.BitDepth / 8
	samples := n / (p.config.Channels * bytesPerSample)
	return time.Duration(samples) * time.Second / time.Duration(p.config.SampleRate)
}
