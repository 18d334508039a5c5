package audio

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestConfigValidate tests PCM format validation.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default valid", DefaultConfig(), false},
		{"48k stereo valid", Config{SampleRate: 48000, Channels: 2, BitDepth: 16}, false},
		{"bad sample rate", Config{SampleRate: 22050, Channels: 1, BitDepth: 16}, true},
		{"bad channels", Config{SampleRate: 44100, Channels: 3, BitDepth: 16}, true},
		{"bad bit depth", Config{SampleRate: 44100, Channels: 1, BitDepth: 8}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestClipDuration tests the playback duration computation.
func TestClipDuration(t *testing.T) {
	p := &OtoPlayer{config: DefaultConfig()}

	// One second of 16-bit mono at 44100 Hz.
	if d := p.duration(44100 * 2); d != time.Second {
		t.Errorf("Expected 1s, got %v", d)
	}

	stereo := &OtoPlayer{config: Config{SampleRate: 48000, Channels: 2, BitDepth: 16}}
	if d := stereo.duration(48000 * 4); d != time.Second {
		t.Errorf("Expected 1s for stereo clip, got %v", d)
	}
}

// TestMockPlayerRecords tests clip recording.
func TestMockPlayerRecords(t *testing.T) {
	m := NewMockPlayer()

	if err := m.Play(context.Background(), []byte{1, 2, 3}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := m.Play(context.Background(), []byte{4}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	clips := m.Clips()
	if len(clips) != 2 || len(clips[0]) != 3 || len(clips[1]) != 1 {
		t.Errorf("Unexpected clips %v", clips)
	}
}

// TestMockPlayerStopUnblocks tests that Stop releases a blocked Play.
func TestMockPlayerStopUnblocks(t *testing.T) {
	m := NewMockPlayer()
	m.SetDelay(10 * time.Second)

	done := make(chan error, 1)
	go func() {
		done <- m.Play(context.Background(), []byte{1})
	}()

	// Give Play a moment to start waiting.
	time.Sleep(20 * time.Millisecond)
	m.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil after Stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Play did not unblock after Stop")
	}
}

// TestMockPlayerContextCancel tests that a cancelled context aborts
// playback.
func TestMockPlayerContextCancel(t *testing.T) {
	m := NewMockPlayer()
	m.SetDelay(10 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Play(ctx, []byte{1})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Play did not unblock after cancel")
	}
}

// TestMockPlayerError tests the configured failure.
func TestMockPlayerError(t *testing.T) {
	m := NewMockPlayer()
	wantErr := errors.New("device gone")
	m.SetError(wantErr)

	if err := m.Play(context.Background(), []byte{1}); !errors.Is(err, wantErr) {
		t.Errorf("Expected configured error, got %v", err)
	}
}

// TestMockPlayerClosed tests Play after Close.
func TestMockPlayerClosed(t *testing.T) {
	m := NewMockPlayer()
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := m.Play(context.Background(), []byte{1}); err == nil {
		t.Error("Expected error playing on a closed player")
	}
}
