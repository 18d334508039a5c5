package synth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/notevox/notevox/internal/audio"
	"github.com/notevox/notevox/internal/cache"
	"github.com/notevox/notevox/speech"
)

func testRemoteSettings(url string) speech.RemoteSettings {
	cfg := speech.DefaultRemoteSettings()
	cfg.URL = url
	cfg.RequestsPerMinute = 600
	return cfg
}

func testCache(t *testing.T) *cache.Manager {
	t.Helper()
	m, err := cache.NewManager(cache.Config{
		MemoryCapacity: 1 << 20,
		DiskCapacity:   1 << 20,
		DiskPath:       t.TempDir(),
	})
	if err != nil {
		t.Fatalf("cache.NewManager failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

// TestRemoteSpeak tests the fetch-then-play path.
func TestRemoteSpeak(t *testing.T) {
	var gotText, gotVoice atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotText.Store(r.URL.Query().Get("text"))
		gotVoice.Store(r.URL.Query().Get("voice"))
		w.Write([]byte("pcm-payload"))
	}))
	defer server.Close()

	player := audio.NewMockPlayer()
	s, err := NewRemoteSynthesizer(testRemoteSettings(server.URL), player, nil, nil)
	if err != nil {
		t.Fatalf("NewRemoteSynthesizer failed: %v", err)
	}

	u := speech.Utterance{Text: "hello", Voice: speech.Voice{Name: "Samantha"}}
	if err := s.Speak(context.Background(), u); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	if gotText.Load() != "hello" || gotVoice.Load() != "Samantha" {
		t.Errorf("Unexpected request %v/%v", gotText.Load(), gotVoice.Load())
	}
	clips := player.Clips()
	if len(clips) != 1 || string(clips[0]) != "pcm-payload" {
		t.Errorf("Expected payload played, got %v", clips)
	}
}

// TestRemoteEmptyUtterance tests that empty text never hits the
// server.
func TestRemoteEmptyUtterance(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	player := audio.NewMockPlayer()
	s, err := NewRemoteSynthesizer(testRemoteSettings(server.URL), player, nil, nil)
	if err != nil {
		t.Fatalf("NewRemoteSynthesizer failed: %v", err)
	}

	if err := s.Speak(context.Background(), speech.Utterance{Text: "   "}); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("Expected no requests, got %d", hits.Load())
	}
	if len(player.Clips()) != 0 {
		t.Error("Expected nothing played")
	}
}

// TestRemoteCaching tests that a repeated utterance is served from
// cache.
func TestRemoteCaching(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("cached-pcm"))
	}))
	defer server.Close()

	player := audio.NewMockPlayer()
	s, err := NewRemoteSynthesizer(testRemoteSettings(server.URL), player, testCache(t), nil)
	if err != nil {
		t.Fatalf("NewRemoteSynthesizer failed: %v", err)
	}

	u := speech.Utterance{Text: "repeat me", Voice: speech.Voice{Name: "V"}}
	for i := 0; i < 3; i++ {
		if err := s.Speak(context.Background(), u); err != nil {
			t.Fatalf("Speak %d failed: %v", i, err)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("Expected 1 server hit, got %d", hits.Load())
	}
	if len(player.Clips()) != 3 {
		t.Errorf("Expected 3 plays, got %d", len(player.Clips()))
	}
}

// TestRemoteServerError tests the non-200 path.
func TestRemoteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "voice model missing", http.StatusInternalServerError)
	}))
	defer server.Close()

	s, err := NewRemoteSynthesizer(testRemoteSettings(server.URL), audio.NewMockPlayer(), nil, nil)
	if err != nil {
		t.Fatalf("NewRemoteSynthesizer failed: %v", err)
	}

	if err := s.Speak(context.Background(), speech.Utterance{Text: "x"}); err == nil {
		t.Error("Expected error from 500 response")
	}
}

// TestRemoteNoURL tests construction without an endpoint.
func TestRemoteNoURL(t *testing.T) {
	_, err := NewRemoteSynthesizer(speech.DefaultRemoteSettings(), audio.NewMockPlayer(), nil, nil)
	if err == nil {
		t.Error("Expected error without URL")
	}
}

// TestRemoteCancelStopsPlayback tests Cancel reaching the player.
func TestRemoteCancelStopsPlayback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("long-clip"))
	}))
	defer server.Close()

	player := audio.NewMockPlayer()
	player.SetDelay(10 * time.Second)
	s, err := NewRemoteSynthesizer(testRemoteSettings(server.URL), player, nil, nil)
	if err != nil {
		t.Fatalf("NewRemoteSynthesizer failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Speak(context.Background(), speech.Utterance{Text: "x"})
	}()

	// Let the clip reach the player before stopping it.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(player.Clips()) == 0 {
		time.Sleep(time.Millisecond)
	}
	s.Cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected Speak to finish quietly after Cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Speak did not unblock after Cancel")
	}
}
